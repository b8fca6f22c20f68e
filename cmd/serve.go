package cmd

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/graphpane/graphpane/graph"
	"github.com/graphpane/graphpane/ingest"
	"github.com/graphpane/graphpane/metrics"
	"github.com/graphpane/graphpane/server"
	"github.com/graphpane/graphpane/view"
)

// churnOrderCap stops the demo feed from growing the graph without bound.
const churnOrderCap = 60

func serveCmd() *cobra.Command {
	var data dataFlags
	var (
		addr  string
		churn time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live layout over HTTP",
		Long: `Start the HTTP server: an auto-refreshing SVG page, render endpoints
for every format, a JSON mutation API, and Prometheus metrics.

  graphpane serve --data graph.json
  graphpane serve --addr :9090 --vertices 40 --edges 60`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			model, err := data.load()
			if err != nil {
				return err
			}
			stats := metrics.New()
			panel, err := buildPanel(cfg, model, stats, "")
			if err != nil {
				return err
			}
			defer panel.Close()

			srv := server.New(model, panel, stats, server.Config{
				Addr:          cfg.Server.Addr,
				ReadTimeout:   cfg.Server.ReadTimeout.Duration(),
				WriteTimeout:  cfg.Server.WriteTimeout.Duration(),
				RenderOptions: cfg.Render.Options(),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if churn > 0 {
				go churnLoop(ctx, model, panel, churn)
			}
			return srv.Run(ctx)
		},
	}

	data.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides the config file)")
	cmd.Flags().DurationVar(&churn, "churn", 0, "Mutate the graph at this interval to demo live reconciliation (0 disables)")
	return cmd
}

// churnLoop keeps the model in motion so the live page has something to
// show.
func churnLoop(ctx context.Context, model *graph.Graph, panel *view.Panel, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	n := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		vertices := model.Vertices()
		switch roll := rand.Float64(); {
		case len(vertices) < 2 || (roll < 0.4 && len(vertices) < churnOrderCap):
			n++
			label := fmt.Sprintf("v%d", n)
			model.AddVertex(&ingest.Node{ID: label, Label: label})
		case roll < 0.7:
			a := vertices[rand.Intn(len(vertices))]
			b := vertices[rand.Intn(len(vertices))]
			_, _ = model.AddEdge(a, b, nil)
		case roll < 0.85:
			_ = model.RemoveVertex(vertices[rand.Intn(len(vertices))])
		default:
			if edges := model.Edges(); len(edges) > 0 {
				_ = model.RemoveEdge(edges[rand.Intn(len(edges))])
			}
		}

		if err := panel.Update(); err != nil {
			log.Printf("graphpane: churn update: %v", err)
			return
		}
	}
}
