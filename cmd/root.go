// Package cmd wires the graphpane subcommands: one-shot rendering, the
// HTTP server, the terminal UI, and config scaffolding.
package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/graphpane/graphpane/config"
	"github.com/graphpane/graphpane/graph"
	"github.com/graphpane/graphpane/ingest"
	"github.com/graphpane/graphpane/metrics"
	"github.com/graphpane/graphpane/view"
)

var version = "0.1.0"

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "graphpane",
	Short: "Live force-directed graph layouts",
	Long: `graphpane keeps a graph model and its on-screen layout in sync and
animates the layout with a spring simulation.

  graphpane render --data graph.json -o graph.svg
  graphpane serve --data graph.csv
  graphpane tui`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a graphpane.yaml (defaults to the standard search path)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable verbose logging")

	rootCmd.AddCommand(
		renderCmd(),
		serveCmd(),
		tuiCmd(),
		initCmd(),
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromPath(configPath)
		if err != nil {
			return nil, err
		}
		debugf("config loaded from %s", configPath)
		return cfg, nil
	}

	cfg, path, err := config.Load()
	if err != nil {
		return nil, err
	}
	if path != "" {
		debugf("config loaded from %s", path)
	} else {
		debugf("no config file found, using defaults")
	}
	return cfg, nil
}

func debugf(format string, args ...any) {
	if debug {
		log.Printf("graphpane: "+format, args...)
	}
}

// dataFlags is the shared input surface: every subcommand either loads a
// graph from a file or generates a random demo graph.
type dataFlags struct {
	input    string
	format   string
	vertices int
	edges    int
	seed     int64
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.input, "data", "", "Path to a JSON or CSV graph file")
	cmd.Flags().StringVar(&f.format, "data-format", "", "Input format when the extension is misleading (json, csv)")
	cmd.Flags().IntVar(&f.vertices, "vertices", 12, "Vertices in the generated demo graph when no data file is given")
	cmd.Flags().IntVar(&f.edges, "edges", 16, "Edges in the generated demo graph")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "Seed for the generated demo graph")
}

func (f *dataFlags) load() (*graph.Graph, error) {
	if f.input == "" {
		debugf("generating demo graph: %d vertices, %d edges, seed %d", f.vertices, f.edges, f.seed)
		return ingest.Generate(f.vertices, f.edges, f.seed), nil
	}

	format := f.format
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(f.input), "."))
	}
	loader, err := ingest.Get(format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.input, err)
	}

	data, err := os.ReadFile(f.input)
	if err != nil {
		return nil, err
	}
	debugf("loading %s as %s", f.input, loader.Name())
	return loader.Load(data)
}

// buildPanel assembles an initialized panel from the config. stats may be
// nil when the caller does not expose metrics.
func buildPanel(cfg *config.Config, model *graph.Graph, stats *metrics.Metrics, placement string) (*view.Panel, error) {
	strategy, err := cfg.Layout.Build()
	if err != nil {
		return nil, err
	}

	opts := []view.Option{
		view.WithStrategy(strategy),
		view.WithFrameInterval(cfg.Panel.FrameInterval()),
		view.WithLabelProvider(ingest.NodeLabel),
		view.WithRadiusProvider(ingest.NodeRadius),
	}
	if stats != nil {
		opts = append(opts, view.WithMetrics(stats))
	}
	switch placement {
	case "", "random":
	case "circle":
		opts = append(opts, view.WithPlacement(view.CircularSortedPlacement{}))
	default:
		return nil, fmt.Errorf("unknown placement %q (random, circle)", placement)
	}

	panel, err := view.New(model, opts...)
	if err != nil {
		return nil, err
	}
	if err := panel.Init(cfg.Panel.Width, cfg.Panel.Height); err != nil {
		panel.Close()
		return nil, err
	}
	return panel, nil
}
