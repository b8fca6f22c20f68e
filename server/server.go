// Package server exposes a panel over HTTP: rendered views for
// browsers, a mutation API for the model behind it, and the metrics
// endpoint. Mutations go through the live model; the handlers only nudge
// the panel so responses reflect the change.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/graphpane/graphpane/graph"
	"github.com/graphpane/graphpane/ingest"
	"github.com/graphpane/graphpane/metrics"
	"github.com/graphpane/graphpane/render"
	"github.com/graphpane/graphpane/view"
)

const shutdownGrace = 5 * time.Second

// Config carries the server settings. Zero values fall back to the
// defaults used by New.
type Config struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	RenderOptions *render.Options
}

// Server serves one panel and the model it displays.
type Server struct {
	model  *graph.Graph
	panel  *view.Panel
	stats  *metrics.Metrics
	render *render.Options
	srv    *http.Server
}

// New builds a server around a model and the panel displaying it. The
// stats should be the same instance the panel records to, so the
// metrics endpoint exposes live values; nil falls back to an empty
// registry.
func New(model *graph.Graph, panel *view.Panel, stats *metrics.Metrics, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.RenderOptions == nil {
		cfg.RenderOptions = render.NewDefaultOptions()
	}
	if stats == nil {
		stats = metrics.New()
	}

	s := &Server{
		model:  model,
		panel:  panel,
		stats:  stats,
		render: cfg.RenderOptions,
	}
	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the route table, usable directly in tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /graph/{format}", s.handleRender)
	mux.HandleFunc("GET /api/graph", s.handleAPIGraph)
	mux.HandleFunc("POST /api/vertices", s.handleAddVertex)
	mux.HandleFunc("DELETE /api/vertices/{id}", s.handleRemoveVertex)
	mux.HandleFunc("POST /api/edges", s.handleAddEdge)
	mux.HandleFunc("DELETE /api/edges/{id}", s.handleRemoveEdge)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.stats.Registry(), promhttp.HandlerOpts{}))
	return mux
}

// Run starts the listener and blocks until ctx is canceled or the
// listener fails. On cancellation, in-flight requests get a short grace
// period to finish.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()
	log.Printf("server: listening on %s", s.srv.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	renderer, err := render.Get(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	out, err := renderer.Render(s.panel.Snapshot(), s.render)
	if err != nil {
		http.Error(w, "rendering failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	switch renderer.Name() {
	case "svg":
		w.Header().Set("Content-Type", "image/svg+xml")
	case "json":
		w.Header().Set("Content-Type", "application/json")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Write(out)
}

func (s *Server) handleAPIGraph(w http.ResponseWriter, r *http.Request) {
	out, err := (&render.JSONRenderer{}).Render(s.panel.Snapshot(), s.render)
	if err != nil {
		http.Error(w, "rendering failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

func (s *Server) handleAddVertex(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label  string  `json:"label"`
		Radius float64 `json:"radius"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	v := s.model.AddVertex(&ingest.Node{Label: req.Label, Radius: req.Radius})
	if err := s.panel.UpdateAndWait(); err != nil {
		http.Error(w, "panel unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeCreated(w, v.ID())
}

func (s *Server) handleRemoveVertex(w http.ResponseWriter, r *http.Request) {
	v, err := s.model.FindVertex(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err := s.model.RemoveVertex(v); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	// Removal need not be visible in the response; the panel catches up
	// on its own schedule.
	if err := s.panel.Update(); err != nil {
		log.Printf("server: update after vertex removal: %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From   string  `json:"from"`
		To     string  `json:"to"`
		Label  string  `json:"label"`
		Weight float64 `json:"weight"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	from, err := s.model.FindVertex(req.From)
	if err != nil {
		http.Error(w, fmt.Sprintf("from %q: %v", req.From, err), http.StatusNotFound)
		return
	}
	to, err := s.model.FindVertex(req.To)
	if err != nil {
		http.Error(w, fmt.Sprintf("to %q: %v", req.To, err), http.StatusNotFound)
		return
	}

	var value any
	if req.Label != "" {
		value = req.Label
	}
	var opts []graph.EdgeOption
	if req.Weight > 0 {
		opts = append(opts, graph.WithWeight(req.Weight))
	}

	e, err := s.model.AddEdge(from, to, value, opts...)
	switch {
	case errors.Is(err, graph.ErrVertexNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, graph.ErrParallelEdge), errors.Is(err, graph.ErrSelfLoop):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.panel.UpdateAndWait(); err != nil {
		http.Error(w, "panel unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeCreated(w, e.ID())
}

func (s *Server) handleRemoveEdge(w http.ResponseWriter, r *http.Request) {
	e, err := s.model.FindEdge(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err := s.model.RemoveEdge(e); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if err := s.panel.Update(); err != nil {
		log.Printf("server: update after edge removal: %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeCreated(w http.ResponseWriter, id string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

const indexPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>graphpane</title>
  <style>
    body {
      font-family: 'Helvetica Neue', Arial, sans-serif;
      margin: 0;
      padding: 20px;
      background: #f5f5f5;
      color: #333;
    }
    .container {
      max-width: 1200px;
      margin: 0 auto;
      background: white;
      padding: 30px;
      border-radius: 8px;
      box-shadow: 0 2px 10px rgba(0,0,0,0.1);
    }
    h1 {
      color: #2a2a2a;
      margin-top: 0;
      border-bottom: 2px solid #eee;
      padding-bottom: 10px;
    }
    .viewport {
      margin: 20px 0;
      border: 1px solid #eee;
      border-radius: 4px;
      overflow: hidden;
    }
    .viewport img { display: block; width: 100%; }
    .controls { margin: 10px 0; }
    .btn {
      background: #4285f4;
      color: white;
      border: none;
      padding: 8px 16px;
      border-radius: 4px;
      cursor: pointer;
      font-size: 14px;
    }
    .links a { margin-right: 16px; color: #4285f4; }
  </style>
</head>
<body>
  <div class="container">
    <h1>graphpane</h1>
    <p>Live force-directed view of the model. The image refreshes as the
    layout settles; mutate the model through the API and watch it move.</p>
    <div class="controls">
      <button class="btn" id="add">Add vertex</button>
    </div>
    <div class="viewport">
      <img id="pane" src="/graph/svg" alt="graph layout">
    </div>
    <p class="links">
      <a href="/graph/ascii">ascii</a>
      <a href="/graph/dot">dot</a>
      <a href="/api/graph">api</a>
      <a href="/metrics">metrics</a>
    </p>
  </div>
  <script>
    const pane = document.getElementById('pane');
    setInterval(() => { pane.src = '/graph/svg?t=' + Date.now(); }, 250);
    let n = 0;
    document.getElementById('add').addEventListener('click', () => {
      n++;
      fetch('/api/vertices', {
        method: 'POST',
        headers: {'Content-Type': 'application/json'},
        body: JSON.stringify({label: 'v' + n})
      });
    });
  </script>
</body>
</html>
`
