// Package ingest builds graph models from external data. Loaders parse
// raw bytes into a graph whose vertex payloads are *Node values, ready
// to display on a panel with the providers below.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/graphpane/graphpane/graph"
)

// ErrUnknownFormat is returned by Get for format names without a loader.
var ErrUnknownFormat = errors.New("ingest: unknown input format")

// Node is the vertex payload produced by loaders. A zero Radius defers
// to the panel's default.
type Node struct {
	ID     string
	Label  string
	Radius float64
}

// String returns the node's label, falling back to its ID.
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// NodeLabel is a label provider for graphs built by this package.
func NodeLabel(payload any) string {
	if n, ok := payload.(*Node); ok {
		return n.String()
	}
	return fmt.Sprintf("%v", payload)
}

// NodeRadius is a radius provider for graphs built by this package.
// Payloads without an explicit radius report zero, which the panel
// replaces with its default.
func NodeRadius(payload any) float64 {
	if n, ok := payload.(*Node); ok {
		return n.Radius
	}
	return 0
}

// Loader parses one input format into a graph.
type Loader interface {
	// Load builds a graph from raw data.
	Load(data []byte) (*graph.Graph, error)

	// Name returns the loader's short name, usable with Get.
	Name() string
}

// Get returns the loader for a format name.
func Get(format string) (Loader, error) {
	switch strings.ToLower(format) {
	case "json":
		return &JSONLoader{}, nil
	case "csv":
		return &CSVLoader{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// JSONLoader reads a graph document:
//
//	{
//	  "directed": false,
//	  "vertices": [{"id": "a", "label": "Alpha", "radius": 14}],
//	  "edges": [{"from": "a", "to": "b", "label": "link", "weight": 2}]
//	}
//
// Vertex IDs must be unique and every edge endpoint must name a declared
// vertex. Parallel edges and self-loops are allowed. Endpoints are matched
// loosely (from/source, to/target) and directedness may sit at the top
// level or under metadata, so JSON renderer output loads back in.
type JSONLoader struct{}

// Name returns the loader's short name.
func (l *JSONLoader) Name() string { return "json" }

// Load builds a graph from a JSON document.
func (l *JSONLoader) Load(data []byte) (*graph.Graph, error) {
	var doc struct {
		Directed bool `json:"directed"`
		Metadata struct {
			Directed bool `json:"directed"`
		} `json:"metadata"`
		Vertices []struct {
			ID     string  `json:"id"`
			Label  string  `json:"label"`
			Radius float64 `json:"radius"`
		} `json:"vertices"`
		Edges []struct {
			From   string  `json:"from"`
			To     string  `json:"to"`
			Source string  `json:"source"`
			Target string  `json:"target"`
			Label  string  `json:"label"`
			Weight float64 `json:"weight"`
		} `json:"edges"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ingest: parse json: %w", err)
	}

	var opts []graph.Option
	if doc.Directed || doc.Metadata.Directed {
		opts = append(opts, graph.WithDirected())
	}
	g := graph.New(opts...)

	byID := make(map[string]*graph.Vertex, len(doc.Vertices))
	for _, v := range doc.Vertices {
		if v.ID == "" {
			return nil, errors.New("ingest: vertex without id")
		}
		if _, dup := byID[v.ID]; dup {
			return nil, fmt.Errorf("ingest: duplicate vertex id %q", v.ID)
		}
		byID[v.ID] = g.AddVertex(&Node{ID: v.ID, Label: v.Label, Radius: v.Radius})
	}

	for _, e := range doc.Edges {
		fromID, toID := e.From, e.To
		if fromID == "" {
			fromID = e.Source
		}
		if toID == "" {
			toID = e.Target
		}

		from, ok := byID[fromID]
		if !ok {
			return nil, fmt.Errorf("ingest: edge references unknown vertex %q", fromID)
		}
		to, ok := byID[toID]
		if !ok {
			return nil, fmt.Errorf("ingest: edge references unknown vertex %q", toID)
		}

		var value any
		if e.Label != "" {
			value = e.Label
		}
		var edgeOpts []graph.EdgeOption
		if e.Weight > 0 {
			edgeOpts = append(edgeOpts, graph.WithWeight(e.Weight))
		}
		if _, err := g.AddEdge(from, to, value, edgeOpts...); err != nil {
			return nil, fmt.Errorf("ingest: edge %s -> %s: %w", fromID, toID, err)
		}
	}
	return g, nil
}

// CSVLoader reads an edge list with a header row. The source and target
// columns are required and matched loosely (from/source/src,
// to/target/dst); weight and label columns are optional. Vertices are
// created on first mention.
type CSVLoader struct{}

// Name returns the loader's short name.
func (l *CSVLoader) Name() string { return "csv" }

// Load builds an undirected graph from edge-list CSV data.
func (l *CSVLoader) Load(data []byte) (*graph.Graph, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read csv header: %w", err)
	}

	fromIdx, toIdx, weightIdx, labelIdx := -1, -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "from", "source", "src":
			fromIdx = i
		case "to", "target", "dst":
			toIdx = i
		case "weight", "value":
			weightIdx = i
		case "label", "name":
			labelIdx = i
		}
	}
	if fromIdx == -1 || toIdx == -1 {
		return nil, errors.New("ingest: csv header must name source and target columns")
	}

	g := graph.New()
	byID := make(map[string]*graph.Vertex)
	ensure := func(id string) *graph.Vertex {
		if v, ok := byID[id]; ok {
			return v
		}
		v := g.AddVertex(&Node{ID: id, Label: id})
		byID[id] = v
		return v
	}

	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read csv row %d: %w", row, err)
		}
		if fromIdx >= len(record) || toIdx >= len(record) {
			return nil, fmt.Errorf("ingest: csv row %d: missing endpoint column", row)
		}

		from := ensure(record[fromIdx])
		to := ensure(record[toIdx])

		var value any
		if labelIdx >= 0 && labelIdx < len(record) && record[labelIdx] != "" {
			value = record[labelIdx]
		}

		var edgeOpts []graph.EdgeOption
		if weightIdx >= 0 && weightIdx < len(record) && record[weightIdx] != "" {
			w, err := strconv.ParseFloat(record[weightIdx], 64)
			if err != nil {
				return nil, fmt.Errorf("ingest: csv row %d: weight: %w", row, err)
			}
			if w > 0 {
				edgeOpts = append(edgeOpts, graph.WithWeight(w))
			}
		}

		if _, err := g.AddEdge(from, to, value, edgeOpts...); err != nil {
			return nil, fmt.Errorf("ingest: csv row %d: %w", row, err)
		}
	}
	return g, nil
}

// Generate builds a random demo graph with the given vertex and edge
// counts. The same seed always yields the same topology. Endpoints are
// drawn uniformly, so dense requests produce the occasional parallel
// edge or self-loop.
func Generate(vertices, edges int, seed int64) *graph.Graph {
	rng := rand.New(rand.NewSource(seed))
	g := graph.New()

	handles := make([]*graph.Vertex, 0, vertices)
	for i := 0; i < vertices; i++ {
		handles = append(handles, g.AddVertex(&Node{
			ID:     fmt.Sprintf("n%d", i+1),
			Label:  fmt.Sprintf("n%d", i+1),
			Radius: 8 + rng.Float64()*8,
		}))
	}
	if len(handles) == 0 {
		return g
	}

	for i := 0; i < edges; i++ {
		a := handles[rng.Intn(len(handles))]
		b := handles[rng.Intn(len(handles))]
		weight := float64(1 + rng.Intn(3))
		if _, err := g.AddEdge(a, b, nil, graph.WithWeight(weight)); err != nil {
			continue
		}
	}
	return g
}
