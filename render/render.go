// Package render turns panel snapshots into output documents. Renderers
// are stateless; everything they need arrives in the snapshot and the
// options, so one renderer can serve many panels concurrently.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"github.com/graphpane/graphpane/view"
)

// Errors returned by the rendering entry points.
var (
	ErrUnknownFormat = errors.New("render: unknown output format")
	ErrNilSnapshot   = errors.New("render: nil snapshot")
)

// Options defines rendering configuration. Geometry always comes from
// the snapshot; options only affect presentation.
type Options struct {
	Background     string  // background color, empty inherits the palette's
	ShowLabels     bool    // draw vertex labels
	ShowEdgeLabels bool    // draw edge labels
	FontSize       float64 // label font size in SVG units
	EdgeWidth      float64 // base edge stroke width
	Palette        *Palette

	// Columns and Rows fix the character grid for the ASCII renderer;
	// zero derives them from the snapshot bounds.
	Columns int
	Rows    int
}

// NewDefaultOptions returns the options used when a caller passes nil.
func NewDefaultOptions() *Options {
	return &Options{
		ShowLabels: true,
		FontSize:   10.0,
		EdgeWidth:  1.0,
		Palette:    DefaultPalette(),
	}
}

// Renderer is a rendering backend for one output format.
type Renderer interface {
	// Render produces the output document for a snapshot. A nil opts
	// renders with NewDefaultOptions.
	Render(snap *view.Snapshot, opts *Options) ([]byte, error)

	// Name returns the renderer's short name, usable with Get.
	Name() string

	// Description returns a one-line description of the output.
	Description() string
}

// Get returns the renderer for a format name.
func Get(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg":
		return &SVGRenderer{}, nil
	case "ascii", "txt":
		return &ASCIIRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "dot", "graphviz":
		return &DOTRenderer{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Formats lists the registered format names.
func Formats() []string {
	return []string{"svg", "ascii", "json", "dot"}
}

// Palette provides color schemes for graph output. Colors are assigned
// by hashing element IDs, so an element keeps its color across frames
// and across renderers.
type Palette struct {
	VertexColors []string
	EdgeColors   []string
	Background   string
}

// DefaultPalette returns a light scheme with vibrant vertex colors.
func DefaultPalette() *Palette {
	return &Palette{
		VertexColors: []string{
			"#4285F4", // blue
			"#EA4335", // red
			"#FBBC05", // yellow
			"#34A853", // green
			"#673AB7", // purple
			"#3F51B5", // indigo
			"#00BCD4", // cyan
			"#009688", // teal
			"#FF5722", // deep orange
		},
		EdgeColors: []string{
			"#666666",
			"#888888",
			"#AAAAAA",
		},
		Background: "#f8f8f8",
	}
}

// MidnightPalette returns a dark scheme for terminal-adjacent output.
func MidnightPalette() *Palette {
	return &Palette{
		VertexColors: []string{
			"#FF6D00", // amber
			"#2979FF", // blue
			"#00E676", // green
			"#F50057", // pink
			"#651FFF", // deep purple
			"#C6FF00", // lime
			"#00B0FF", // light blue
		},
		EdgeColors: []string{
			"#9E9E9E",
			"#757575",
		},
		Background: "#212121",
	}
}

// VertexColor picks a stable color for a vertex ID.
func (p *Palette) VertexColor(id string) string {
	if p == nil || len(p.VertexColors) == 0 {
		return "#4285F4"
	}
	return p.VertexColors[hashIndex(id, len(p.VertexColors))]
}

// EdgeColor picks a stable color for an edge ID.
func (p *Palette) EdgeColor(id string) string {
	if p == nil || len(p.EdgeColors) == 0 {
		return "#666666"
	}
	return p.EdgeColors[hashIndex(id, len(p.EdgeColors))]
}

func (p *Palette) background() string {
	if p == nil || p.Background == "" {
		return "#f8f8f8"
	}
	return p.Background
}

func hashIndex(id string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(h.Sum32() % uint32(n))
}

const (
	// curveSpacing is the control-point offset between successive
	// parallel-edge curves. The visible apex sits at roughly half of it.
	curveSpacing = 24.0

	// loopSpacing grows each stacked self-loop beyond the previous one.
	loopSpacing = 14.0
)

// edgePath returns SVG path data for an edge at a multiplicity index.
// Index 0 is the straight line; higher indices bow out as quadratic
// curves, odd indices on one side of the midline and even on the other,
// moving further out every second index.
func edgePath(x1, y1, x2, y2 float64, index int) string {
	if index == 0 {
		return fmt.Sprintf("M %.2f %.2f L %.2f %.2f", x1, y1, x2, y2)
	}

	length := math.Hypot(x2-x1, y2-y1)
	if length == 0 {
		length = 1
	}
	nx, ny := -(y2-y1)/length, (x2-x1)/length

	rank := float64((index + 1) / 2)
	side := 1.0
	if index%2 == 0 {
		side = -1.0
	}
	offset := side * rank * curveSpacing

	mx, my := (x1+x2)/2, (y1+y2)/2
	return fmt.Sprintf("M %.2f %.2f Q %.2f %.2f %.2f %.2f",
		x1, y1, mx+nx*offset, my+ny*offset, x2, y2)
}

// loopPath returns SVG path data for a self-loop: a cubic curve leaving
// and re-entering the vertex. Reach and direction vary with the
// multiplicity index so stacked loops stay distinguishable.
func loopPath(x, y, radius float64, index int) string {
	angle := math.Pi/4 + float64(index)*math.Pi/3
	reach := radius*2.5 + float64(index)*loopSpacing
	const spread = 0.5

	c1x := x + reach*math.Cos(angle-spread)
	c1y := y + reach*math.Sin(angle-spread)
	c2x := x + reach*math.Cos(angle+spread)
	c2y := y + reach*math.Sin(angle+spread)
	return fmt.Sprintf("M %.2f %.2f C %.2f %.2f %.2f %.2f %.2f %.2f",
		x, y, c1x, c1y, c2x, c2y, x, y)
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// SVGRenderer outputs scalable vector graphics.
type SVGRenderer struct{}

// Name returns the renderer's short name.
func (r *SVGRenderer) Name() string { return "svg" }

// Description returns a one-line description of the output.
func (r *SVGRenderer) Description() string {
	return "Scalable Vector Graphics with curved parallel edges and directional arrowheads"
}

// Render creates an SVG document for the snapshot.
func (r *SVGRenderer) Render(snap *view.Snapshot, opts *Options) ([]byte, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	if opts == nil {
		opts = NewDefaultOptions()
	}

	background := opts.Background
	if background == "" {
		background = opts.Palette.background()
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
`, snap.Width, snap.Height, snap.Width, snap.Height, background)

	if snap.Directed {
		buf.WriteString(`<defs>
  <marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5"
      markerWidth="6" markerHeight="6" orient="auto">
    <path d="M0,0 L10,5 L0,10 z" fill="#666666"/>
  </marker>
</defs>
`)
	}

	for _, e := range snap.Edges {
		from := snap.Vertices[e.From]
		to := snap.Vertices[e.To]

		stroke := opts.Palette.EdgeColor(e.ID)
		width := opts.EdgeWidth
		if e.Weight > 0 {
			width = math.Max(0.5, e.Weight*opts.EdgeWidth*0.5)
		}

		var path string
		marker := ""
		if e.Loop {
			path = loopPath(from.X, from.Y, from.Radius, e.Index)
		} else {
			path = edgePath(from.X, from.Y, to.X, to.Y, e.Index)
			if snap.Directed {
				marker = ` marker-end="url(#arrow)"`
			}
		}
		fmt.Fprintf(&buf, `<path d="%s" fill="none" stroke="%s" stroke-width="%.2f"%s/>
`, path, stroke, width, marker)

		if opts.ShowEdgeLabels && e.Label != "" && !e.Loop {
			fmt.Fprintf(&buf, `<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" fill="%s" text-anchor="middle">%s</text>
`, (from.X+to.X)/2, (from.Y+to.Y)/2, opts.FontSize, stroke, xmlEscaper.Replace(e.Label))
		}
	}

	for _, v := range snap.Vertices {
		fmt.Fprintf(&buf, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="rgba(0,0,0,0.3)" stroke-width="0.5"/>
`, v.X, v.Y, v.Radius, opts.Palette.VertexColor(v.ID))

		if opts.ShowLabels && v.Label != "" {
			fmt.Fprintf(&buf, `<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" fill="#333333" text-anchor="middle">%s</text>
`, v.X, v.Y+v.Radius+opts.FontSize+2, opts.FontSize, xmlEscaper.Replace(v.Label))
		}
	}

	buf.WriteString("</svg>")
	return buf.Bytes(), nil
}

// ASCIIRenderer outputs a character grid for terminals.
type ASCIIRenderer struct{}

// Name returns the renderer's short name.
func (r *ASCIIRenderer) Name() string { return "ascii" }

// Description returns a one-line description of the output.
func (r *ASCIIRenderer) Description() string {
	return "Character-grid rendering for terminal output"
}

var vertexSymbols = []rune{'O', '@', '#', 'X', '*', '%'}

// Render creates an ASCII grid for the snapshot.
func (r *ASCIIRenderer) Render(snap *view.Snapshot, opts *Options) ([]byte, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	if opts == nil {
		opts = NewDefaultOptions()
	}

	width := opts.Columns
	if width <= 0 {
		width = maxInt(int(snap.Width/10), 40)
	}
	height := opts.Rows
	if height <= 0 {
		// Character cells are roughly twice as tall as wide.
		height = maxInt(int(snap.Height/20), 20)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	for i := 0; i < width; i++ {
		grid[0][i] = '-'
		grid[height-1][i] = '-'
	}
	for i := 0; i < height; i++ {
		grid[i][0] = '|'
		grid[i][width-1] = '|'
	}
	grid[0][0] = '+'
	grid[0][width-1] = '+'
	grid[height-1][0] = '+'
	grid[height-1][width-1] = '+'

	// Projection of a panel coordinate onto the grid, kept inside the
	// border.
	toCell := func(x, y float64) (int, int) {
		cx := clampInt(int(x*float64(width-2)/snap.Width)+1, 1, width-2)
		cy := clampInt(int(y*float64(height-2)/snap.Height)+1, 1, height-2)
		return cx, cy
	}

	for _, e := range snap.Edges {
		from := snap.Vertices[e.From]
		if e.Loop {
			// A loop collapses to a single mark beside the vertex.
			x, y := toCell(from.X, from.Y)
			if grid[y-1][x] == ' ' {
				grid[y-1][x] = '.'
			}
			continue
		}
		to := snap.Vertices[e.To]
		x1, y1 := toCell(from.X, from.Y)
		x2, y2 := toCell(to.X, to.Y)
		drawLine(grid, x1, y1, x2, y2)
	}

	for i, v := range snap.Vertices {
		x, y := toCell(v.X, v.Y)
		grid[y][x] = vertexSymbols[i%len(vertexSymbols)]

		if opts.ShowLabels && v.Label != "" && y+1 < height-1 {
			label := v.Label
			if len(label) > width-x-1 {
				label = label[:width-x-1]
			}
			for j := 0; j < len(label) && x+j < width-1; j++ {
				grid[y+1][x+j] = rune(label[j])
			}
		}
	}

	var result strings.Builder
	for _, row := range grid {
		result.WriteString(string(row))
		result.WriteRune('\n')
	}
	return []byte(result.String()), nil
}

// JSONRenderer outputs the snapshot as an indented JSON document.
type JSONRenderer struct{}

// Name returns the renderer's short name.
func (r *JSONRenderer) Name() string { return "json" }

// Description returns a one-line description of the output.
func (r *JSONRenderer) Description() string {
	return "Machine-readable positions and topology as JSON"
}

// Render creates the JSON document for the snapshot.
func (r *JSONRenderer) Render(snap *view.Snapshot, opts *Options) ([]byte, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	if opts == nil {
		opts = NewDefaultOptions()
	}

	type jsonVertex struct {
		ID     string  `json:"id"`
		Label  string  `json:"label,omitempty"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Radius float64 `json:"radius"`
		Color  string  `json:"color"`
	}
	type jsonEdge struct {
		ID     string  `json:"id"`
		Source string  `json:"source"`
		Target string  `json:"target"`
		Label  string  `json:"label,omitempty"`
		Weight float64 `json:"weight,omitempty"`
		Index  int     `json:"index"`
		Loop   bool    `json:"loop,omitempty"`
	}
	type jsonGraph struct {
		Vertices []jsonVertex   `json:"vertices"`
		Edges    []jsonEdge     `json:"edges"`
		Metadata map[string]any `json:"metadata"`
	}

	doc := jsonGraph{
		Vertices: make([]jsonVertex, 0, len(snap.Vertices)),
		Edges:    make([]jsonEdge, 0, len(snap.Edges)),
		Metadata: map[string]any{
			"width":       snap.Width,
			"height":      snap.Height,
			"directed":    snap.Directed,
			"vertexCount": len(snap.Vertices),
			"edgeCount":   len(snap.Edges),
			"timestamp":   time.Now().Format(time.RFC3339),
		},
	}

	for _, v := range snap.Vertices {
		doc.Vertices = append(doc.Vertices, jsonVertex{
			ID:     v.ID,
			Label:  v.Label,
			X:      v.X,
			Y:      v.Y,
			Radius: v.Radius,
			Color:  opts.Palette.VertexColor(v.ID),
		})
	}
	for _, e := range snap.Edges {
		doc.Edges = append(doc.Edges, jsonEdge{
			ID:     e.ID,
			Source: snap.Vertices[e.From].ID,
			Target: snap.Vertices[e.To].ID,
			Label:  e.Label,
			Weight: e.Weight,
			Index:  e.Index,
			Loop:   e.Loop,
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}

// DOTRenderer outputs Graphviz DOT with pinned positions.
type DOTRenderer struct{}

// Name returns the renderer's short name.
func (r *DOTRenderer) Name() string { return "dot" }

// Description returns a one-line description of the output.
func (r *DOTRenderer) Description() string {
	return "Graphviz DOT with panel positions pinned, for use with neato -n"
}

// Render creates the DOT document for the snapshot.
func (r *DOTRenderer) Render(snap *view.Snapshot, opts *Options) ([]byte, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	if opts == nil {
		opts = NewDefaultOptions()
	}

	kind, arrow := "graph", "--"
	if snap.Directed {
		kind, arrow = "digraph", "->"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s G {\n", kind)
	fmt.Fprintf(&buf, "  graph [bgcolor=%q, size=\"%.2f,%.2f\"];\n",
		opts.Palette.background(), snap.Width/72.0, snap.Height/72.0)
	fmt.Fprintf(&buf, "  node [shape=circle, fontname=\"Arial\", fontsize=%.1f];\n", opts.FontSize)
	fmt.Fprintf(&buf, "  edge [fontname=\"Arial\", fontsize=%.1f];\n", opts.FontSize*0.8)

	for _, v := range snap.Vertices {
		label := v.Label
		if label == "" {
			label = v.ID
		}
		fmt.Fprintf(&buf, "  %q [label=%q, color=%q, width=%.2f, pos=\"%.2f,%.2f!\"];\n",
			v.ID, label, opts.Palette.VertexColor(v.ID), v.Radius/20.0, v.X/100.0, v.Y/100.0)
	}

	for _, e := range snap.Edges {
		fmt.Fprintf(&buf, "  %q %s %q [color=%q, weight=%.2f];\n",
			snap.Vertices[e.From].ID, arrow, snap.Vertices[e.To].ID,
			opts.Palette.EdgeColor(e.ID), math.Max(e.Weight, 1.0))
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// drawLine marks a path on the grid with Bresenham's algorithm, leaving
// vertex symbols intact.
func drawLine(grid [][]rune, x1, y1, x2, y2 int) {
	dx := absInt(x2 - x1)
	dy := -absInt(y2 - y1)
	sx := 1
	if x1 >= x2 {
		sx = -1
	}
	sy := 1
	if y1 >= y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if x1 >= 0 && x1 < len(grid[0]) && y1 >= 0 && y1 < len(grid) {
			if grid[y1][x1] == ' ' {
				grid[y1][x1] = '.'
			}
		}
		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 >= dy {
			if x1 == x2 {
				break
			}
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			if y1 == y2 {
				break
			}
			err += dx
			y1 += sy
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
