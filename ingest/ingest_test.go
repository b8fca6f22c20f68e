package ingest

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphpane/graphpane/graph"
	"github.com/graphpane/graphpane/render"
	"github.com/graphpane/graphpane/view"
)

func TestGetResolvesLoaders(t *testing.T) {
	l, err := Get("json")
	require.NoError(t, err)
	assert.Equal(t, "json", l.Name())

	l, err = Get("CSV")
	require.NoError(t, err)
	assert.Equal(t, "csv", l.Name())

	_, err = Get("parquet")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func vertexIDs(t *testing.T, g *graph.Graph) []string {
	t.Helper()
	var ids []string
	for _, v := range g.Vertices() {
		n, ok := v.Value.(*Node)
		require.True(t, ok, "payload should be *Node")
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return ids
}

func TestJSONLoaderBuildsGraph(t *testing.T) {
	doc := []byte(`{
		"vertices": [
			{"id": "a", "label": "Alpha", "radius": 14},
			{"id": "b", "label": "Beta"},
			{"id": "c"}
		],
		"edges": [
			{"from": "a", "to": "b", "label": "strong", "weight": 2},
			{"from": "b", "to": "c"}
		]
	}`)

	g, err := (&JSONLoader{}).Load(doc)
	require.NoError(t, err)

	assert.Equal(t, 3, g.Order())
	assert.Equal(t, 2, g.Size())
	assert.False(t, g.Directed())
	assert.Equal(t, []string{"a", "b", "c"}, vertexIDs(t, g))

	var labeled *graph.Edge
	for _, e := range g.Edges() {
		if e.Value == "strong" {
			labeled = e
		}
	}
	require.NotNil(t, labeled, "edge with label should exist")
	assert.Equal(t, 2.0, labeled.Weight)
}

func TestJSONLoaderPayloads(t *testing.T) {
	doc := []byte(`{
		"vertices": [{"id": "a", "label": "Alpha", "radius": 14}]
	}`)

	g, err := (&JSONLoader{}).Load(doc)
	require.NoError(t, err)

	v := g.Vertices()[0]
	n := v.Value.(*Node)
	assert.Equal(t, "a", n.ID)
	assert.Equal(t, "Alpha", n.Label)
	assert.Equal(t, 14.0, n.Radius)
	assert.Equal(t, "Alpha", n.String())
}

func TestJSONLoaderDirected(t *testing.T) {
	g, err := (&JSONLoader{}).Load([]byte(`{"directed": true, "vertices": [{"id": "a"}]}`))
	require.NoError(t, err)
	assert.True(t, g.Directed())
}

func TestJSONLoaderAllowsParallelEdgesAndLoops(t *testing.T) {
	doc := []byte(`{
		"vertices": [{"id": "a"}, {"id": "b"}],
		"edges": [
			{"from": "a", "to": "b"},
			{"from": "b", "to": "a"},
			{"from": "a", "to": "a"}
		]
	}`)

	g, err := (&JSONLoader{}).Load(doc)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Size())
}

func TestJSONLoaderRejectsUnknownEndpoint(t *testing.T) {
	doc := []byte(`{
		"vertices": [{"id": "a"}],
		"edges": [{"from": "a", "to": "ghost"}]
	}`)

	_, err := (&JSONLoader{}).Load(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown vertex")
}

func TestJSONLoaderRejectsDuplicateIDs(t *testing.T) {
	doc := []byte(`{"vertices": [{"id": "a"}, {"id": "a"}]}`)

	_, err := (&JSONLoader{}).Load(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate vertex id")
}

func TestJSONLoaderRejectsMalformedDocument(t *testing.T) {
	_, err := (&JSONLoader{}).Load([]byte(`{"vertices": [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse json")
}

func TestJSONLoaderMatchesEndpointAliases(t *testing.T) {
	doc := []byte(`{
		"vertices": [{"id": "a"}, {"id": "b"}],
		"edges": [{"source": "a", "target": "b", "weight": 1.5}]
	}`)

	g, err := (&JSONLoader{}).Load(doc)
	require.NoError(t, err)

	assert.Equal(t, 1, g.Size())
	assert.Equal(t, 1.5, g.Edges()[0].Weight)
}

func TestJSONLoaderReadsRendererOutput(t *testing.T) {
	snap := &view.Snapshot{
		Width:    800,
		Height:   600,
		Directed: true,
		Vertices: []view.SnapshotVertex{
			{ID: "v1", Label: "alpha", X: 100, Y: 100, Radius: 12},
			{ID: "v2", Label: "beta", X: 300, Y: 200, Radius: 16},
		},
		Edges: []view.SnapshotEdge{
			{ID: "e1", Label: "link", Weight: 2, From: 0, To: 1},
		},
	}
	out, err := (&render.JSONRenderer{}).Render(snap, nil)
	require.NoError(t, err)

	g, err := (&JSONLoader{}).Load(out)
	require.NoError(t, err)

	assert.Equal(t, 2, g.Order())
	assert.Equal(t, 1, g.Size())
	assert.True(t, g.Directed())
	assert.Equal(t, []string{"v1", "v2"}, vertexIDs(t, g))

	e := g.Edges()[0]
	assert.Equal(t, "link", e.Value)
	assert.Equal(t, 2.0, e.Weight)

	for _, v := range g.Vertices() {
		n := v.Value.(*Node)
		if n.ID == "v2" {
			assert.Equal(t, "beta", n.Label)
			assert.Equal(t, 16.0, n.Radius)
		}
	}
}

func TestCSVLoaderBuildsGraph(t *testing.T) {
	data := []byte(`from,to,weight,label
# demo edge list
a,b,2,strong
b,c,,
c,a,1.5,back
`)

	g, err := (&CSVLoader{}).Load(data)
	require.NoError(t, err)

	assert.Equal(t, 3, g.Order())
	assert.Equal(t, 3, g.Size())
	assert.Equal(t, []string{"a", "b", "c"}, vertexIDs(t, g))

	var back *graph.Edge
	for _, e := range g.Edges() {
		if e.Value == "back" {
			back = e
		}
	}
	require.NotNil(t, back)
	assert.Equal(t, 1.5, back.Weight)
}

func TestCSVLoaderMatchesHeaderAliases(t *testing.T) {
	data := []byte("source,target\nx,y\n")

	g, err := (&CSVLoader{}).Load(data)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Order())
	assert.Equal(t, 1, g.Size())
}

func TestCSVLoaderRequiresEndpointColumns(t *testing.T) {
	_, err := (&CSVLoader{}).Load([]byte("first,second\na,b\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source and target")
}

func TestCSVLoaderRejectsBadWeight(t *testing.T) {
	_, err := (&CSVLoader{}).Load([]byte("from,to,weight\na,b,heavy\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestGenerateIsDeterministic(t *testing.T) {
	edgePairs := func(g *graph.Graph) []string {
		var pairs []string
		for _, e := range g.Edges() {
			from, to := e.Endpoints()
			pairs = append(pairs, from.Value.(*Node).ID+"-"+to.Value.(*Node).ID)
		}
		sort.Strings(pairs)
		return pairs
	}

	first := Generate(10, 15, 42)
	second := Generate(10, 15, 42)

	assert.Equal(t, 10, first.Order())
	assert.Equal(t, 15, first.Size())
	assert.Equal(t, vertexIDs(t, first), vertexIDs(t, second))
	assert.Equal(t, edgePairs(first), edgePairs(second))

	for _, v := range first.Vertices() {
		n := v.Value.(*Node)
		assert.GreaterOrEqual(t, n.Radius, 8.0)
		assert.Less(t, n.Radius, 16.0)
	}
}

func TestGenerateWithoutVertices(t *testing.T) {
	g := Generate(0, 5, 1)
	assert.Equal(t, 0, g.Order())
	assert.Equal(t, 0, g.Size())
}

func TestNodeProviders(t *testing.T) {
	assert.Equal(t, "Alpha", NodeLabel(&Node{ID: "a", Label: "Alpha"}))
	assert.Equal(t, "a", NodeLabel(&Node{ID: "a"}))
	assert.Equal(t, "plain", NodeLabel("plain"))

	assert.Equal(t, 14.0, NodeRadius(&Node{Radius: 14}))
	assert.Equal(t, 0.0, NodeRadius(&Node{}))
	assert.Equal(t, 0.0, NodeRadius("plain"))
}
