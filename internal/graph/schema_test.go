package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *Graph {
	b := newBuilder()
	fn := b.add(0, KindFunction, "def f(...)")
	b.add(fn, KindReturn, "return ...")
	b.add(0, KindCall, "g(...)")
	return b.graph()
}

func TestGraph_JSONShape(t *testing.T) {
	data, err := json.Marshal(newBuilder().graph())
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[{"id":"n0","type":"Program","value":"Program","children":[]}],"edges":[]}`, string(data))

	data, err = json.Marshal(sampleGraph())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nodes": [
			{"id":"n0","type":"Program","value":"Program","children":["n1","n3"]},
			{"id":"n1","type":"Function","value":"def f(...)","children":["n2"]},
			{"id":"n2","type":"Return","value":"return ...","children":[]},
			{"id":"n3","type":"Call","value":"g(...)","children":[]}
		],
		"edges": [
			{"source":"n0","target":"n1","type":"child"},
			{"source":"n1","target":"n2","type":"child"},
			{"source":"n0","target":"n3","type":"child"}
		]
	}`, string(data))
}

func TestGraph_NodeLookup(t *testing.T) {
	g := sampleGraph()
	require.NotNil(t, g.Node("n2"))
	assert.Equal(t, KindReturn, g.Node("n2").Kind)
	assert.Nil(t, g.Node("n4"))
	assert.Nil(t, g.Node("n01"))
	assert.Nil(t, g.Node("x1"))
	assert.Nil(t, g.Node("n-1"))
}

func TestGraph_Stats(t *testing.T) {
	st := sampleGraph().Stats()
	assert.Equal(t, 4, st.NodeCount)
	assert.Equal(t, 3, st.EdgeCount)
	assert.Equal(t, 2, st.Depth)
	assert.Equal(t, 1, st.Kinds[KindFunction])
	assert.Equal(t, 1, st.Kinds[KindProgram])
}

func TestGraph_CloneIsDeep(t *testing.T) {
	g := sampleGraph()
	c := g.Clone()
	c.Nodes[0].Children[0] = "n9"
	c.Edges[0].Target = "n9"
	assert.Equal(t, "n1", g.Nodes[0].Children[0])
	assert.Equal(t, "n1", g.Edges[0].Target)
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, LangPython, NormalizeLanguage(" PY "))
	assert.Equal(t, LangGo, NormalizeLanguage("golang"))
	assert.Equal(t, LangRust, NormalizeLanguage("rs"))
	assert.Equal(t, Language("java"), NormalizeLanguage("Java"))
}

func TestGraph_Validate(t *testing.T) {
	require.NoError(t, sampleGraph().Validate())

	tests := []struct {
		name   string
		mutate func(g *Graph)
	}{
		{"no nodes", func(g *Graph) { g.Nodes = nil }},
		{"root kind", func(g *Graph) { g.Nodes[0].Kind = KindFunction }},
		{"sparse ids", func(g *Graph) { g.Nodes[2].ID = "n7" }},
		{"second parent", func(g *Graph) { g.Edges = append(g.Edges, Edge{Source: "n3", Target: "n2", Relation: RelationChild}) }},
		{"orphan", func(g *Graph) { g.Edges = g.Edges[:2] }},
		{"edge into root", func(g *Graph) { g.Edges[0].Target = RootID }},
		{"wrong relation", func(g *Graph) { g.Edges[1].Relation = "calls" }},
		{"children out of order", func(g *Graph) { g.Nodes[0].Children = []string{"n3", "n1"} }},
		{"dangling edge", func(g *Graph) { g.Edges[2].Target = "n12" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := sampleGraph()
			tt.mutate(g)
			assert.ErrorIs(t, g.Validate(), ErrMalformedGraph)
		})
	}
}
