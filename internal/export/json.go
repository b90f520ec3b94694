package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dusk-indust/codeshift/internal/graph"
)

// HierarchyNode is the nested form tree-layout libraries (d3.hierarchy)
// consume: one object per node with its children inlined.
type HierarchyNode struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"` // "<type>: <value>"
	Children []*HierarchyNode `json:"children,omitempty"`
}

// Hierarchy nests g starting at its root.
func Hierarchy(g *graph.Graph) *HierarchyNode {
	return hierarchyFrom(g, graph.RootID)
}

func hierarchyFrom(g *graph.Graph, id string) *HierarchyNode {
	n := g.Node(id)
	if n == nil {
		return nil
	}
	h := &HierarchyNode{
		ID:   n.ID,
		Name: fmt.Sprintf("%s: %s", n.Kind, n.Label),
	}
	for _, c := range n.Children {
		if child := hierarchyFrom(g, c); child != nil {
			h.Children = append(h.Children, child)
		}
	}
	return h
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
