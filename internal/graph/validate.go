package graph

import (
	"errors"
	"fmt"
	"slices"
)

// ErrMalformedGraph is wrapped by every Validate failure.
var ErrMalformedGraph = errors.New("malformed graph")

// Validate checks the structural invariants every extractor guarantees:
// a Program root at n0, dense ids, exactly one incoming child edge per
// non-root node, and children lists that mirror the edges in order.
func (g *Graph) Validate() error {
	if len(g.Nodes) == 0 {
		return fmt.Errorf("%w: no root node", ErrMalformedGraph)
	}
	if root := g.Nodes[0]; root.ID != RootID || root.Kind != KindProgram {
		return fmt.Errorf("%w: root is %s/%s, want %s/%s", ErrMalformedGraph, root.ID, root.Kind, RootID, KindProgram)
	}
	for i, n := range g.Nodes {
		if n.ID != nodeID(i) {
			return fmt.Errorf("%w: node %d has id %q", ErrMalformedGraph, i, n.ID)
		}
	}

	incoming := make([]int, len(g.Nodes))
	fromEdges := make([][]string, len(g.Nodes))
	for _, e := range g.Edges {
		if e.Relation != RelationChild {
			return fmt.Errorf("%w: edge %s->%s has relation %q", ErrMalformedGraph, e.Source, e.Target, e.Relation)
		}
		si, ok := nodeIndex(e.Source)
		if !ok || si >= len(g.Nodes) {
			return fmt.Errorf("%w: edge source %q does not exist", ErrMalformedGraph, e.Source)
		}
		ti, ok := nodeIndex(e.Target)
		if !ok || ti >= len(g.Nodes) {
			return fmt.Errorf("%w: edge target %q does not exist", ErrMalformedGraph, e.Target)
		}
		if ti <= si {
			return fmt.Errorf("%w: edge %s->%s points backwards", ErrMalformedGraph, e.Source, e.Target)
		}
		incoming[ti]++
		fromEdges[si] = append(fromEdges[si], e.Target)
	}

	if incoming[0] != 0 {
		return fmt.Errorf("%w: root has %d incoming edges", ErrMalformedGraph, incoming[0])
	}
	for i := 1; i < len(g.Nodes); i++ {
		if incoming[i] != 1 {
			return fmt.Errorf("%w: node %s has %d incoming edges", ErrMalformedGraph, g.Nodes[i].ID, incoming[i])
		}
	}
	for i, n := range g.Nodes {
		if !slices.Equal(n.Children, fromEdges[i]) {
			return fmt.Errorf("%w: children of %s do not match its edges", ErrMalformedGraph, n.ID)
		}
	}
	return nil
}
