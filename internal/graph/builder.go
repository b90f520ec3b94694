package graph

// builder accumulates one Graph. Every extraction allocates its own builder,
// so ids restart at n0 for each call and concurrent calls never share state.
type builder struct {
	g *Graph
}

func newBuilder() *builder {
	return &builder{g: &Graph{
		Nodes: []Node{{
			ID:       RootID,
			Kind:     KindProgram,
			Label:    string(KindProgram),
			Children: []string{},
		}},
		Edges: []Edge{},
	}}
}

// add emits the next node under parent and returns its index.
func (b *builder) add(parent int, kind Kind, label string) int {
	idx := len(b.g.Nodes)
	id := nodeID(idx)
	b.g.Nodes = append(b.g.Nodes, Node{
		ID:       id,
		Kind:     kind,
		Label:    label,
		Children: []string{},
	})
	b.g.Edges = append(b.g.Edges, Edge{
		Source:   b.g.Nodes[parent].ID,
		Target:   id,
		Relation: RelationChild,
	})
	b.g.Nodes[parent].Children = append(b.g.Nodes[parent].Children, id)
	return idx
}

func (b *builder) graph() *Graph {
	return b.g
}

// scopeStack tracks the current default parent. It never drops below the root.
type scopeStack []int

func (s scopeStack) top() int { return s[len(s)-1] }

func (s *scopeStack) push(i int) { *s = append(*s, i) }

func (s *scopeStack) pop() {
	if len(*s) > 1 {
		*s = (*s)[:len(*s)-1]
	}
}

func (s scopeStack) depth() int { return len(s) }
