package graph

import (
	"strconv"
	"strings"
)

// --- Enums ---

// Kind is the coarse category tag of a tree node. Grammar-backed extraction
// falls back to the raw tree-sitter kind for categories outside this set.
type Kind string

const (
	KindProgram          Kind = "Program"
	KindFunction         Kind = "Function"
	KindClass            Kind = "Class"
	KindVariable         Kind = "Variable"
	KindImport           Kind = "Import"
	KindCall             Kind = "Call"
	KindReturn           Kind = "Return"
	KindConditional      Kind = "Conditional"
	KindLoop             Kind = "Loop"
	KindTry              Kind = "Try"
	KindExceptionHandler Kind = "ExceptionHandler"
)

// RelationChild is the only edge relation the tree model supports.
const RelationChild = "child"

// RootID is the id of the Program node every graph starts with.
const RootID = "n0"

// Language identifies a source language after tag normalisation.
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
)

// defaultAliases maps shorthand tags onto canonical language names.
var defaultAliases = map[string]Language{
	"js":     LangJavaScript,
	"jsx":    LangJavaScript,
	"mjs":    LangJavaScript,
	"ts":     LangTypeScript,
	"tsx":    LangTypeScript,
	"py":     LangPython,
	"golang": LangGo,
	"rs":     LangRust,
}

// NormalizeLanguage lowercases and trims a language tag and resolves the
// built-in aliases. Unknown tags are returned as-is; they simply have no
// grammar and no scanner family.
func NormalizeLanguage(tag string) Language {
	t := strings.ToLower(strings.TrimSpace(tag))
	if l, ok := defaultAliases[t]; ok {
		return l
	}
	return Language(t)
}

// --- Models ---

// Node is one syntactic unit of the extracted tree.
type Node struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"type"`
	Label    string   `json:"value"`
	Children []string `json:"children"`
}

// Edge links a parent node to one of its children.
type Edge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"type"`
}

// Graph is the node/edge tree produced by every extractor. Nodes[0] is always
// the Program root and node ids match their index ("n<i>").
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Root returns the Program node.
func (g *Graph) Root() *Node {
	return &g.Nodes[0]
}

// Node returns the node with the given id, or nil if the id is out of range.
func (g *Graph) Node(id string) *Node {
	i, ok := nodeIndex(id)
	if !ok || i >= len(g.Nodes) || g.Nodes[i].ID != id {
		return nil
	}
	return &g.Nodes[i]
}

// Clone returns a deep copy so cached graphs are never shared with callers.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		n.Children = append([]string{}, n.Children...)
		out.Nodes[i] = n
	}
	copy(out.Edges, g.Edges)
	return out
}

// GraphStats summarises an extracted graph.
type GraphStats struct {
	NodeCount int          `json:"nodeCount"`
	EdgeCount int          `json:"edgeCount"`
	Depth     int          `json:"depth"`
	Kinds     map[Kind]int `json:"kinds"`
}

// Stats counts nodes per kind and measures the tree depth (root depth is 0).
func (g *Graph) Stats() GraphStats {
	st := GraphStats{
		NodeCount: len(g.Nodes),
		EdgeCount: len(g.Edges),
		Kinds:     make(map[Kind]int),
	}
	depth := make([]int, len(g.Nodes))
	for _, n := range g.Nodes {
		st.Kinds[n.Kind]++
	}
	// Parents always precede their children, so a single pass over edges in
	// emission order is enough.
	for _, e := range g.Edges {
		p, c := g.Node(e.Source), g.Node(e.Target)
		if p == nil || c == nil {
			continue
		}
		pi, _ := nodeIndex(p.ID)
		ci, _ := nodeIndex(c.ID)
		d := depth[pi] + 1
		depth[ci] = d
		if d > st.Depth {
			st.Depth = d
		}
	}
	return st
}

// nodeID formats the id of the i-th emitted node.
func nodeID(i int) string {
	return "n" + strconv.Itoa(i)
}

// nodeIndex parses an id produced by nodeID.
func nodeIndex(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "n")
	if !ok || rest == "" {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 || nodeID(i) != id {
		return 0, false
	}
	return i, true
}
