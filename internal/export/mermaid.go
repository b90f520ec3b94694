package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/codeshift/internal/graph"
)

// maxMermaidLabel caps node captions so wide source lines do not blow up
// the rendered diagram.
const maxMermaidLabel = 40

// GenerateMermaid produces a Mermaid graph TD diagram from an extracted tree.
// Node ids are reused as Mermaid ids; captions read "<type>: <value>".
func GenerateMermaid(g *graph.Graph) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, n := range g.Nodes {
		sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", n.ID, mermaidLabel(n)))
	}
	for _, e := range g.Edges {
		sb.WriteString(fmt.Sprintf("  %s --> %s\n", e.Source, e.Target))
	}
	return sb.String()
}

// mermaidLabel escapes the characters Mermaid treats as syntax inside a
// quoted label and truncates long captions.
func mermaidLabel(n graph.Node) string {
	label := fmt.Sprintf("%s: %s", n.Kind, n.Label)
	if n.Kind == graph.KindProgram {
		label = string(n.Kind)
	}
	if r := []rune(label); len(r) > maxMermaidLabel {
		label = string(r[:maxMermaidLabel-3]) + "..."
	}
	return strings.NewReplacer(`"`, "#quot;", "<", "#lt;", ">", "#gt;").Replace(label)
}
