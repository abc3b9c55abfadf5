// Package visual renders a project's simulation graph as a Mermaid
// flowchart, for embedding in docs or piping into any Mermaid-aware
// renderer. It operates directly on *graph.Graph and has no dependency on
// the execution or storage layers.
package visual

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fluidize-dev/fluidize-engine/pkg/graph"
)

// Direction is the Mermaid flowchart direction.
type Direction string

const (
	TopDown    Direction = "TD"
	LeftRight  Direction = "LR"
)

// Options controls how a graph is rendered to a Mermaid flowchart.
type Options struct {
	// Direction defaults to TopDown if empty.
	Direction Direction
	// Title is rendered as a frontmatter block if set.
	Title string
}

// RenderMermaid generates a Mermaid flowchart string from g, computing a
// topological order via graph.Order so node declaration order is
// deterministic across renders of the same graph.
func RenderMermaid(g *graph.Graph, opts Options) (string, error) {
	if g == nil {
		return "", fmt.Errorf("graph is nil")
	}

	direction := opts.Direction
	if direction == "" {
		direction = TopDown
	}

	order, _, err := graph.Order(g)
	if err != nil {
		// A cyclic graph still has a meaningful diagram; fall back to a
		// sorted node listing rather than failing the render outright.
		order = sortedNodeIDs(g)
	}

	var b strings.Builder
	if opts.Title != "" {
		fmt.Fprintf(&b, "---\ntitle: %s\n---\n", opts.Title)
	}
	fmt.Fprintf(&b, "flowchart %s\n", direction)

	displayID := make(map[string]string, len(order))
	for _, id := range order {
		displayID[id] = sanitizeMermaidID(id)
	}

	for _, id := range order {
		node := g.GetNode(id)
		label := nodeLabel(node)
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", displayID[id], escapeMermaidLabel(label))
	}

	b.WriteString("\n")
	renderEdges(&b, g, displayID)

	return b.String(), nil
}

func renderEdges(b *strings.Builder, g *graph.Graph, displayID map[string]string) {
	edges := make([]*graph.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	for _, e := range edges {
		source, okSource := displayID[e.Source]
		target, okTarget := displayID[e.Target]
		if !okSource || !okTarget {
			continue
		}
		fmt.Fprintf(b, "    %s --> %s\n", source, target)
	}
}

func sortedNodeIDs(g *graph.Graph) []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// sanitizeMermaidID makes a node id safe to use as a Mermaid identifier.
func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer("/", "--", " ", "_")
	return r.Replace(id)
}

// nodeLabel prefers the node's display label, falling back to its id.
func nodeLabel(node *graph.Node) string {
	if node == nil {
		return "?"
	}
	if node.Data.Label != "" {
		return node.Data.Label
	}
	return node.ID
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, `"`, `#quot;`)
}
