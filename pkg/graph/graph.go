package graph

import (
	"context"
	"sort"

	fluidizeerrors "github.com/fluidize-dev/fluidize-engine/pkg/errors"
	"github.com/fluidize-dev/fluidize-engine/pkg/store"
)

// Edge is a directed dependency from Source to Target.
type Edge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Graph is the in-memory representation of a project's simulation DAG: a
// keyed collection of nodes and a keyed collection of edges, both keyed by
// id. Ordering on disk is not semantically significant; SaveToFile sorts
// nodes and edges by id so writes are deterministic.
type Graph struct {
	Nodes map[string]*Node `json:"-" yaml:"-"`
	Edges map[string]*Edge `json:"-" yaml:"-"`
}

// fileFormat is the on-disk shape of graph.json: sorted slices rather than
// maps, so repeated saves of an unchanged graph produce byte-identical
// files.
type fileFormat struct {
	Nodes []*Node `json:"nodes" yaml:"nodes"`
	Edges []*Edge `json:"edges" yaml:"edges"`
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
		Edges: make(map[string]*Edge),
	}
}

// AddNode inserts n, replacing any existing node with the same id. Used for
// both node creation and position updates.
func (g *Graph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
}

// GetNode returns the node with the given id, or nil.
func (g *Graph) GetNode(id string) *Node {
	return g.Nodes[id]
}

// RemoveNode removes the node with the given id and every edge whose source
// or target is that id.
func (g *Graph) RemoveNode(id string) {
	delete(g.Nodes, id)
	for edgeID, e := range g.Edges {
		if e.Source == id || e.Target == id {
			delete(g.Edges, edgeID)
		}
	}
}

// AddEdge inserts e, failing with errors.InvalidEdge if either endpoint is
// absent from the graph.
func (g *Graph) AddEdge(e *Edge) error {
	if _, ok := g.Nodes[e.Source]; !ok {
		return fluidizeerrors.InvalidEdge(e.ID, "source", e.Source)
	}
	if _, ok := g.Nodes[e.Target]; !ok {
		return fluidizeerrors.InvalidEdge(e.ID, "target", e.Target)
	}
	g.Edges[e.ID] = e
	return nil
}

// RemoveEdge removes the edge with the given id. Idempotent.
func (g *Graph) RemoveEdge(id string) {
	delete(g.Edges, id)
}

// Validate reports whether every edge's endpoints exist in the graph.
func (g *Graph) Validate() bool {
	for _, e := range g.Edges {
		if _, ok := g.Nodes[e.Source]; !ok {
			return false
		}
		if _, ok := g.Nodes[e.Target]; !ok {
			return false
		}
	}
	return true
}

// Heal drops every orphan edge (one whose source or target no longer
// exists) so the graph becomes valid.
func (g *Graph) Heal() {
	for id, e := range g.Edges {
		if _, ok := g.Nodes[e.Source]; !ok {
			delete(g.Edges, id)
			continue
		}
		if _, ok := g.Nodes[e.Target]; !ok {
			delete(g.Edges, id)
		}
	}
}

// Predecessors returns the ids of nodes with an edge pointing at id, sorted
// for determinism.
func (g *Graph) Predecessors(id string) []string {
	var preds []string
	for _, e := range g.Edges {
		if e.Target == id {
			preds = append(preds, e.Source)
		}
	}
	sort.Strings(preds)
	return preds
}

// FromFile loads a graph from path using s. A missing file yields an empty
// graph rather than an error.
func FromFile(ctx context.Context, s store.Store, path string) (*Graph, error) {
	exists, err := s.Exists(ctx, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return New(), nil
	}

	var ff fileFormat
	if err := s.ReadJSON(ctx, path, &ff); err != nil {
		return nil, err
	}

	g := New()
	for _, n := range ff.Nodes {
		g.AddNode(n)
	}
	for _, e := range ff.Edges {
		g.Edges[e.ID] = e
	}
	return g, nil
}

// SaveToFile writes g to path atomically, creating parent directories as
// needed.
func (g *Graph) SaveToFile(ctx context.Context, s store.Store, path string) error {
	ff := fileFormat{
		Nodes: g.sortedNodes(),
		Edges: g.sortedEdges(),
	}
	return s.WriteJSON(ctx, path, ff)
}

func (g *Graph) sortedNodes() []*Node {
	nodes := make([]*Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

func (g *Graph) sortedEdges() []*Edge {
	edges := make([]*Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	return edges
}
