package graph

import (
	"sort"

	fluidizeerrors "github.com/fluidize-dev/fluidize-engine/pkg/errors"
)

// Order computes a flat execution order for g's nodes and a predecessor map
// from node id to the ids of its direct upstream nodes.
//
// It is a topological sort via Kahn's algorithm processed layer by layer:
// each layer of ready nodes is sorted so repeated runs of the same graph
// always yield the same order (BFS layering, ties broken lexicographically
// by id). An empty graph
// returns empty results; callers treat that as errors.NoNodesToRun. A cycle
// is reported as errors.GraphHasCycle naming the unprocessed nodes.
func Order(g *Graph) (order []string, predecessors map[string][]string, err error) {
	predecessors = make(map[string][]string, len(g.Nodes))
	inDegree := make(map[string]int, len(g.Nodes))
	for id := range g.Nodes {
		inDegree[id] = 0
	}
	for _, e := range g.Edges {
		inDegree[e.Target]++
	}
	for id := range g.Nodes {
		predecessors[id] = g.Predecessors(id)
	}

	var queue []string
	for id, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	successors := make(map[string][]string)
	for _, e := range g.Edges {
		successors[e.Source] = append(successors[e.Source], e.Target)
	}

	order = make([]string, 0, len(g.Nodes))
	for len(queue) > 0 {
		var nextLayer []string
		for _, id := range queue {
			order = append(order, id)

			for _, next := range successors[id] {
				inDegree[next]--
				if inDegree[next] == 0 {
					nextLayer = append(nextLayer, next)
				}
			}
		}
		sort.Strings(nextLayer)
		queue = nextLayer
	}

	if len(order) != len(g.Nodes) {
		processed := make(map[string]bool, len(order))
		for _, id := range order {
			processed[id] = true
		}
		var stuck []string
		for id := range g.Nodes {
			if !processed[id] {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, nil, fluidizeerrors.GraphHasCycle(stuck)
	}

	return order, predecessors, nil
}
