package dependency

import (
	"errors"
	"sort"

	"github.com/json-to-terraform/connector/internal/diagram"
)

// ErrCycle means no order exists: some nodes depend on each other.
var ErrCycle = errors.New("dependency cycle detected")

// Edge says To depends on From.
type Edge struct {
	From string
	To   string
}

// Resolve orders nodes so that every node comes after the nodes it depends on. Tiers group
// nodes whose dependencies all sit in earlier tiers; ordered is the tiers concatenated, and
// nodes within a tier are sorted. Edges that reference unknown nodes or loop on one node are
// ignored.
func Resolve(nodes []string, edges []Edge) (ordered []string, tiers [][]string, err error) {
	if len(nodes) == 0 {
		return nil, nil, nil
	}

	nodeSet := make(map[string]bool)
	for _, id := range nodes {
		nodeSet[id] = true
	}

	inDegree := make(map[string]int)
	for id := range nodeSet {
		inDegree[id] = 0
	}
	for _, e := range edges {
		if !nodeSet[e.From] || !nodeSet[e.To] || e.From == e.To {
			continue
		}
		inDegree[e.To]++
	}

	var queue []string
	for id := range nodeSet {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	ordered = make([]string, 0, len(nodeSet))
	for len(queue) > 0 {
		sort.Strings(queue)
		tiers = append(tiers, queue)
		var nextQueue []string
		for _, u := range queue {
			ordered = append(ordered, u)
			for _, e := range edges {
				if e.From != u || !nodeSet[e.To] || e.From == e.To {
					continue
				}
				inDegree[e.To]--
				if inDegree[e.To] == 0 {
					nextQueue = append(nextQueue, e.To)
				}
			}
		}
		queue = nextQueue
	}

	if len(ordered) != len(nodeSet) {
		return nil, nil, ErrCycle
	}
	return ordered, tiers, nil
}

// Order resolves a canvas snapshot: every linked owner depends on its resources, so
// resources are mounted and rendered first.
func Order(s *diagram.Snapshot) (ordered []string, tiers [][]string, err error) {
	if s == nil {
		return nil, nil, nil
	}
	nodes := make([]string, 0, len(s.Owners)+len(s.Resources))
	for _, r := range s.Resources {
		nodes = append(nodes, r.ID)
	}
	for _, o := range s.Owners {
		nodes = append(nodes, o.ID)
	}
	edges := make([]Edge, 0, len(s.Links))
	for _, l := range s.Links {
		edges = append(edges, Edge{From: l.Resource, To: l.Owner})
	}
	return Resolve(nodes, edges)
}
