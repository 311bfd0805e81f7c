package graph

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// randomConnected builds a connected graph from seed: a random spanning
// tree plus a few extra edges, weights in [1,5].
func randomConnected(seed int64, size int) (*Model, error) {
	rng := rand.New(rand.NewSource(seed))
	nodes := specs()
	for i := 0; i < size; i++ {
		nodes = append(nodes, NodeSpec{ID: Node(i)})
	}

	seen := make(map[[2]Node]bool)
	var edges []Edge
	add := func(a, b Node) {
		if a == b {
			return
		}
		if a > b {
			a, b = b, a
		}
		if seen[[2]Node{a, b}] {
			return
		}
		seen[[2]Node{a, b}] = true
		edges = append(edges, Edge{From: a, To: b, Weight: 1 + rng.Intn(5)})
	}
	for i := 1; i < size; i++ {
		add(Node(i), Node(rng.Intn(i)))
	}
	for i := 0; i < size; i++ {
		add(Node(rng.Intn(size)), Node(rng.Intn(size)))
	}
	return New(nodes, edges)
}

// TestDistanceMetricProperties checks that shortest distances form a metric
// on every connected graph
func TestDistanceMetricProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("distance is symmetric with zero diagonal", prop.ForAll(
		func(seed int64, size int) bool {
			m, err := randomConnected(seed, size)
			if err != nil {
				return false
			}
			for _, a := range m.Nodes() {
				if m.ShortestDistance(a, a) != 0 {
					return false
				}
				for _, b := range m.Nodes() {
					if m.ShortestDistance(a, b) != m.ShortestDistance(b, a) {
						return false
					}
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(1, 10),
	))

	properties.Property("triangle inequality holds for all triples", prop.ForAll(
		func(seed int64, size int) bool {
			m, err := randomConnected(seed, size)
			if err != nil {
				return false
			}
			for _, a := range m.Nodes() {
				for _, b := range m.Nodes() {
					for _, c := range m.Nodes() {
						if m.ShortestDistance(a, c) > m.ShortestDistance(a, b)+m.ShortestDistance(b, c) {
							return false
						}
					}
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(1, 10),
	))

	properties.Property("next hop lies on a shortest path", prop.ForAll(
		func(seed int64, size int) bool {
			m, err := randomConnected(seed, size)
			if err != nil {
				return false
			}
			for _, a := range m.Nodes() {
				for _, b := range m.Nodes() {
					if a == b {
						continue
					}
					hop := m.NextHop(a, b)
					w, ok := m.Weight(a, hop)
					if !ok || w+m.ShortestDistance(hop, b) != m.ShortestDistance(a, b) {
						return false
					}
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(2, 10),
	))

	properties.TestingRun(t)
}
