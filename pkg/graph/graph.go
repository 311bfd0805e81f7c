// Package graph holds the immutable navigation topology and its
// precomputed all-pairs shortest distances.
//
// A Model is built once from configuration and shared read-only by every
// other planner component. Edges are undirected and weighted by the number
// of discrete steps needed to traverse them.
package graph

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dd0wney/tamp-planner/pkg/parallel"
	"github.com/dd0wney/tamp-planner/pkg/planerr"
)

// Node identifies a location on the navigation graph.
type Node int

// NodeSpec declares a node with an optional human-readable name.
type NodeSpec struct {
	ID   Node
	Name string
}

// Edge is an undirected connection traversed in Weight unit steps.
type Edge struct {
	From   Node
	To     Node
	Weight int
}

// Model is a connected, weighted, undirected graph with precomputed
// shortest distances and next hops. It is never mutated after New returns.
type Model struct {
	nodes     []Node
	index     map[Node]int
	names     map[Node]string
	adjacency map[Node]map[Node]int
	neighbors map[Node][]Node

	dist    [][]int
	nextHop [][]Node
}

// New validates the topology and computes all-pairs shortest paths. Any
// structural problem, including a disconnected graph, is reported as a
// configuration error.
func New(nodes []NodeSpec, edges []Edge) (*Model, error) {
	if len(nodes) == 0 {
		return nil, planerr.Configuration("graph.New", "no nodes declared")
	}

	m := &Model{
		nodes:     make([]Node, 0, len(nodes)),
		index:     make(map[Node]int, len(nodes)),
		names:     make(map[Node]string, len(nodes)),
		adjacency: make(map[Node]map[Node]int, len(nodes)),
		neighbors: make(map[Node][]Node, len(nodes)),
	}

	for _, ns := range nodes {
		if _, dup := m.adjacency[ns.ID]; dup {
			return nil, planerr.New("graph.New").Node(int(ns.ID)).
				Context("declared twice").Cause(planerr.ErrConfiguration).Err()
		}
		m.nodes = append(m.nodes, ns.ID)
		m.names[ns.ID] = ns.Name
		m.adjacency[ns.ID] = make(map[Node]int)
	}
	sort.Slice(m.nodes, func(i, j int) bool { return m.nodes[i] < m.nodes[j] })
	for i, n := range m.nodes {
		m.index[n] = i
	}

	for _, e := range edges {
		if err := m.addEdge(e); err != nil {
			return nil, err
		}
	}
	for n, row := range m.adjacency {
		ns := make([]Node, 0, len(row))
		for nb := range row {
			ns = append(ns, nb)
		}
		sort.Slice(ns, func(i, j int) bool { return ns[i] < ns[j] })
		m.neighbors[n] = ns
	}

	if err := m.computeShortestPaths(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) addEdge(e Edge) error {
	bad := func(reason string) error {
		return planerr.New("graph.New").Edge(int(e.From), int(e.To)).
			Context("%s", reason).Cause(planerr.ErrConfiguration).Err()
	}

	if _, ok := m.adjacency[e.From]; !ok {
		return bad(fmt.Sprintf("unknown node %d", e.From))
	}
	if _, ok := m.adjacency[e.To]; !ok {
		return bad(fmt.Sprintf("unknown node %d", e.To))
	}
	if e.From == e.To {
		return bad("self-loop")
	}
	if e.Weight <= 0 {
		return bad(fmt.Sprintf("weight %d must be positive", e.Weight))
	}
	if _, dup := m.adjacency[e.From][e.To]; dup {
		return bad("declared twice")
	}

	m.adjacency[e.From][e.To] = e.Weight
	m.adjacency[e.To][e.From] = e.Weight
	return nil
}

// computeShortestPaths runs one Dijkstra per source on the worker pool.
// Each task owns its own row so no further locking is needed.
func (m *Model) computeShortestPaths() error {
	n := len(m.nodes)
	m.dist = make([][]int, n)
	m.nextHop = make([][]Node, n)

	pool := parallel.NewWorkerPool(0)
	for i := range m.nodes {
		i := i
		if err := pool.Submit(func() error {
			m.dist[i], m.nextHop[i] = m.dijkstra(m.nodes[i])
			return nil
		}); err != nil {
			pool.Close()
			return err
		}
	}
	if err := pool.Wait(); err != nil {
		return fmt.Errorf("shortest path computation: %w", err)
	}

	var unreachable []string
	for j, d := range m.dist[0] {
		if d == unreachableDist {
			unreachable = append(unreachable, strconv.Itoa(int(m.nodes[j])))
		}
	}
	if len(unreachable) > 0 {
		return planerr.Configuration("graph.New",
			"graph is disconnected: nodes %v unreachable from node %d", unreachable, m.nodes[0])
	}
	return nil
}

// Has reports whether n is a node of the graph.
func (m *Model) Has(n Node) bool {
	_, ok := m.index[n]
	return ok
}

// Nodes returns all nodes in ascending order.
func (m *Model) Nodes() []Node {
	out := make([]Node, len(m.nodes))
	copy(out, m.nodes)
	return out
}

// Len returns the number of nodes.
func (m *Model) Len() int {
	return len(m.nodes)
}

// Name returns the declared name of n, or its number when unnamed.
func (m *Model) Name(n Node) string {
	if name := m.names[n]; name != "" {
		return name
	}
	return strconv.Itoa(int(n))
}

// AdjacencyRow returns a copy of the neighbor to weight mapping of n.
func (m *Model) AdjacencyRow(n Node) map[Node]int {
	row := m.adjacency[n]
	out := make(map[Node]int, len(row))
	for nb, w := range row {
		out[nb] = w
	}
	return out
}

// Neighbors returns the neighbors of n in ascending order. This is the
// fixed enumeration order used for every tie-break over directions.
func (m *Model) Neighbors(n Node) []Node {
	ns := m.neighbors[n]
	out := make([]Node, len(ns))
	copy(out, ns)
	return out
}

// Weight returns the weight of edge a-b.
func (m *Model) Weight(a, b Node) (int, bool) {
	w, ok := m.adjacency[a][b]
	return w, ok
}

// Adjacent reports whether a and b share an edge.
func (m *Model) Adjacent(a, b Node) bool {
	_, ok := m.adjacency[a][b]
	return ok
}

// ShortestDistance returns the precomputed step count between a and b.
// It panics if either node is unknown, which callers prevent by
// validating destinations on arrival.
func (m *Model) ShortestDistance(a, b Node) int {
	return m.dist[m.mustIndex(a)][m.mustIndex(b)]
}

// NextHop returns the second node on a shortest path from a to b, or a
// itself when a == b.
func (m *Model) NextHop(a, b Node) Node {
	return m.nextHop[m.mustIndex(a)][m.mustIndex(b)]
}

// ShortestPath returns the node sequence of a shortest path from a to b,
// both ends included.
func (m *Model) ShortestPath(a, b Node) []Node {
	path := []Node{a}
	for cur := a; cur != b; {
		cur = m.NextHop(cur, b)
		path = append(path, cur)
	}
	return path
}

func (m *Model) mustIndex(n Node) int {
	i, ok := m.index[n]
	if !ok {
		panic(fmt.Sprintf("graph: unknown node %d", n))
	}
	return i
}
