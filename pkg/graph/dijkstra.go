package graph

import (
	"container/heap"
	"math"
)

const unreachableDist = math.MaxInt

type pqItem struct {
	node Node
	dist int
}

// distQueue orders by distance, then node id, so runs are reproducible.
type distQueue []pqItem

func (q distQueue) Len() int { return len(q) }
func (q distQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}
func (q distQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *distQueue) Push(x any)   { *q = append(*q, x.(pqItem)) }
func (q *distQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}

// dijkstra returns the distance row and first-hop row for source. Among
// equally short paths the one whose first hop has the smallest id wins.
// With positive weights every equal-length predecessor of v is settled
// before v, so a node's first hop is final when it is popped.
func (m *Model) dijkstra(source Node) ([]int, []Node) {
	n := len(m.nodes)
	dist := make([]int, n)
	first := make([]Node, n)
	settled := make([]bool, n)
	for i := range dist {
		dist[i] = unreachableDist
	}

	src := m.index[source]
	dist[src] = 0
	first[src] = source

	pq := &distQueue{{node: source, dist: 0}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		ci := m.index[cur.node]
		if settled[ci] {
			continue
		}
		settled[ci] = true

		for _, nb := range m.neighbors[cur.node] {
			ni := m.index[nb]
			if settled[ni] {
				continue
			}
			hop := first[ci]
			if cur.node == source {
				hop = nb
			}
			nd := cur.dist + m.adjacency[cur.node][nb]
			switch {
			case nd < dist[ni]:
				dist[ni] = nd
				first[ni] = hop
				heap.Push(pq, pqItem{node: nb, dist: nd})
			case nd == dist[ni] && hop < first[ni]:
				first[ni] = hop
			}
		}
	}
	return dist, first
}
