// Package motion models the actor's discrete position on the navigation
// graph: either standing on a node or part-way along an edge.
package motion

import (
	"fmt"
	"sort"

	"github.com/dd0wney/tamp-planner/pkg/graph"
	"github.com/dd0wney/tamp-planner/pkg/planerr"
)

// Progress is an immutable position. The zero value is Stable(0).
//
// In transit, origin is the last stable node, toward the direction being
// travelled and remaining the steps left to reach it (0 < remaining <
// weight of the edge).
type Progress struct {
	origin    graph.Node
	toward    graph.Node
	remaining int
	inTransit bool
}

// Stable returns the position of an actor standing on n.
func Stable(n graph.Node) Progress {
	return Progress{origin: n, toward: n}
}

// InTransit returns the position of an actor travelling from origin toward
// a neighbor with the given steps still to go.
func InTransit(origin, toward graph.Node, remaining int) Progress {
	return Progress{origin: origin, toward: toward, remaining: remaining, inTransit: true}
}

// Node returns the node the actor stands on; ok is false in transit.
func (p Progress) Node() (n graph.Node, ok bool) {
	return p.origin, !p.inTransit
}

// IsStable reports whether the actor stands on a node.
func (p Progress) IsStable() bool { return !p.inTransit }

// Origin returns the last stable node.
func (p Progress) Origin() graph.Node { return p.origin }

// Toward returns the transit direction, or the stable node.
func (p Progress) Toward() graph.Node { return p.toward }

// Remaining returns the steps left toward Toward; zero when stable.
func (p Progress) Remaining() int { return p.remaining }

func (p Progress) String() string {
	if !p.inTransit {
		return fmt.Sprintf("Stable(%d)", p.origin)
	}
	return fmt.Sprintf("InTransit(%d->%d, %d)", p.origin, p.toward, p.remaining)
}

// Residuals returns the progress vector: for each node one step can be
// taken toward, the number of steps needed to reach it. Stable on n this is
// exactly AdjacencyRow(n). In transit the travelled direction holds its
// remaining steps, the origin holds the consumed steps and every other
// neighbor of the origin holds its full edge weight.
func (p Progress) Residuals(g *graph.Model) map[graph.Node]int {
	row := g.AdjacencyRow(p.origin)
	if !p.inTransit {
		return row
	}
	w, _ := g.Weight(p.origin, p.toward)
	row[p.toward] = p.remaining
	row[p.origin] = w - p.remaining
	return row
}

// Directions returns the keys of Residuals in ascending order.
func (p Progress) Directions(g *graph.Model) []graph.Node {
	res := p.Residuals(g)
	dirs := make([]graph.Node, 0, len(res))
	for n := range res {
		dirs = append(dirs, n)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i] < dirs[j] })
	return dirs
}

// Reach is a node reachable from a position and the steps it takes.
type Reach struct {
	Node  graph.Node
	Steps int
}

// Reachable lists the nodes a lookahead may measure from, ascending by
// node. Stable on n this is n itself at zero steps plus its neighbors;
// in transit it is every entry of the progress vector.
func (p Progress) Reachable(g *graph.Model) []Reach {
	res := p.Residuals(g)
	out := make([]Reach, 0, len(res)+1)
	if !p.inTransit {
		out = append(out, Reach{Node: p.origin, Steps: 0})
	}
	for n, steps := range res {
		out = append(out, Reach{Node: n, Steps: steps})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Node < out[j].Node })
	return out
}

// StepsTo returns the minimum number of steps from p to n, going through
// one of the reachable nodes.
func (p Progress) StepsTo(g *graph.Model, n graph.Node) int {
	best := -1
	for _, r := range p.Reachable(g) {
		d := r.Steps + g.ShortestDistance(r.Node, n)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// ComputeCandidate returns the position after one step from p toward
// target without committing anything.
func ComputeCandidate(g *graph.Model, p Progress, target graph.Node) (Progress, error) {
	if !p.inTransit {
		if target == p.origin {
			return p, nil
		}
		return departure(g, p, p.origin, target)
	}

	switch target {
	case p.toward:
		if p.remaining == 1 {
			return Stable(p.toward), nil
		}
		return InTransit(p.origin, p.toward, p.remaining-1), nil
	case p.origin:
		// Reversing gives back exactly one consumed step.
		w, _ := g.Weight(p.origin, p.toward)
		if p.remaining+1 >= w {
			return Stable(p.origin), nil
		}
		return InTransit(p.origin, p.toward, p.remaining+1), nil
	default:
		// Switching to another edge of the origin forfeits progress.
		return departure(g, p, p.origin, target)
	}
}

func departure(g *graph.Model, p Progress, from, target graph.Node) (Progress, error) {
	w, ok := g.Weight(from, target)
	if !ok {
		return p, planerr.InvalidDestination("motion.ComputeCandidate", int(target),
			fmt.Sprintf("not adjacent to %s", p))
	}
	if w == 1 {
		return Stable(target), nil
	}
	return InTransit(from, target, w-1), nil
}
