package motion

import (
	"fmt"

	"github.com/dd0wney/tamp-planner/pkg/graph"
)

// Position is the state published for visualization.
type Position struct {
	Stable bool       `json:"stable"`
	Node   graph.Node `json:"node"`
	// From, To and StepsRemaining describe the edge in transit; when
	// stable From and To equal Node and StepsRemaining is zero.
	From           graph.Node `json:"from"`
	To             graph.Node `json:"to"`
	StepsRemaining int        `json:"steps_remaining"`
	// Label is the compact viz form: "2" on a node, "03_1" on edge 0-3 one
	// step from node 0.
	Label string `json:"label"`
}

// Position converts p for publishing.
func (p Progress) Position(g *graph.Model) Position {
	if !p.inTransit {
		return Position{
			Stable: true,
			Node:   p.origin,
			From:   p.origin,
			To:     p.origin,
			Label:  fmt.Sprintf("%d", p.origin),
		}
	}

	lo, hi := p.origin, p.toward
	if lo > hi {
		lo, hi = hi, lo
	}
	res := p.Residuals(g)
	return Position{
		Node:           p.origin,
		From:           p.origin,
		To:             p.toward,
		StepsRemaining: p.remaining,
		Label:          fmt.Sprintf("%d%d_%d", lo, hi, res[lo]),
	}
}
