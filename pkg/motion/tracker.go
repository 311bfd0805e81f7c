package motion

import (
	"fmt"
	"sync"

	"github.com/dd0wney/tamp-planner/pkg/graph"
	"github.com/dd0wney/tamp-planner/pkg/planerr"
)

// Tracker holds the committed position of the single actor.
type Tracker struct {
	g  *graph.Model
	mu sync.RWMutex
	p  Progress
}

// NewTracker places the actor on start.
func NewTracker(g *graph.Model, start graph.Node) (*Tracker, error) {
	if !g.Has(start) {
		return nil, planerr.New("motion.NewTracker").Node(int(start)).
			Context("initial node not in graph").Cause(planerr.ErrConfiguration).Err()
	}
	return &Tracker{g: g, p: Stable(start)}, nil
}

// Progress returns the committed position.
func (t *Tracker) Progress() Progress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.p
}

// Advance commits one step toward target and returns the new position. A
// target that cannot be stepped toward leaves the position unchanged and
// returns an invalid destination error.
func (t *Tracker) Advance(target graph.Node) (Progress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, err := ComputeCandidate(t.g, t.p, target)
	if err != nil {
		return t.p, fmt.Errorf("advance toward %d: %w", target, err)
	}
	t.p = next
	return next, nil
}

// Position returns the visualization record of the committed position.
func (t *Tracker) Position() Position {
	return t.Progress().Position(t.g)
}
