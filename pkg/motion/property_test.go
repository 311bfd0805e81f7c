package motion

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/tamp-planner/pkg/graph"
)

// fan builds hub 0 with two spokes of the given weights.
func fan(w1, w2 int) (*graph.Model, error) {
	return graph.New(
		[]graph.NodeSpec{{ID: 0}, {ID: 1}, {ID: 2}},
		[]graph.Edge{{From: 0, To: 1, Weight: w1}, {From: 0, To: 2, Weight: w2}},
	)
}

func TestTrackerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("w advances toward a neighbor of weight w arrive there", prop.ForAll(
		func(w1, w2 int) bool {
			g, err := fan(w1, w2)
			if err != nil {
				return false
			}
			tr, _ := NewTracker(g, 0)
			for i := 0; i < w1; i++ {
				p, err := tr.Advance(1)
				if err != nil {
					return false
				}
				if i < w1-1 && p.IsStable() {
					return false
				}
			}
			p := tr.Progress()
			return p == Stable(1) && reflect.DeepEqual(p.Residuals(g), g.AdjacencyRow(1))
		},
		gen.IntRange(1, 12),
		gen.IntRange(1, 12),
	))

	properties.Property("switching direction resets the abandoned edge to full weight", prop.ForAll(
		func(w1, w2 int) bool {
			g, err := fan(w1, w2)
			if err != nil {
				return false
			}
			tr, _ := NewTracker(g, 0)
			if _, err := tr.Advance(1); err != nil {
				return false
			}
			if w1 == 1 {
				// Already arrived; nothing in transit to forfeit.
				return tr.Progress() == Stable(1)
			}
			p, err := tr.Advance(2)
			if err != nil {
				return false
			}
			return p.Residuals(g)[1] == w1
		},
		gen.IntRange(1, 12),
		gen.IntRange(1, 12),
	))

	properties.Property("reversing k steps returns to the origin", prop.ForAll(
		func(w, k int) bool {
			g, err := fan(w, 1)
			if err != nil {
				return false
			}
			if k >= w {
				k = w - 1
			}
			tr, _ := NewTracker(g, 0)
			for i := 0; i < k; i++ {
				if _, err := tr.Advance(1); err != nil {
					return false
				}
			}
			if k > 0 && tr.Progress().Residuals(g)[0] != k {
				return false
			}
			for i := 0; i < k; i++ {
				if _, err := tr.Advance(0); err != nil {
					return false
				}
			}
			return tr.Progress() == Stable(0)
		},
		gen.IntRange(2, 12),
		gen.IntRange(0, 11),
	))

	properties.TestingRun(t)
}
