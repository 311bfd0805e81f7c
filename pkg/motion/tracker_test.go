package motion

import (
	"reflect"
	"testing"

	"github.com/dd0wney/tamp-planner/pkg/graph"
	"github.com/dd0wney/tamp-planner/pkg/planerr"
)

// star has hub 0 with spokes 1 (w=3), 2 (w=2), 3 (w=1); 1-2 (w=1).
func star(t *testing.T) *graph.Model {
	t.Helper()
	m, err := graph.New(
		[]graph.NodeSpec{{ID: 0}, {ID: 1}, {ID: 2}, {ID: 3}},
		[]graph.Edge{{From: 0, To: 1, Weight: 3}, {From: 0, To: 2, Weight: 2}, {From: 0, To: 3, Weight: 1}, {From: 1, To: 2, Weight: 1}},
	)
	if err != nil {
		t.Fatalf("graph.New failed: %v", err)
	}
	return m
}

func newTracker(t *testing.T, g *graph.Model, start graph.Node) *Tracker {
	t.Helper()
	tr, err := NewTracker(g, start)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}
	return tr
}

func mustAdvance(t *testing.T, tr *Tracker, target graph.Node) Progress {
	t.Helper()
	p, err := tr.Advance(target)
	if err != nil {
		t.Fatalf("Advance(%d) failed: %v", target, err)
	}
	return p
}

func TestNewTracker_UnknownStart(t *testing.T) {
	_, err := NewTracker(star(t), 9)
	if !planerr.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestAdvance_ArrivesAfterWeightSteps(t *testing.T) {
	g := star(t)
	tr := newTracker(t, g, 0)

	for i := 1; i < 3; i++ {
		p := mustAdvance(t, tr, 1)
		if p.IsStable() {
			t.Fatalf("arrived too early after %d steps", i)
		}
		if p.Remaining() != 3-i {
			t.Errorf("Remaining() = %d, want %d", p.Remaining(), 3-i)
		}
	}

	p := mustAdvance(t, tr, 1)
	n, ok := p.Node()
	if !ok || n != 1 {
		t.Fatalf("expected Stable(1), got %s", p)
	}
	if !reflect.DeepEqual(p.Residuals(g), g.AdjacencyRow(1)) {
		t.Errorf("Residuals = %v, want AdjacencyRow(1) = %v", p.Residuals(g), g.AdjacencyRow(1))
	}
}

func TestAdvance_TowardSelfIsNoop(t *testing.T) {
	tr := newTracker(t, star(t), 2)
	p := mustAdvance(t, tr, 2)
	if p != Stable(2) {
		t.Errorf("Advance toward current node changed position to %s", p)
	}
}

func TestAdvance_NonAdjacentFails(t *testing.T) {
	tr := newTracker(t, star(t), 3)

	p, err := tr.Advance(1)
	if !planerr.IsInvalidDestination(err) {
		t.Fatalf("expected invalid destination, got %v", err)
	}
	if p != Stable(3) || tr.Progress() != Stable(3) {
		t.Error("failed advance must not move the actor")
	}
}

func TestAdvance_NonAdjacentInTransitFails(t *testing.T) {
	g := star(t)
	tr := newTracker(t, g, 2)
	mustAdvance(t, tr, 0) // InTransit(2->0, 1)

	if _, err := tr.Advance(3); !planerr.IsInvalidDestination(err) {
		t.Errorf("3 is not adjacent to origin 2, got %v", err)
	}
}

func TestResiduals_InTransit(t *testing.T) {
	g := star(t)
	tr := newTracker(t, g, 0)
	p := mustAdvance(t, tr, 1)

	want := map[graph.Node]int{1: 2, 0: 1, 2: 2, 3: 1}
	if got := p.Residuals(g); !reflect.DeepEqual(got, want) {
		t.Errorf("Residuals = %v, want %v", got, want)
	}
}

func TestAdvance_DirectionChangeForfeits(t *testing.T) {
	g := star(t)
	tr := newTracker(t, g, 0)
	mustAdvance(t, tr, 1)      // 2 steps left toward 1
	p := mustAdvance(t, tr, 2) // switch to 2: one step of w=2 taken

	if p != InTransit(0, 2, 1) {
		t.Fatalf("got %s, want InTransit(0->2, 1)", p)
	}
	if res := p.Residuals(g); res[1] != 3 {
		t.Errorf("forfeited direction should hold full weight 3, got %d", res[1])
	}
}

func TestAdvance_ReversalRestoresConsumedEdge(t *testing.T) {
	g := star(t)
	tr := newTracker(t, g, 0)
	mustAdvance(t, tr, 1)
	mustAdvance(t, tr, 1) // one step left toward 1, two consumed

	p := mustAdvance(t, tr, 0)
	if p != InTransit(0, 1, 2) {
		t.Fatalf("got %s, want InTransit(0->1, 2)", p)
	}
	if res := p.Residuals(g); res[0] != 1 || res[1] != 2 {
		t.Errorf("Residuals after one reverse step = %v", res)
	}

	p = mustAdvance(t, tr, 0)
	if p != Stable(0) {
		t.Fatalf("got %s, want Stable(0)", p)
	}
	if !reflect.DeepEqual(p.Residuals(g), g.AdjacencyRow(0)) {
		t.Error("back on origin the progress vector is its adjacency row")
	}
}

func TestComputeCandidateIsPure(t *testing.T) {
	g := star(t)
	tr := newTracker(t, g, 0)
	before := tr.Progress()

	cand, err := ComputeCandidate(g, before, 2)
	if err != nil {
		t.Fatal(err)
	}
	if cand != InTransit(0, 2, 1) {
		t.Errorf("candidate = %s", cand)
	}
	if tr.Progress() != before {
		t.Error("ComputeCandidate must not move the tracker")
	}
}

func TestReachable(t *testing.T) {
	g := star(t)

	got := Stable(2).Reachable(g)
	want := []Reach{{0, 2}, {1, 1}, {2, 0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Reachable(Stable(2)) = %v, want %v", got, want)
	}

	got = InTransit(0, 1, 2).Reachable(g)
	want = []Reach{{0, 1}, {1, 2}, {2, 2}, {3, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Reachable(InTransit) = %v, want %v", got, want)
	}
}

func TestStepsTo(t *testing.T) {
	g := star(t)
	if d := Stable(3).StepsTo(g, 1); d != 4 {
		t.Errorf("StepsTo(1) from 3 = %d, want 4", d)
	}
	if d := InTransit(0, 1, 1).StepsTo(g, 1); d != 1 {
		t.Errorf("StepsTo(1) one step out = %d, want 1", d)
	}
}

func TestPosition(t *testing.T) {
	g := star(t)

	pos := Stable(2).Position(g)
	if !pos.Stable || pos.Node != 2 || pos.Label != "2" {
		t.Errorf("stable position = %+v", pos)
	}

	// Two steps out of three from 1 toward 0: one step left to 0.
	pos = InTransit(1, 0, 1).Position(g)
	if pos.Stable || pos.From != 1 || pos.To != 0 || pos.StepsRemaining != 1 {
		t.Errorf("transit position = %+v", pos)
	}
	if pos.Label != "01_1" {
		t.Errorf("Label = %q, want 01_1", pos.Label)
	}
}
