package graph

import (
	"reflect"
	"testing"

	"github.com/dd0wney/tamp-planner/pkg/planerr"
)

func specs(ids ...Node) []NodeSpec {
	out := make([]NodeSpec, len(ids))
	for i, id := range ids {
		out[i] = NodeSpec{ID: id}
	}
	return out
}

// triangle is nodes 0,1,2 with unit edges
func triangle(t *testing.T) *Model {
	t.Helper()
	m, err := New(specs(0, 1, 2), []Edge{{0, 1, 1}, {1, 2, 1}, {0, 2, 1}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m
}

func TestNew_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		nodes []NodeSpec
		edges []Edge
	}{
		{"no nodes", nil, nil},
		{"duplicate node", specs(0, 0), nil},
		{"unknown endpoint", specs(0, 1), []Edge{{0, 5, 1}}},
		{"self loop", specs(0, 1), []Edge{{0, 0, 1}, {0, 1, 1}}},
		{"zero weight", specs(0, 1), []Edge{{0, 1, 0}}},
		{"negative weight", specs(0, 1), []Edge{{0, 1, -2}}},
		{"duplicate edge", specs(0, 1), []Edge{{0, 1, 1}, {1, 0, 2}}},
		{"disconnected", specs(0, 1, 2, 3), []Edge{{0, 1, 1}, {2, 3, 1}}},
		{"isolated node", specs(0, 1, 2), []Edge{{0, 1, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.nodes, tt.edges)
			if err == nil {
				t.Fatal("expected a configuration error")
			}
			if !planerr.IsConfiguration(err) {
				t.Errorf("error %v is not a configuration error", err)
			}
		})
	}
}

func TestNew_SingleNode(t *testing.T) {
	m, err := New(specs(4), nil)
	if err != nil {
		t.Fatalf("single node graph should be valid: %v", err)
	}
	if m.ShortestDistance(4, 4) != 0 {
		t.Error("distance to self must be 0")
	}
	if len(m.Neighbors(4)) != 0 {
		t.Error("single node has no neighbors")
	}
}

func TestAdjacencyRow(t *testing.T) {
	m, err := New(specs(0, 1, 2), []Edge{{0, 1, 2}, {1, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}

	row := m.AdjacencyRow(1)
	want := map[Node]int{0: 2, 2: 3}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("AdjacencyRow(1) = %v, want %v", row, want)
	}

	row[0] = 99
	if w, _ := m.Weight(1, 0); w != 2 {
		t.Error("AdjacencyRow must return a copy")
	}
}

func TestNeighborsSorted(t *testing.T) {
	m, err := New(specs(0, 1, 2, 3), []Edge{{0, 3, 1}, {0, 1, 1}, {0, 2, 1}})
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Neighbors(0); !reflect.DeepEqual(got, []Node{1, 2, 3}) {
		t.Errorf("Neighbors(0) = %v, want [1 2 3]", got)
	}
}

func TestShortestDistance_Weighted(t *testing.T) {
	// 0 -5- 1, 0 -1- 2 -1- 1
	m, err := New(specs(0, 1, 2), []Edge{{0, 1, 5}, {0, 2, 1}, {2, 1, 1}})
	if err != nil {
		t.Fatal(err)
	}

	if d := m.ShortestDistance(0, 1); d != 2 {
		t.Errorf("ShortestDistance(0,1) = %d, want 2", d)
	}
	if hop := m.NextHop(0, 1); hop != 2 {
		t.Errorf("NextHop(0,1) = %d, want 2 (detour is shorter)", hop)
	}
	if path := m.ShortestPath(0, 1); !reflect.DeepEqual(path, []Node{0, 2, 1}) {
		t.Errorf("ShortestPath(0,1) = %v", path)
	}
}

func TestNextHop_SameNode(t *testing.T) {
	m := triangle(t)
	if m.NextHop(1, 1) != 1 {
		t.Error("NextHop(a,a) must be a")
	}
	if path := m.ShortestPath(2, 2); !reflect.DeepEqual(path, []Node{2}) {
		t.Errorf("ShortestPath(2,2) = %v", path)
	}
}

func TestNextHop_TieBreakSmallestFirstHop(t *testing.T) {
	// Two equal paths 0-2-3 and 0-1-3: first hop 1 wins.
	m, err := New(specs(0, 1, 2, 3), []Edge{{0, 2, 1}, {2, 3, 1}, {0, 1, 1}, {1, 3, 1}})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if hop := m.NextHop(0, 3); hop != 1 {
			t.Fatalf("NextHop(0,3) = %d, want 1", hop)
		}
	}
}

func TestName(t *testing.T) {
	m, err := New([]NodeSpec{{ID: 0, Name: "office"}, {ID: 1}}, []Edge{{0, 1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	if m.Name(0) != "office" {
		t.Errorf("Name(0) = %q", m.Name(0))
	}
	if m.Name(1) != "1" {
		t.Errorf("unnamed node should render as its number, got %q", m.Name(1))
	}
	if !m.Has(1) || m.Has(7) {
		t.Error("Has reports wrong membership")
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d", m.Len())
	}
}

func TestShortestDistance_UnknownNodePanics(t *testing.T) {
	m := triangle(t)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown node")
		}
	}()
	m.ShortestDistance(0, 42)
}
