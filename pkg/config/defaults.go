package config

import "github.com/dd0wney/tamp-planner/pkg/graph"

// Locations of the built-in care home map.
const (
	Office     graph.Node = 0
	Bedroom    graph.Node = 1
	Charge     graph.Node = 2
	Alley1     graph.Node = 3
	Alley2     graph.Node = 4
	LivingRoom graph.Node = 5
	DiningRoom graph.Node = 6
	Greet      graph.Node = 7
	Emergency  graph.Node = 8
)

// DefaultGraph returns the care home map. Two corridors (alley1, alley2)
// join the rooms; weights are steps of one tick each.
func DefaultGraph() GraphConfig {
	return GraphConfig{
		Nodes: []NodeConfig{
			{ID: int(Office), Name: "office"},
			{ID: int(Bedroom), Name: "bedroom"},
			{ID: int(Charge), Name: "charge"},
			{ID: int(Alley1), Name: "alley1"},
			{ID: int(Alley2), Name: "alley2"},
			{ID: int(LivingRoom), Name: "livingroom"},
			{ID: int(DiningRoom), Name: "diningroom"},
			{ID: int(Greet), Name: "greet"},
			{ID: int(Emergency), Name: "emergency"},
		},
		Edges: []EdgeConfig{
			{From: int(Office), To: int(Alley1), Weight: 2},
			{From: int(Charge), To: int(Alley1), Weight: 1},
			{From: int(Greet), To: int(Alley1), Weight: 2},
			{From: int(Alley1), To: int(Alley2), Weight: 3},
			{From: int(Bedroom), To: int(Alley2), Weight: 2},
			{From: int(LivingRoom), To: int(Alley2), Weight: 2},
			{From: int(DiningRoom), To: int(LivingRoom), Weight: 2},
			{From: int(Emergency), To: int(LivingRoom), Weight: 3},
			{From: int(Emergency), To: int(Greet), Weight: 1},
		},
	}
}
