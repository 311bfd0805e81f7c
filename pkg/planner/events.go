package planner

import (
	"github.com/dd0wney/tamp-planner/pkg/graph"
	"github.com/dd0wney/tamp-planner/pkg/instruction"
	"github.com/dd0wney/tamp-planner/pkg/motion"
)

// Snapshot is the full ledger, published after every mutation.
type Snapshot struct {
	Tick         uint64                    `json:"tick"`
	Reason       string                    `json:"reason"`
	Instructions []instruction.Instruction `json:"instructions"`
}

// PositionUpdate is published once per tick.
type PositionUpdate struct {
	Tick     uint64          `json:"tick"`
	Next     graph.Node      `json:"next"`
	Position motion.Position `json:"position"`
}
