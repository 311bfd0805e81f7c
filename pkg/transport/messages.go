package transport

import "github.com/dd0wney/tamp-planner/pkg/instruction"

// Batch is one message on the instruction feed.
type Batch struct {
	Instructions []instruction.Instruction `json:"instructions"`
	// Withdraw lists ids to drop from the ledger before they run.
	Withdraw []instruction.ID `json:"withdraw,omitempty"`
}

// Result is the actuator's reply to an execution request.
type Result struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error,omitempty"`
}
