package planner

import (
	"context"
	"time"

	"github.com/dd0wney/tamp-planner/pkg/graph"
	"github.com/dd0wney/tamp-planner/pkg/instruction"
)

// ExecutionRequest asks the actuator to carry out an instruction at the
// node the actor stands on.
type ExecutionRequest struct {
	RequestID   string                  `json:"request_id"`
	Tick        uint64                  `json:"tick"`
	Node        graph.Node              `json:"node"`
	Instruction instruction.Instruction `json:"instruction"`
	IssuedAt    time.Time               `json:"issued_at"`
}

// Actuator performs instructions. Execute blocks until the action is done;
// the loop never cancels an execution once it has started.
type Actuator interface {
	Execute(ctx context.Context, req ExecutionRequest) error
}

// ActuatorFunc adapts a function to Actuator.
type ActuatorFunc func(ctx context.Context, req ExecutionRequest) error

// Execute calls f.
func (f ActuatorFunc) Execute(ctx context.Context, req ExecutionRequest) error {
	return f(ctx, req)
}

// SleepActuator simulates execution by waiting the instruction's duration.
type SleepActuator struct {
	sleep func(time.Duration)
}

// NewSleepActuator returns an actuator backed by time.Sleep.
func NewSleepActuator() *SleepActuator {
	return &SleepActuator{sleep: time.Sleep}
}

// Execute waits the full duration regardless of ctx.
func (a *SleepActuator) Execute(_ context.Context, req ExecutionRequest) error {
	if d := req.Instruction.ExecutionTime(); d > 0 {
		a.sleep(d)
	}
	return nil
}
