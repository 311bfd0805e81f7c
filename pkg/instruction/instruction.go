// Package instruction defines service requests and the ledger of pending
// ones.
package instruction

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/tamp-planner/pkg/graph"
)

// ID identifies an instruction. Producers assign ids in arrival order.
type ID uint64

// Instruction is a pending task: go to Destination and spend Duration
// there, earning Reward discounted by Beta per time step of delay.
type Instruction struct {
	ID          ID         `json:"id" yaml:"id"`
	Destination graph.Node `json:"destination" yaml:"destination"`
	Reward      float64    `json:"r" yaml:"r" validate:"gt=0"`
	Beta        float64    `json:"b" yaml:"b" validate:"gt=0,lt=1"`
	// Duration is the execution time in seconds.
	Duration float64 `json:"duration" yaml:"duration" validate:"gte=0"`
	// PrevID gates this instruction on the execution of another one.
	PrevID *ID `json:"prev_id,omitempty" yaml:"prev_id,omitempty"`

	// Opaque payload, carried through but never interpreted by scheduling.
	Function int    `json:"function" yaml:"function"`
	Type     int    `json:"type" yaml:"type"`
	Status   int    `json:"status" yaml:"status"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty"`
	Target   string `json:"target,omitempty" yaml:"target,omitempty"`

	StartTime time.Time `json:"start_time" yaml:"start_time"`
}

// DependsOn returns the id this instruction waits for, if any.
func (in Instruction) DependsOn() (ID, bool) {
	if in.PrevID == nil {
		return 0, false
	}
	return *in.PrevID, true
}

// ExecutionTime returns Duration as a time.Duration.
func (in Instruction) ExecutionTime() time.Duration {
	return time.Duration(in.Duration * float64(time.Second))
}

// After returns a copy of in gated on prev.
func (in Instruction) After(prev ID) Instruction {
	p := prev
	in.PrevID = &p
	return in
}

var validate = validator.New()

// Validate checks the numeric constraints of an instruction. Whether the
// destination exists depends on the graph and is checked by the planner.
func Validate(in Instruction) error {
	if err := validate.Struct(in); err != nil {
		return formatValidationError(in.ID, err)
	}
	if prev, ok := in.DependsOn(); ok && prev == in.ID {
		return fmt.Errorf("instruction %d: prev_id must not reference itself", in.ID)
	}
	return nil
}

func formatValidationError(id ID, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("instruction %d: %w", id, err)
	}

	e := verrs[0]
	switch e.Tag() {
	case "gt":
		return fmt.Errorf("instruction %d: %s must be greater than %s", id, e.Field(), e.Param())
	case "lt":
		return fmt.Errorf("instruction %d: %s must be less than %s", id, e.Field(), e.Param())
	case "gte":
		return fmt.Errorf("instruction %d: %s must be at least %s", id, e.Field(), e.Param())
	default:
		return fmt.Errorf("instruction %d: %s failed %s validation", id, e.Field(), e.Tag())
	}
}
