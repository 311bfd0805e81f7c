// Package evaluation keeps the record of a planning session: the order in
// which instructions were executed and the discounted reward collected.
package evaluation

import (
	"math"
	"sync"
	"time"

	"github.com/dd0wney/tamp-planner/pkg/instruction"
)

// Point is one sample of the reward trace.
type Point struct {
	ID          instruction.ID `json:"id"`
	Steps       float64        `json:"steps"`
	Reward      float64        `json:"reward"`
	Accumulated float64        `json:"accumulated"`
}

// Recorder accumulates r * b^(elapsed/step) for every executed
// instruction, where elapsed is measured from the session epoch and step
// is the tick period.
type Recorder struct {
	mu          sync.RWMutex
	epoch       time.Time
	step        time.Duration
	sequence    []instruction.ID
	trace       []Point
	accumulated float64
}

// NewRecorder starts a session at epoch; step must be positive.
func NewRecorder(epoch time.Time, step time.Duration) *Recorder {
	if step <= 0 {
		step = time.Second
	}
	return &Recorder{epoch: epoch, step: step}
}

// Record adds an execution completed at the given time and returns the
// discounted reward it earned.
func (r *Recorder) Record(in instruction.Instruction, at time.Time) float64 {
	steps := float64(at.Sub(r.epoch)) / float64(r.step)
	if steps < 0 {
		steps = 0
	}
	earned := in.Reward * math.Pow(in.Beta, steps)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.accumulated += earned
	r.sequence = append(r.sequence, in.ID)
	r.trace = append(r.trace, Point{
		ID:          in.ID,
		Steps:       steps,
		Reward:      earned,
		Accumulated: r.accumulated,
	})
	return earned
}

// Accumulated returns the total discounted reward so far.
func (r *Recorder) Accumulated() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.accumulated
}

// Count returns the number of executions recorded.
func (r *Recorder) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sequence)
}

// Sequence returns executed ids in execution order.
func (r *Recorder) Sequence() []instruction.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]instruction.ID(nil), r.sequence...)
}

// Trace returns the reward trace in execution order.
func (r *Recorder) Trace() []Point {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Point(nil), r.trace...)
}
