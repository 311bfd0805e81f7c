// Package policy holds the scheduling strategies that decide where the
// actor moves next and which ready instruction it executes.
package policy

import (
	"fmt"
	"strings"

	"github.com/dd0wney/tamp-planner/pkg/graph"
	"github.com/dd0wney/tamp-planner/pkg/instruction"
	"github.com/dd0wney/tamp-planner/pkg/motion"
)

// Kind names a scheduling strategy in configuration.
type Kind string

const (
	FirstComeFirstServe Kind = "fcfs"
	PriorityFirst       Kind = "priority"
	ValueIteration      Kind = "value_iteration"
)

// Kinds lists every strategy in a stable order.
func Kinds() []Kind {
	return []Kind{FirstComeFirstServe, PriorityFirst, ValueIteration}
}

// ParseKind accepts a kind name, case-insensitively, plus the aliases
// "pf" and "dp".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fcfs":
		return FirstComeFirstServe, nil
	case "priority", "pf":
		return PriorityFirst, nil
	case "value_iteration", "dp":
		return ValueIteration, nil
	default:
		return "", fmt.Errorf("unknown policy %q (want one of %v)", s, Kinds())
	}
}

// State is the read-only planner state a policy decides on.
type State struct {
	Graph    *graph.Model
	Progress motion.Progress
	Ledger   instruction.View
}

// Policy decides the next node and the execution order of ready work.
type Policy interface {
	Kind() Kind
	// DecideNextNode returns the node to move toward. When the actor
	// stands on a node with ready work it returns that node.
	DecideNextNode(s State) (graph.Node, error)
	// SelectForExecution picks one of ready; ok is false when ready is
	// empty.
	SelectForExecution(ready []instruction.Instruction) (in instruction.Instruction, ok bool)
}

// New returns a fresh policy of the given kind.
func New(kind Kind) (Policy, error) {
	switch kind {
	case FirstComeFirstServe:
		return &fcfs{}, nil
	case PriorityFirst:
		return &priority{}, nil
	case ValueIteration:
		return &valueIteration{}, nil
	default:
		return nil, fmt.Errorf("unknown policy %q", kind)
	}
}

// serveLocally reports the current node when work is ready there.
func serveLocally(s State) (graph.Node, bool) {
	n, stable := s.Progress.Node()
	if !stable {
		return 0, false
	}
	return n, len(s.Ledger.ReadyForExecution(n)) > 0
}

// hold is the decision when there is nowhere worth going: stay on the
// current node, or keep the current heading while in transit.
func hold(s State) graph.Node {
	return s.Progress.Toward()
}

// routeToward returns the direction of the first step on a shortest route
// from the current position to dest.
func routeToward(s State, dest graph.Node) graph.Node {
	if n, stable := s.Progress.Node(); stable {
		return s.Graph.NextHop(n, dest)
	}

	// Ties go to the smallest node id.
	want := s.Progress.StepsTo(s.Graph, dest)
	for _, r := range s.Progress.Reachable(s.Graph) {
		if r.Steps+s.Graph.ShortestDistance(r.Node, dest) == want {
			return r.Node
		}
	}
	return s.Progress.Toward()
}

// minID returns the instruction with the smallest id.
func minID(ins []instruction.Instruction) (instruction.Instruction, bool) {
	if len(ins) == 0 {
		return instruction.Instruction{}, false
	}
	best := ins[0]
	for _, in := range ins[1:] {
		if in.ID < best.ID {
			best = in
		}
	}
	return best, true
}

// maxReward returns the instruction with the largest reward, ties going to
// the smallest id.
func maxReward(ins []instruction.Instruction) (instruction.Instruction, bool) {
	if len(ins) == 0 {
		return instruction.Instruction{}, false
	}
	best := ins[0]
	for _, in := range ins[1:] {
		if in.Reward > best.Reward || (in.Reward == best.Reward && in.ID < best.ID) {
			best = in
		}
	}
	return best, true
}
