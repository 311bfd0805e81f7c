package policy

import (
	"github.com/dd0wney/tamp-planner/pkg/graph"
	"github.com/dd0wney/tamp-planner/pkg/instruction"
)

// fcfs serves the oldest eligible instruction first.
type fcfs struct{}

func (*fcfs) Kind() Kind { return FirstComeFirstServe }

func (*fcfs) DecideNextNode(s State) (graph.Node, error) {
	if n, ok := serveLocally(s); ok {
		return n, nil
	}
	oldest, ok := minID(s.Ledger.Eligible())
	if !ok {
		return hold(s), nil
	}
	return routeToward(s, oldest.Destination), nil
}

func (*fcfs) SelectForExecution(ready []instruction.Instruction) (instruction.Instruction, bool) {
	return minID(ready)
}
