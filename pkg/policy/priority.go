package policy

import (
	"sync"

	"github.com/dd0wney/tamp-planner/pkg/graph"
	"github.com/dd0wney/tamp-planner/pkg/instruction"
)

// priority heads for the highest-reward eligible instruction.
type priority struct {
	mu       sync.Mutex
	selected *instruction.ID
}

func (*priority) Kind() Kind { return PriorityFirst }

func (p *priority) DecideNextNode(s State) (graph.Node, error) {
	if n, ok := serveLocally(s); ok {
		return n, nil
	}
	best, ok := maxReward(s.Ledger.Eligible())
	if !ok {
		p.setSelected(nil)
		return hold(s), nil
	}
	id := best.ID
	p.setSelected(&id)
	return routeToward(s, best.Destination), nil
}

func (p *priority) SelectForExecution(ready []instruction.Instruction) (instruction.Instruction, bool) {
	in, ok := maxReward(ready)
	if ok {
		p.mu.Lock()
		if p.selected != nil && *p.selected == in.ID {
			p.selected = nil
		}
		p.mu.Unlock()
	}
	return in, ok
}

// Selected returns the instruction the last routing decision targeted.
func (p *priority) Selected() (instruction.ID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return 0, false
	}
	return *p.selected, true
}

func (p *priority) setSelected(id *instruction.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = id
}

// Targeted is implemented by policies that commit to one instruction when
// routing.
type Targeted interface {
	Selected() (instruction.ID, bool)
}

var _ Targeted = (*priority)(nil)
