package instruction

import (
	"sort"
	"sync"

	"github.com/dd0wney/tamp-planner/pkg/graph"
	"github.com/dd0wney/tamp-planner/pkg/planerr"
)

// View is the read-only face of a Ledger handed to scheduling policies.
// Every method returns fresh slices ordered by ascending id.
type View interface {
	Len() int
	Contains(id ID) bool
	Get(id ID) (Instruction, bool)
	PendingAt(node graph.Node) []ID
	ReadyForExecution(node graph.Node) []Instruction
	Eligible() []Instruction
	Snapshot() []Instruction
}

// Ledger is the registry of pending instructions. All methods are safe
// for concurrent use; each is a short critical section.
type Ledger struct {
	mu     sync.RWMutex
	items  map[ID]Instruction
	byDest map[graph.Node]map[ID]struct{}
}

var _ View = (*Ledger)(nil)

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		items:  make(map[ID]Instruction),
		byDest: make(map[graph.Node]map[ID]struct{}),
	}
}

// Add inserts in, overwriting any instruction with the same id. It reports
// whether an existing entry was replaced.
func (l *Ledger) Add(in Instruction) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	old, replaced := l.items[in.ID]
	if replaced && old.Destination != in.Destination {
		l.unindex(old)
	}
	l.items[in.ID] = in

	set := l.byDest[in.Destination]
	if set == nil {
		set = make(map[ID]struct{})
		l.byDest[in.Destination] = set
	}
	set[in.ID] = struct{}{}
	return replaced
}

// Remove deletes id and returns the removed instruction.
func (l *Ledger) Remove(id ID) (Instruction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	in, ok := l.items[id]
	if !ok {
		return Instruction{}, planerr.NotFound("Ledger.Remove", uint64(id))
	}
	delete(l.items, id)
	l.unindex(in)
	return in, nil
}

func (l *Ledger) unindex(in Instruction) {
	set := l.byDest[in.Destination]
	delete(set, in.ID)
	if len(set) == 0 {
		delete(l.byDest, in.Destination)
	}
}

// Len returns the number of pending instructions.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Contains reports whether id is pending.
func (l *Ledger) Contains(id ID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.items[id]
	return ok
}

// Get returns the pending instruction with the given id.
func (l *Ledger) Get(id ID) (Instruction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	in, ok := l.items[id]
	return in, ok
}

// PendingAt returns the ids of instructions destined for node.
func (l *Ledger) PendingAt(node graph.Node) []ID {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]ID, 0, len(l.byDest[node]))
	for id := range l.byDest[node] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ReadyForExecution returns the instructions at node whose dependency, if
// any, has already been executed and removed.
func (l *Ledger) ReadyForExecution(node graph.Node) []Instruction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Instruction, 0, len(l.byDest[node]))
	for id := range l.byDest[node] {
		in := l.items[id]
		if l.gatedLocked(in) {
			continue
		}
		out = append(out, in)
	}
	sortByID(out)
	return out
}

// Eligible returns every pending instruction whose dependency is satisfied,
// regardless of destination.
func (l *Ledger) Eligible() []Instruction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Instruction, 0, len(l.items))
	for _, in := range l.items {
		if !l.gatedLocked(in) {
			out = append(out, in)
		}
	}
	sortByID(out)
	return out
}

// Snapshot returns all pending instructions.
func (l *Ledger) Snapshot() []Instruction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Instruction, 0, len(l.items))
	for _, in := range l.items {
		out = append(out, in)
	}
	sortByID(out)
	return out
}

func (l *Ledger) gatedLocked(in Instruction) bool {
	prev, ok := in.DependsOn()
	if !ok {
		return false
	}
	_, pending := l.items[prev]
	return pending
}

func sortByID(ins []Instruction) {
	sort.Slice(ins, func(i, j int) bool { return ins[i].ID < ins[j].ID })
}
