// Package planner runs the periodic control loop: it merges arriving
// instructions, moves the actor one step per tick and hands ready work to
// the actuator.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/tamp-planner/pkg/evaluation"
	"github.com/dd0wney/tamp-planner/pkg/graph"
	"github.com/dd0wney/tamp-planner/pkg/instruction"
	"github.com/dd0wney/tamp-planner/pkg/logging"
	"github.com/dd0wney/tamp-planner/pkg/metrics"
	"github.com/dd0wney/tamp-planner/pkg/motion"
	"github.com/dd0wney/tamp-planner/pkg/planerr"
	"github.com/dd0wney/tamp-planner/pkg/policy"
	"github.com/dd0wney/tamp-planner/pkg/pubsub"
)

// ErrDone is returned by Run once MaxExecutions instructions have run.
var ErrDone = errors.New("planner: execution limit reached")

// Options configures a Loop. Graph, Policy and Actuator are required.
type Options struct {
	Graph      *graph.Model
	Policy     policy.Policy
	Actuator   Actuator
	Start      graph.Node
	TickPeriod time.Duration

	// Optional collaborators.
	Events   *pubsub.PubSub
	Metrics  *metrics.Registry
	Recorder *evaluation.Recorder
	Logger   logging.Logger

	// MaxExecutions stops Run after that many executions; 0 means never.
	MaxExecutions int

	now func() time.Time
}

type mutation struct {
	add      *instruction.Instruction
	withdraw instruction.ID
}

// Loop is the single planner actor. Step and Run must be driven from one
// goroutine; Submit, Withdraw and the read accessors are safe from any.
type Loop struct {
	opts    Options
	g       *graph.Model
	pol     policy.Policy
	tracker *motion.Tracker
	ledger  *instruction.Ledger
	log     logging.Logger

	inboxMu sync.Mutex
	inbox   []mutation

	next     atomic.Int64
	executed int

	ticks    atomic.Uint64
	lastTick atomic.Int64
	// executingSince is the start of the in-flight execution, 0 when none.
	executingSince atomic.Int64
	errMu          sync.Mutex
	err            error
}

// New builds a loop with the actor standing on opts.Start.
func New(opts Options) (*Loop, error) {
	switch {
	case opts.Graph == nil:
		return nil, planerr.New("planner.New").Context("graph is required").Cause(planerr.ErrConfiguration).Err()
	case opts.Policy == nil:
		return nil, planerr.New("planner.New").Context("policy is required").Cause(planerr.ErrConfiguration).Err()
	case opts.Actuator == nil:
		return nil, planerr.New("planner.New").Context("actuator is required").Cause(planerr.ErrConfiguration).Err()
	}
	if opts.TickPeriod <= 0 {
		opts.TickPeriod = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.now == nil {
		opts.now = time.Now
	}

	tracker, err := motion.NewTracker(opts.Graph, opts.Start)
	if err != nil {
		return nil, err
	}

	l := &Loop{
		opts:    opts,
		g:       opts.Graph,
		pol:     opts.Policy,
		tracker: tracker,
		ledger:  instruction.NewLedger(),
		log:     opts.Logger.With(logging.Component("planner"), logging.Policy(string(opts.Policy.Kind()))),
	}
	l.setNext(opts.Start)
	return l, nil
}

// Submit queues instructions for the next tick. Resubmitting an id
// replaces the pending instruction.
func (l *Loop) Submit(ins ...instruction.Instruction) {
	l.inboxMu.Lock()
	defer l.inboxMu.Unlock()
	for i := range ins {
		in := ins[i]
		l.inbox = append(l.inbox, mutation{add: &in})
	}
}

// Withdraw queues removal of a pending instruction for the next tick.
func (l *Loop) Withdraw(id instruction.ID) {
	l.inboxMu.Lock()
	defer l.inboxMu.Unlock()
	l.inbox = append(l.inbox, mutation{withdraw: id})
}

// Ledger returns a read-only view of the pending instructions.
func (l *Loop) Ledger() instruction.View { return l.ledger }

// Progress returns the actor's committed position.
func (l *Loop) Progress() motion.Progress { return l.tracker.Progress() }

// Next returns the node the actor is heading for.
func (l *Loop) Next() graph.Node { return graph.Node(l.next.Load()) }

func (l *Loop) setNext(n graph.Node) { l.next.Store(int64(n)) }

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() uint64 { return l.ticks.Load() }

// Health reports the last tick time, tick count and the error that
// stopped the loop, if any.
func (l *Loop) Health() (time.Time, uint64, error) {
	l.errMu.Lock()
	err := l.err
	l.errMu.Unlock()
	var last time.Time
	if ns := l.lastTick.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}
	return last, l.ticks.Load(), err
}

// Executing reports when the instruction currently handed to the actuator
// was issued. ok is false between executions.
func (l *Loop) Executing() (since time.Time, ok bool) {
	ns := l.executingSince.Load()
	if ns == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}

// Run ticks every TickPeriod until ctx is done, a fatal error occurs or
// the execution limit is reached. A cancelled context returns nil.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.opts.TickPeriod)
	defer ticker.Stop()

	l.log.Info("planner started",
		logging.Node(int(l.opts.Start)),
		logging.Duration("tick_period", l.opts.TickPeriod))

	for {
		select {
		case <-ctx.Done():
			l.log.Info("planner stopped", logging.Tick(l.ticks.Load()), logging.Count(l.ledger.Len()))
			return nil
		case <-ticker.C:
			if err := l.Step(ctx); err != nil {
				if errors.Is(err, ErrDone) {
					l.log.Info("execution limit reached", logging.Count(l.executed))
				}
				return err
			}
		}
	}
}

// Step runs one tick.
func (l *Loop) Step(ctx context.Context) error {
	start := l.opts.now()
	tick := l.ticks.Load() + 1
	log := l.log.With(logging.Tick(tick))

	l.drainInbox(log, tick)

	if err := l.act(ctx, log, tick); err != nil {
		return l.fail(log, err)
	}

	p := l.tracker.Progress()
	l.publish(pubsub.TopicPosition, PositionUpdate{Tick: tick, Next: l.Next(), Position: p.Position(l.g)})

	l.ticks.Store(tick)
	l.lastTick.Store(l.opts.now().UnixNano())
	if m := l.opts.Metrics; m != nil {
		m.RecordTick(l.opts.now().Sub(start), p.IsStable(), int(p.Origin()))
		if l.opts.Events != nil {
			m.SyncDropped(l.opts.Events.Dropped())
		}
	}

	if l.opts.MaxExecutions > 0 && l.executed >= l.opts.MaxExecutions {
		return ErrDone
	}
	return nil
}

func (l *Loop) act(ctx context.Context, log logging.Logger, tick uint64) error {
	next := l.Next()
	cur, stable := l.tracker.Progress().Node()
	if !stable || cur != next {
		p, err := l.tracker.Advance(next)
		if err != nil {
			return err
		}
		if l.opts.Metrics != nil {
			l.opts.Metrics.StepsTravelled.Inc()
		}
		log.Debug("moved", logging.NextNode(int(next)), logging.String("progress", p.String()))
		return nil
	}

	if ready := l.ledger.ReadyForExecution(cur); len(ready) > 0 {
		l.execute(ctx, log, tick, cur, ready)
		return nil
	}

	if l.ledger.Len() == 0 {
		l.idle()
		return nil
	}
	return l.decide(log, cur)
}

func (l *Loop) decide(log logging.Logger, cur graph.Node) error {
	start := l.opts.now()
	next, err := l.pol.DecideNextNode(policy.State{Graph: l.g, Progress: l.tracker.Progress(), Ledger: l.ledger})
	elapsed := l.opts.now().Sub(start)
	if err != nil {
		return fmt.Errorf("decide next node: %w", err)
	}

	outcome := "move"
	if next == cur {
		outcome = "idle"
		log.Info("no eligible instruction", logging.Node(int(cur)), logging.Count(l.ledger.Len()))
		l.idle()
	} else {
		fields := []logging.Field{logging.Node(int(cur)), logging.NextNode(int(next)), logging.Latency(elapsed)}
		if t, ok := l.pol.(policy.Targeted); ok {
			if id, ok := t.Selected(); ok {
				fields = append(fields, logging.InstructionID(uint64(id)))
			}
		}
		log.Info("routing", fields...)
	}
	l.setNext(next)
	if l.opts.Metrics != nil {
		l.opts.Metrics.RecordDecision(string(l.pol.Kind()), outcome, elapsed)
	}
	return nil
}

func (l *Loop) execute(ctx context.Context, log logging.Logger, tick uint64, cur graph.Node, ready []instruction.Instruction) {
	in, ok := l.pol.SelectForExecution(ready)
	if !ok {
		return
	}
	log = log.With(logging.InstructionID(uint64(in.ID)), logging.Node(int(cur)))

	req := ExecutionRequest{
		RequestID:   uuid.NewString(),
		Tick:        tick,
		Node:        cur,
		Instruction: in,
		IssuedAt:    l.opts.now(),
	}
	l.publish(pubsub.TopicExecution, req)

	timer := logging.StartTimer(log, "execution finished")
	log.Info("executing", logging.String("request_id", req.RequestID), logging.Float64("duration", in.Duration))
	l.executingSince.Store(req.IssuedAt.UnixNano())
	err := l.opts.Actuator.Execute(context.WithoutCancel(ctx), req)
	l.executingSince.Store(0)
	if err != nil {
		// The instruction stays pending and is retried next tick.
		log.Error("execution failed", logging.Error(err))
		if l.opts.Metrics != nil {
			l.opts.Metrics.RecordTransportError("actuator", "execute")
		}
		return
	}
	took := timer.Stop()

	if _, err := l.ledger.Remove(in.ID); err != nil {
		if planerr.IsNotFound(err) {
			log.Warn("executed instruction already gone", logging.Error(err))
			if l.opts.Metrics != nil {
				l.opts.Metrics.RemoveNotFoundTotal.Inc()
			}
			return
		}
		log.Error("remove failed", logging.Error(err))
		return
	}
	log.Info("removed", logging.Reason("executed"))
	l.executed++

	var accumulated float64
	if r := l.opts.Recorder; r != nil {
		earned := r.Record(in, l.opts.now())
		accumulated = r.Accumulated()
		log.Debug("reward", logging.Float64("earned", earned), logging.Float64("accumulated", accumulated))
	}
	if l.opts.Metrics != nil {
		l.opts.Metrics.RecordExecution(string(l.pol.Kind()), took, accumulated, l.ledger.Len())
	}
	l.publishSnapshot(tick, "executed")
}

func (l *Loop) drainInbox(log logging.Logger, tick uint64) {
	l.inboxMu.Lock()
	batch := l.inbox
	l.inbox = nil
	l.inboxMu.Unlock()

	if len(batch) == 0 {
		return
	}

	changed := false
	for _, m := range batch {
		if m.add != nil {
			changed = l.merge(log, *m.add) || changed
			continue
		}
		changed = l.withdraw(log, m.withdraw) || changed
	}
	if changed {
		l.publishSnapshot(tick, "arrival")
	}
}

func (l *Loop) merge(log logging.Logger, in instruction.Instruction) bool {
	ilog := log.With(logging.InstructionID(uint64(in.ID)))
	if err := instruction.Validate(in); err != nil {
		ilog.Warn("instruction rejected", logging.Reason(err.Error()))
		l.recordArrival("rejected")
		return false
	}
	if !l.g.Has(in.Destination) {
		ilog.Warn("instruction rejected", logging.Reason(fmt.Sprintf("destination %d is not on the map", in.Destination)))
		l.recordArrival("rejected")
		return false
	}
	if in.StartTime.IsZero() {
		in.StartTime = l.opts.now()
	}

	if l.ledger.Add(in) {
		ilog.Info("instruction replaced", logging.Node(int(in.Destination)))
		l.recordArrival("replaced")
	} else {
		ilog.Info("instruction received", logging.Node(int(in.Destination)), logging.Float64("r", in.Reward))
		l.recordArrival("added")
	}
	return true
}

func (l *Loop) withdraw(log logging.Logger, id instruction.ID) bool {
	ilog := log.With(logging.InstructionID(uint64(id)))
	if _, err := l.ledger.Remove(id); err != nil {
		ilog.Warn("withdraw skipped", logging.Error(err))
		if l.opts.Metrics != nil {
			l.opts.Metrics.RemoveNotFoundTotal.Inc()
		}
		return false
	}
	ilog.Info("removed", logging.Reason("withdrawn"))
	l.recordArrival("withdrawn")
	return true
}

func (l *Loop) idle() {
	if l.opts.Metrics != nil {
		l.opts.Metrics.IdleTicksTotal.Inc()
	}
}

func (l *Loop) fail(log logging.Logger, err error) error {
	log.Error("planner failed", logging.Error(err))
	l.errMu.Lock()
	l.err = err
	l.errMu.Unlock()
	if l.opts.Metrics != nil {
		l.opts.Metrics.LoopFailuresTotal.Inc()
	}
	return err
}

func (l *Loop) recordArrival(outcome string) {
	if l.opts.Metrics != nil {
		l.opts.Metrics.RecordArrival(outcome, l.ledger.Len())
	}
}

func (l *Loop) publishSnapshot(tick uint64, reason string) {
	l.publish(pubsub.TopicSnapshot, Snapshot{Tick: tick, Reason: reason, Instructions: l.ledger.Snapshot()})
}

func (l *Loop) publish(topic pubsub.Topic, payload any) {
	if l.opts.Events != nil {
		l.opts.Events.Publish(topic, payload)
	}
}
