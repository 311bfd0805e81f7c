package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dd0wney/tamp-planner/pkg/logging"
	"github.com/dd0wney/tamp-planner/pkg/planner"
)

var (
	// ErrActuatorRejected wraps a failure reported by the remote actuator.
	ErrActuatorRejected = errors.New("actuator rejected request")
	// ErrActuatorClosed is returned when Close interrupts a pending execution.
	ErrActuatorClosed = errors.New("actuator closed")
)

// RemoteActuator sends execution requests over a REQ socket and waits for
// the collaborator to reply once the action is done.
type RemoteActuator struct {
	opts   Options
	socket DialSocket
	log    logging.Logger
	// warnEvery is how often a still-pending execution is logged.
	warnEvery time.Duration
	mu        sync.Mutex
	closed    atomic.Bool
}

var _ planner.Actuator = (*RemoteActuator)(nil)

// DialActuator connects a REQ socket to addr. warnEvery spaces the warnings
// logged while a reply is outstanding; it never bounds the wait.
func DialActuator(addr string, warnEvery time.Duration, opts Options) (*RemoteActuator, error) {
	opts = opts.withDefaults()
	socket, err := opts.Factory.NewReqSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create REQ socket: %w", err)
	}
	if err := socket.Dial(addr); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	// A receive timeout cancels the outstanding request on a REQ socket.
	if err := socket.SetRecvDeadline(noDeadline); err != nil {
		socket.Close()
		return nil, err
	}
	if warnEvery <= 0 {
		warnEvery = 10 * time.Second
	}
	return &RemoteActuator{
		opts:      opts,
		socket:    socket,
		log:       opts.Logger.With(logging.Component("actuator"), logging.String("addr", addr)),
		warnEvery: warnEvery,
	}, nil
}

// Execute sends req and blocks until the collaborator replies, with no
// reply deadline. Once the request is on the wire the instruction counts
// as started: besides an explicit rejection, only a failed send or Close
// returns an error. ctx is not consulted.
func (a *RemoteActuator) Execute(_ context.Context, req planner.ExecutionRequest) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed.Load() {
		return ErrActuatorClosed
	}
	frame, err := a.opts.Codec.Encode(TopicExecute, req)
	if err != nil {
		return err
	}
	if err := a.socket.Send(frame); err != nil {
		a.opts.failed(TopicExecute, "send")
		return fmt.Errorf("send execution request: %w", err)
	}
	a.opts.sent(TopicExecute)

	log := a.log.With(
		logging.String("request_id", req.RequestID),
		logging.InstructionID(uint64(req.Instruction.ID)))
	stop := a.warnWhilePending(log, req.Instruction.ExecutionTime())
	reply, err := a.socket.Recv()
	stop()
	if err != nil {
		a.opts.failed(TopicResult, "recv")
		if a.closed.Load() {
			return fmt.Errorf("await execution result %s: %w", req.RequestID, ErrActuatorClosed)
		}
		log.Warn("execution reply lost", logging.Error(err))
		return nil
	}
	a.opts.received(TopicResult)

	var res Result
	if err := a.opts.Codec.Decode(TopicResult, reply, &res); err != nil {
		a.opts.failed(TopicResult, "decode")
		log.Warn("unreadable execution reply", logging.Error(err))
		return nil
	}
	if res.RequestID != req.RequestID {
		log.Warn("execution reply for another request", logging.String("reply_id", res.RequestID))
		return nil
	}
	if res.Error != "" {
		return fmt.Errorf("%w: %s", ErrActuatorRejected, res.Error)
	}
	return nil
}

// warnWhilePending logs every warnEvery past the expected duration until
// the returned stop func is called.
func (a *RemoteActuator) warnWhilePending(log logging.Logger, expected time.Duration) (stop func()) {
	done := make(chan struct{})
	started := time.Now()
	go func() {
		ticker := time.NewTicker(a.warnEvery)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if waited := time.Since(started); waited > expected {
					log.Warn("waiting for actuator",
						logging.Duration("waited", waited),
						logging.Duration("expected", expected))
				}
			}
		}
	}()
	return func() { close(done) }
}

// Close closes the socket, interrupting any pending Execute.
func (a *RemoteActuator) Close() error {
	a.closed.Store(true)
	return a.socket.Close()
}

// ActuatorServer answers execution requests on a REP socket by running
// them through a local actuator.
type ActuatorServer struct {
	opts    Options
	socket  ListenSocket
	addr    string
	handler planner.Actuator
	log     logging.Logger

	stopCh    chan struct{}
	wg        sync.WaitGroup
	running   bool
	runningMu sync.Mutex
}

// NewActuatorServer creates a server that will bind addr.
func NewActuatorServer(addr string, handler planner.Actuator, opts Options) (*ActuatorServer, error) {
	opts = opts.withDefaults()
	socket, err := opts.Factory.NewRepSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create REP socket: %w", err)
	}
	return &ActuatorServer{
		opts:    opts,
		socket:  socket,
		addr:    addr,
		handler: handler,
		log:     opts.Logger.With(logging.Component("actuator"), logging.String("addr", addr)),
		stopCh:  make(chan struct{}),
	}, nil
}

// Start binds the socket and begins serving. Handler calls receive ctx.
func (s *ActuatorServer) Start(ctx context.Context) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.running {
		return fmt.Errorf("actuator server already running")
	}
	if err := s.socket.Listen(s.addr); err != nil {
		return fmt.Errorf("failed to bind REP socket to %s: %w", s.addr, err)
	}
	if err := s.socket.SetRecvDeadline(s.opts.RecvTimeout); err != nil {
		return err
	}

	s.running = true
	s.wg.Add(1)
	go s.serve(ctx)

	s.log.Info("actuator listening")
	return nil
}

// Stop waits for the current request to finish and closes the socket.
func (s *ActuatorServer) Stop() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return nil
	}
	close(s.stopCh)
	s.running = false
	s.wg.Wait()
	return s.socket.Close()
}

func (s *ActuatorServer) serve(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		msg, err := s.socket.Recv()
		if err != nil {
			continue // Timeout
		}
		s.opts.received(TopicExecute)

		// Every request gets exactly one reply.
		reply := s.handle(ctx, msg)
		frame, err := s.opts.Codec.Encode(TopicResult, reply)
		if err != nil {
			s.log.Error("encode result", logging.Error(err))
			continue
		}
		if err := s.socket.Send(frame); err != nil {
			s.opts.failed(TopicResult, "send")
			s.log.Warn("reply not delivered", logging.String("request_id", reply.RequestID), logging.Error(err))
			continue
		}
		s.opts.sent(TopicResult)
	}
}

func (s *ActuatorServer) handle(ctx context.Context, msg []byte) Result {
	var req planner.ExecutionRequest
	if err := s.opts.Codec.Decode(TopicExecute, msg, &req); err != nil {
		s.opts.failed(TopicExecute, "decode")
		return Result{Error: err.Error()}
	}

	log := s.log.With(
		logging.String("request_id", req.RequestID),
		logging.InstructionID(uint64(req.Instruction.ID)),
		logging.Node(int(req.Node)))
	timer := logging.StartTimer(log, "request served")
	log.Info("executing", logging.Float64("duration", req.Instruction.Duration))

	res := Result{RequestID: req.RequestID}
	if err := s.handler.Execute(ctx, req); err != nil {
		log.Warn("execution failed", logging.Error(err))
		res.Error = err.Error()
	}
	timer.Stop()
	return res
}
