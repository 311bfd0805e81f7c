package transport

import (
	"fmt"
	"time"

	"github.com/dd0wney/tamp-planner/pkg/instruction"
)

// Submitter pushes instruction batches to a planner's feed.
type Submitter struct {
	opts   Options
	socket DialSocket
}

// DialSubmitter connects a PUSH socket to addr.
func DialSubmitter(addr string, opts Options) (*Submitter, error) {
	opts = opts.withDefaults()
	socket, err := opts.Factory.NewPushSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create PUSH socket: %w", err)
	}
	if err := socket.SetSendDeadline(5 * time.Second); err != nil {
		socket.Close()
		return nil, err
	}
	if err := socket.Dial(addr); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Submitter{opts: opts, socket: socket}, nil
}

// Submit sends instructions as one batch.
func (s *Submitter) Submit(ins ...instruction.Instruction) error {
	return s.Send(Batch{Instructions: ins})
}

// Withdraw asks the planner to drop pending instructions.
func (s *Submitter) Withdraw(ids ...instruction.ID) error {
	return s.Send(Batch{Withdraw: ids})
}

// Send transmits a batch.
func (s *Submitter) Send(b Batch) error {
	frame, err := s.opts.Codec.Encode(TopicInstructions, b)
	if err != nil {
		return err
	}
	if err := s.socket.Send(frame); err != nil {
		s.opts.failed(TopicInstructions, "send")
		return fmt.Errorf("send batch: %w", err)
	}
	s.opts.sent(TopicInstructions)
	return nil
}

// Close closes the socket.
func (s *Submitter) Close() error {
	return s.socket.Close()
}
