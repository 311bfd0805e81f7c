// Package transport connects the planner to out-of-process collaborators
// over nanomsg (mangos) sockets, or ZeroMQ when built with -tags zmq.
package transport

import (
	"fmt"
	"io"
	"time"
)

// noDeadline disables a receive deadline on both mangos and ZeroMQ sockets.
const noDeadline time.Duration = -1

// Socket represents a messaging socket that can send and receive messages.
// The interface hides whether mangos or ZeroMQ sits underneath.
type Socket interface {
	io.Closer
	Send([]byte) error
	Recv() ([]byte, error)
	SetRecvDeadline(d time.Duration) error
	SetSendDeadline(d time.Duration) error
}

// ListenSocket is a socket that binds to an address.
type ListenSocket interface {
	Socket
	Listen(addr string) error
}

// DialSocket is a socket that connects to a remote address.
type DialSocket interface {
	Socket
	Dial(addr string) error
}

// SubscribeSocket is a SUB socket that filters by topic prefix.
type SubscribeSocket interface {
	DialSocket
	Subscribe(topic []byte) error
}

// SocketFactory creates sockets for the messaging patterns in use.
type SocketFactory interface {
	// Instruction feed
	NewPullSocket() (ListenSocket, error)
	NewPushSocket() (DialSocket, error)

	// State publishing
	NewPubSocket() (ListenSocket, error)
	NewSubSocket() (SubscribeSocket, error)

	// Actuation
	NewReqSocket() (DialSocket, error)
	NewRepSocket() (ListenSocket, error)
}

// Kind names a socket implementation.
type Kind string

const (
	KindNNG Kind = "nng"
	KindZMQ Kind = "zmq"
)

// NewSocketFactory returns the factory for kind.
func NewSocketFactory(kind Kind) (SocketFactory, error) {
	switch kind {
	case KindNNG, "":
		return NewNNGSocketFactory(), nil
	case KindZMQ:
		return newZMQSocketFactory()
	default:
		return nil, fmt.Errorf("unknown socket kind %q", kind)
	}
}
