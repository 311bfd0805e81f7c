//go:build !zmq
// +build !zmq

package transport

import "errors"

// ErrZMQUnavailable is returned when ZeroMQ sockets are requested from a
// binary built without the zmq tag.
var ErrZMQUnavailable = errors.New("transport: built without zmq support (rebuild with -tags zmq)")

func newZMQSocketFactory() (SocketFactory, error) {
	return nil, ErrZMQUnavailable
}
