//go:build zmq
// +build zmq

package transport

import (
	"time"

	zmq "github.com/pebbe/zmq4"
)

// zmqSocket wraps a ZeroMQ socket to implement Socket.
type zmqSocket struct {
	sock *zmq.Socket
}

func (s *zmqSocket) Send(data []byte) error {
	_, err := s.sock.SendBytes(data, 0)
	return err
}

func (s *zmqSocket) Recv() ([]byte, error) {
	return s.sock.RecvBytes(0)
}

func (s *zmqSocket) Close() error {
	return s.sock.Close()
}

func (s *zmqSocket) SetRecvDeadline(d time.Duration) error {
	return s.sock.SetRcvtimeo(d)
}

func (s *zmqSocket) SetSendDeadline(d time.Duration) error {
	return s.sock.SetSndtimeo(d)
}

func (s *zmqSocket) Listen(addr string) error {
	return s.sock.Bind(addr)
}

func (s *zmqSocket) Dial(addr string) error {
	return s.sock.Connect(addr)
}

// zmqSubSocket adds subscription capability.
type zmqSubSocket struct {
	zmqSocket
}

func (s *zmqSubSocket) Subscribe(topic []byte) error {
	return s.sock.SetSubscribe(string(topic))
}

// ZMQSocketFactory creates ZeroMQ sockets.
type ZMQSocketFactory struct{}

func newZMQSocketFactory() (SocketFactory, error) {
	return &ZMQSocketFactory{}, nil
}

func (f *ZMQSocketFactory) newSocket(t zmq.Type) (*zmqSocket, error) {
	sock, err := zmq.NewSocket(t)
	if err != nil {
		return nil, err
	}
	// Do not block Close on undelivered messages.
	if err := sock.SetLinger(0); err != nil {
		sock.Close()
		return nil, err
	}
	return &zmqSocket{sock: sock}, nil
}

func (f *ZMQSocketFactory) NewPullSocket() (ListenSocket, error) { return f.newSocket(zmq.PULL) }
func (f *ZMQSocketFactory) NewPushSocket() (DialSocket, error)   { return f.newSocket(zmq.PUSH) }
func (f *ZMQSocketFactory) NewPubSocket() (ListenSocket, error)  { return f.newSocket(zmq.PUB) }
func (f *ZMQSocketFactory) NewReqSocket() (DialSocket, error)    { return f.newSocket(zmq.REQ) }
func (f *ZMQSocketFactory) NewRepSocket() (ListenSocket, error)  { return f.newSocket(zmq.REP) }

func (f *ZMQSocketFactory) NewSubSocket() (SubscribeSocket, error) {
	s, err := f.newSocket(zmq.SUB)
	if err != nil {
		return nil, err
	}
	return &zmqSubSocket{*s}, nil
}

var _ SocketFactory = (*ZMQSocketFactory)(nil)
