package network

import (
	"net"
	"time"
)

// UDPSocket is the slice of *net.UDPConn the receive loop needs. The
// abstraction exists so listener behavior (timeouts, close-during-listen,
// handler dispatch) can be unit tested without binding real ports.
type UDPSocket interface {
	ReadFromUDP(b []byte) (n int, addr *net.UDPAddr, err error)
	SetReadBuffer(bytes int) error
	SetReadDeadline(t time.Time) error
	Close() error
	LocalAddr() net.Addr
}

// SocketFactory creates UDP sockets, enabling injection of fakes in tests.
type SocketFactory interface {
	ListenUDP(network string, laddr *net.UDPAddr) (UDPSocket, error)
}

type realSocketFactory struct{}

func (realSocketFactory) ListenUDP(netw string, laddr *net.UDPAddr) (UDPSocket, error) {
	conn, err := net.ListenUDP(netw, laddr)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// FakeSocket implements UDPSocket for tests. Datagrams are supplied through
// the Incoming channel; a nil read deadline emulation returns a timeout
// error when nothing arrives within the deadline set by the listener.
type FakeSocket struct {
	// Incoming feeds datagrams to ReadFromUDP.
	Incoming chan FakeDatagram
	// Local is returned by LocalAddr.
	Local *net.UDPAddr
	// BufSize records the last SetReadBuffer value.
	BufSize int

	deadline time.Time
	closed   chan struct{}
}

// FakeDatagram is one datagram queued into a FakeSocket.
type FakeDatagram struct {
	Data []byte
	Addr *net.UDPAddr
}

// NewFakeSocket returns a FakeSocket with room for queued datagrams.
func NewFakeSocket() *FakeSocket {
	return &FakeSocket{
		Incoming: make(chan FakeDatagram, 64),
		Local:    &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 35001},
		closed:   make(chan struct{}),
	}
}

// ReadFromUDP returns the next queued datagram, a timeout error once the
// configured deadline passes, or net.ErrClosed after Close.
func (f *FakeSocket) ReadFromUDP(b []byte) (int, *net.UDPAddr, error) {
	var expire <-chan time.Time
	if !f.deadline.IsZero() {
		t := time.NewTimer(time.Until(f.deadline))
		defer t.Stop()
		expire = t.C
	}
	select {
	case <-f.closed:
		return 0, nil, net.ErrClosed
	case d := <-f.Incoming:
		return copy(b, d.Data), d.Addr, nil
	case <-expire:
		return 0, nil, &net.OpError{Op: "read", Net: "udp", Err: timeoutError{}}
	}
}

// SetReadBuffer records the requested receive buffer size.
func (f *FakeSocket) SetReadBuffer(bytes int) error {
	f.BufSize = bytes
	return nil
}

// SetReadDeadline records the deadline used by ReadFromUDP.
func (f *FakeSocket) SetReadDeadline(t time.Time) error {
	f.deadline = t
	return nil
}

// Close unblocks any pending read with net.ErrClosed.
func (f *FakeSocket) Close() error {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}

// LocalAddr returns the fake local address.
func (f *FakeSocket) LocalAddr() net.Addr { return f.Local }

// FakeSocketFactory hands out a fixed FakeSocket.
type FakeSocketFactory struct {
	Socket *FakeSocket
	// Err, if set, is returned by ListenUDP.
	Err error
}

// ListenUDP returns the configured fake socket.
func (f *FakeSocketFactory) ListenUDP(netw string, laddr *net.UDPAddr) (UDPSocket, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Socket, nil
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }
