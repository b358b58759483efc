package network

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skyward-data/telemetry/internal/monitoring"
)

// Listener states. Close is the only external transition trigger; the
// receive loop checks for Closed at the top of every Waiting iteration, so
// cancellation takes effect within one read-timeout interval.
const (
	stateIdle int32 = iota
	stateWaiting
	stateDispatching
	stateClosed
)

// Handler processes one received datagram. It runs synchronously on the
// listener goroutine; decoding the payload is the handler's business, not
// the transport's. A returned error is logged and isolated — one bad
// datagram never stops the loop.
type Handler func(data []byte, src *net.UDPAddr) error

// ListenerConfig configures a Listener.
type ListenerConfig struct {
	// Address is the local UDP address to bind, e.g. ":35001".
	Address string
	// RcvBuf is the requested OS receive buffer size in bytes. Zero keeps
	// the OS default.
	RcvBuf int
	// ReadTimeout bounds each wait for a datagram. It is the loop's only
	// cancellation granularity; zero defaults to 100ms.
	ReadTimeout time.Duration
	// Forwarder, when set, receives a copy of every datagram before the
	// handler runs.
	Forwarder *Forwarder
	// Factory creates the socket. Nil uses real UDP sockets.
	Factory SocketFactory
}

// Listener receives telemetry datagrams on a bound UDP port and dispatches
// them to a handler. One Listener exclusively owns one socket.
type Listener struct {
	address     string
	rcvBuf      int
	readTimeout time.Duration
	forwarder   *Forwarder
	factory     SocketFactory

	state atomic.Int32

	mu   sync.Mutex
	sock UDPSocket
}

// MaxDatagram is the per-read buffer size: the largest possible UDP payload.
const MaxDatagram = 65535

// NewListener creates a listener. The socket is bound when Listen runs.
func NewListener(cfg ListenerConfig) *Listener {
	timeout := cfg.ReadTimeout
	if timeout == 0 {
		timeout = 100 * time.Millisecond
	}
	factory := cfg.Factory
	if factory == nil {
		factory = realSocketFactory{}
	}
	return &Listener{
		address:     cfg.Address,
		rcvBuf:      cfg.RcvBuf,
		readTimeout: timeout,
		forwarder:   cfg.Forwarder,
		factory:     factory,
	}
}

// Listen binds the socket and runs the receive loop until Close is called
// from another goroutine. Each iteration waits at most the configured read
// timeout; on timeout it re-polls, which is where a concurrent Close takes
// effect. A datagram already being dispatched when Close arrives completes.
func (l *Listener) Listen(handler Handler) error {
	if l.state.Load() == stateClosed {
		return fmt.Errorf("listen on %s: %w", l.address, ErrTransportClosed)
	}

	addr, err := net.ResolveUDPAddr("udp", l.address)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address %s: %w", l.address, err)
	}
	sock, err := l.factory.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.address, err)
	}

	l.mu.Lock()
	if l.state.Load() == stateClosed {
		l.mu.Unlock()
		sock.Close()
		return fmt.Errorf("listen on %s: %w", l.address, ErrTransportClosed)
	}
	l.sock = sock
	l.mu.Unlock()
	defer sock.Close()

	if l.rcvBuf > 0 {
		if err := sock.SetReadBuffer(l.rcvBuf); err != nil {
			monitoring.Logf("Warning: failed to set UDP receive buffer to %d: %v", l.rcvBuf, err)
		}
	}
	monitoring.Logf("telemetry listener started on %s", sock.LocalAddr())

	buffer := make([]byte, MaxDatagram)
	for {
		if !l.transition(stateWaiting) {
			return nil
		}

		sock.SetReadDeadline(time.Now().Add(l.readTimeout))
		n, src, err := sock.ReadFromUDP(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if l.state.Load() == stateClosed || errors.Is(err, net.ErrClosed) {
				return nil
			}
			monitoring.Logf("UDP read error: %v", err)
			continue
		}

		if !l.transition(stateDispatching) {
			// Closed while the datagram was in flight; drop it.
			return nil
		}

		data := buffer[:n]
		if l.forwarder != nil {
			l.forwarder.ForwardAsync(data)
		}
		if err := handler(data, src); err != nil {
			monitoring.Logf("error handling datagram from %v: %v", src, err)
		}
	}
}

// transition moves the loop to the given state unless Close already won.
func (l *Listener) transition(to int32) bool {
	for {
		s := l.state.Load()
		if s == stateClosed {
			return false
		}
		if l.state.CompareAndSwap(s, to) {
			return true
		}
	}
}

// Close stops an in-flight Listen at its next timeout boundary and releases
// the socket. It is idempotent and safe to call from any goroutine; no new
// datagrams are dispatched after it returns.
func (l *Listener) Close() error {
	l.state.Store(stateClosed)
	l.mu.Lock()
	sock := l.sock
	l.sock = nil
	l.mu.Unlock()
	if sock != nil {
		return sock.Close()
	}
	return nil
}
