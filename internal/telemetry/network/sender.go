package network

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/skyward-data/telemetry/internal/telemetry/message"
	"github.com/skyward-data/telemetry/internal/telemetry/packet"
)

// ErrTransportClosed is returned by transport operations after Close.
var ErrTransportClosed = errors.New("transport closed")

// Sender transmits encoded packets to one fixed destination. The socket is
// acquired at construction and released by Close; each Sender exclusively
// owns its socket and is safe for concurrent use.
type Sender struct {
	mu   sync.Mutex
	conn *net.UDPConn
	dest string

	closed bool
}

// NewSender opens a connected UDP socket aimed at host:port.
func NewSender(host string, port int) (*Sender, error) {
	dest := fmt.Sprintf("%s:%d", host, port)
	addr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination %s: %w", dest, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to open UDP socket to %s: %w", dest, err)
	}
	return &Sender{conn: conn, dest: dest}, nil
}

// Dest returns the destination address string.
func (s *Sender) Dest() string { return s.dest }

// Send transmits b as a single datagram. Delivery is fire-and-forget:
// datagram loss raises no error here and is never retried. A brief block on
// local socket buffer pressure is possible and not handled specially.
func (s *Sender) Send(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("send to %s: %w", s.dest, ErrTransportClosed)
	}
	if _, err := s.conn.Write(b); err != nil {
		return fmt.Errorf("send to %s: %w", s.dest, err)
	}
	return nil
}

// SendPacket frames the pre-encoded messages under the given sequence
// number and sends the result as one datagram.
func (s *Sender) SendPacket(sequence uint32, msgs ...[]byte) error {
	return s.Send(packet.Encode(sequence, msgs...))
}

// SendMessage encodes a single message and sends it as a one-message packet.
func (s *Sender) SendMessage(reg *message.Registry, sequence uint32, code string, tsNanos uint64, values message.Values) error {
	raw, err := message.Encode(reg, code, tsNanos, values)
	if err != nil {
		return err
	}
	return s.SendPacket(sequence, raw)
}

// Close releases the socket. It is idempotent; operations after the first
// Close fail with ErrTransportClosed.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
