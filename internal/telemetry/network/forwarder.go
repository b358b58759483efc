package network

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/skyward-data/telemetry/internal/monitoring"
)

// Forwarder re-sends received datagrams to a secondary consumer (a logging
// host, a second ground station) without slowing the receive loop. Packets
// queue into a bounded channel; when the queue is full the packet is
// dropped and counted rather than blocking the listener.
type Forwarder struct {
	conn        *net.UDPConn
	channel     chan []byte
	dropped     atomic.Uint64
	logInterval time.Duration
	address     string
}

// NewForwarder dials the forwarding destination.
func NewForwarder(addr string, port int, logInterval time.Duration) (*Forwarder, error) {
	dest := fmt.Sprintf("%s:%d", addr, port)
	udpAddr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve forward address: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to create forward connection: %w", err)
	}
	if logInterval == 0 {
		logInterval = time.Minute
	}
	return &Forwarder{
		conn:        conn,
		channel:     make(chan []byte, 1000),
		logInterval: logInterval,
		address:     dest,
	}, nil
}

// Start launches the forwarding goroutine. It drains the queue, reports
// accumulated drops on the log interval, and exits on context cancellation.
func (f *Forwarder) Start(ctx context.Context) {
	go func() {
		var sendErrs int
		var lastErr error
		ticker := time.NewTicker(f.logInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case pkt := <-f.channel:
				if _, err := f.conn.Write(pkt); err != nil {
					sendErrs++
					lastErr = err
				}
			case <-ticker.C:
				dropped := f.dropped.Swap(0)
				if dropped > 0 || sendErrs > 0 {
					monitoring.Logf("forwarder to %s: dropped %d queued, %d send errors (latest: %v)",
						f.address, dropped, sendErrs, lastErr)
					sendErrs = 0
					lastErr = nil
				}
			}
		}
	}()

	monitoring.Logf("forwarding packets to %s", f.address)
}

// ForwardAsync queues a copy of pkt for forwarding without blocking. The
// copy matters: the caller's buffer is reused for the next datagram.
func (f *Forwarder) ForwardAsync(pkt []byte) {
	cp := make([]byte, len(pkt))
	copy(cp, pkt)

	select {
	case f.channel <- cp:
	default:
		f.dropped.Add(1)
	}
}

// Dropped returns the number of packets dropped since the last interval
// report.
func (f *Forwarder) Dropped() uint64 { return f.dropped.Load() }

// Close releases the forwarding socket.
func (f *Forwarder) Close() error {
	return f.conn.Close()
}
