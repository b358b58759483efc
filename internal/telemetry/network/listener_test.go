package network

import (
	"bytes"
	"errors"
	"net"
	"sync"
	"testing"
	"time"
)

func startListener(t *testing.T, sock *FakeSocket, timeout time.Duration, handler Handler) (*Listener, chan error) {
	t.Helper()
	l := NewListener(ListenerConfig{
		Address:     "127.0.0.1:0",
		ReadTimeout: timeout,
		Factory:     &FakeSocketFactory{Socket: sock},
	})
	done := make(chan error, 1)
	go func() { done <- l.Listen(handler) }()
	return l, done
}

func TestListenerDispatchesDatagrams(t *testing.T) {
	sock := NewFakeSocket()
	src := &net.UDPAddr{IP: net.ParseIP("10.0.0.5"), Port: 36000}

	var mu sync.Mutex
	var got [][]byte
	var from []*net.UDPAddr
	received := make(chan struct{}, 16)

	l, done := startListener(t, sock, 20*time.Millisecond, func(data []byte, addr *net.UDPAddr) error {
		mu.Lock()
		cp := append([]byte(nil), data...)
		got = append(got, cp)
		from = append(from, addr)
		mu.Unlock()
		received <- struct{}{}
		return nil
	})

	sock.Incoming <- FakeDatagram{Data: []byte{1, 2, 3}, Addr: src}
	sock.Incoming <- FakeDatagram{Data: []byte{4, 5}, Addr: src}

	for i := 0; i < 2; i++ {
		select {
		case <-received:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for dispatch")
		}
	}

	if err := l.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Listen returned %v, want nil after Close", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || !bytes.Equal(got[0], []byte{1, 2, 3}) || !bytes.Equal(got[1], []byte{4, 5}) {
		t.Errorf("dispatched datagrams = %v", got)
	}
	if from[0] != src {
		t.Errorf("source address = %v, want %v", from[0], src)
	}
}

func TestListenerSurvivesReadTimeouts(t *testing.T) {
	sock := NewFakeSocket()
	received := make(chan struct{}, 1)

	l, done := startListener(t, sock, 5*time.Millisecond, func(data []byte, addr *net.UDPAddr) error {
		received <- struct{}{}
		return nil
	})

	// Let several read deadlines expire before any traffic arrives.
	time.Sleep(30 * time.Millisecond)
	sock.Incoming <- FakeDatagram{Data: []byte{9}, Addr: &net.UDPAddr{}}

	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("datagram after idle period was not dispatched")
	}

	l.Close()
	if err := <-done; err != nil {
		t.Errorf("Listen returned %v", err)
	}
}

func TestListenerCloseUnblocksPromptly(t *testing.T) {
	sock := NewFakeSocket()
	l, done := startListener(t, sock, 50*time.Millisecond, func(data []byte, addr *net.UDPAddr) error {
		return nil
	})

	// Give the loop a moment to enter its read.
	time.Sleep(10 * time.Millisecond)
	start := time.Now()
	l.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Listen returned %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after Close")
	}
	// Close unblocks the read directly; it must not wait out the timeout.
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Listen took %v to notice Close", elapsed)
	}
}

func TestListenerIsolatesHandlerErrors(t *testing.T) {
	sock := NewFakeSocket()
	received := make(chan []byte, 4)

	l, done := startListener(t, sock, 20*time.Millisecond, func(data []byte, addr *net.UDPAddr) error {
		received <- append([]byte(nil), data...)
		if data[0] == 0xBB {
			return errors.New("synthetic handler failure")
		}
		return nil
	})

	sock.Incoming <- FakeDatagram{Data: []byte{0xBB}, Addr: &net.UDPAddr{}}
	sock.Incoming <- FakeDatagram{Data: []byte{0xCC}, Addr: &net.UDPAddr{}}

	// The datagram after the failing one must still arrive.
	var last []byte
	for i := 0; i < 2; i++ {
		select {
		case last = <-received:
		case <-time.After(time.Second):
			t.Fatal("listener stopped dispatching after a handler error")
		}
	}
	if !bytes.Equal(last, []byte{0xCC}) {
		t.Errorf("last datagram = % x, want CC", last)
	}

	l.Close()
	<-done
}

func TestListenAfterCloseFails(t *testing.T) {
	l := NewListener(ListenerConfig{
		Address: "127.0.0.1:0",
		Factory: &FakeSocketFactory{Socket: NewFakeSocket()},
	})
	l.Close()
	err := l.Listen(func(data []byte, addr *net.UDPAddr) error { return nil })
	if !errors.Is(err, ErrTransportClosed) {
		t.Errorf("Listen after Close = %v, want ErrTransportClosed", err)
	}
}

func TestListenerSetsReceiveBuffer(t *testing.T) {
	sock := NewFakeSocket()
	l := NewListener(ListenerConfig{
		Address:     "127.0.0.1:0",
		RcvBuf:      1 << 20,
		ReadTimeout: 5 * time.Millisecond,
		Factory:     &FakeSocketFactory{Socket: sock},
	})
	done := make(chan error, 1)
	go func() { done <- l.Listen(func([]byte, *net.UDPAddr) error { return nil }) }()

	time.Sleep(20 * time.Millisecond)
	l.Close()
	<-done

	if sock.BufSize != 1<<20 {
		t.Errorf("receive buffer = %d, want %d", sock.BufSize, 1<<20)
	}
}

func TestListenerForwardsBeforeHandling(t *testing.T) {
	sock := NewFakeSocket()

	fwd := &Forwarder{
		channel:     make(chan []byte, 4),
		logInterval: time.Minute,
		address:     "test",
	}
	l := NewListener(ListenerConfig{
		Address:     "127.0.0.1:0",
		ReadTimeout: 20 * time.Millisecond,
		Forwarder:   fwd,
		Factory:     &FakeSocketFactory{Socket: sock},
	})
	received := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- l.Listen(func(data []byte, addr *net.UDPAddr) error {
			received <- struct{}{}
			return nil
		})
	}()

	sock.Incoming <- FakeDatagram{Data: []byte{1, 2, 3}, Addr: &net.UDPAddr{}}
	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("datagram not dispatched")
	}

	select {
	case cp := <-fwd.channel:
		if !bytes.Equal(cp, []byte{1, 2, 3}) {
			t.Errorf("forwarded copy = % x", cp)
		}
	default:
		t.Error("datagram was not queued to the forwarder")
	}

	l.Close()
	<-done
}
