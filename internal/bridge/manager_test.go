package bridge

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"
)

func startManager(t *testing.T, cfg ManagerConfig) *Manager {
	t.Helper()
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:0"
	}
	m := NewManager(cfg)
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func waitConnected(t *testing.T, m *Manager) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !m.Connected() {
		if time.Now().After(deadline) {
			t.Fatal("peer never attached")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// attachPeer dials the manager's listen port and waits for the connection
// to be installed.
func attachPeer(t *testing.T, m *Manager) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", m.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	waitConnected(t, m)
	return conn
}

// echoPeer answers every request frame with handle's result. A nil result
// leaves the request unanswered.
func echoPeer(conn net.Conn, handle func(req []byte) []byte) {
	go func() {
		for {
			req, err := readFrame(conn, DefaultMaxFrameBytes)
			if err != nil {
				return
			}
			resp := handle(req)
			if resp == nil {
				continue
			}
			if err := writeFrame(conn, resp); err != nil {
				return
			}
		}
	}()
}

func TestCallWhileDisconnected(t *testing.T) {
	m := startManager(t, ManagerConfig{CallTimeout: 5 * time.Second})

	start := time.Now()
	_, err := m.Call(context.Background(), []byte("ping"))
	if !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("error = %v, want ErrConnectionLost", err)
	}
	// Fail-fast, not a wait for the timeout
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("disconnected call took %v", elapsed)
	}
}

func TestCallRoundTrip(t *testing.T) {
	m := startManager(t, ManagerConfig{})
	peer := attachPeer(t, m)
	echoPeer(peer, func(req []byte) []byte {
		return append([]byte("re:"), req...)
	})

	resp, err := m.Call(context.Background(), []byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if string(resp) != "re:hello" {
		t.Errorf("response = %q", resp)
	}
}

func TestCallTimeoutReportsConnectionLost(t *testing.T) {
	m := startManager(t, ManagerConfig{CallTimeout: 100 * time.Millisecond})
	peer := attachPeer(t, m)
	echoPeer(peer, func(req []byte) []byte { return nil }) // never answers

	start := time.Now()
	_, err := m.Call(context.Background(), []byte("ping"))
	if !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("error = %v, want ErrConnectionLost", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timed-out call took %v", elapsed)
	}
	if m.Connected() {
		t.Error("connection should be dropped after timeout")
	}
}

func TestPeerCloseFailsCall(t *testing.T) {
	m := startManager(t, ManagerConfig{})
	peer := attachPeer(t, m)
	_ = peer.Close()

	_, err := m.Call(context.Background(), []byte("ping"))
	if !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("error = %v, want ErrConnectionLost", err)
	}
}

func TestNewPeerReplacesPrevious(t *testing.T) {
	m := startManager(t, ManagerConfig{})
	first := attachPeer(t, m)

	second, err := net.Dial("tcp", m.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = second.Close() })

	// The replaced connection gets closed, which the first peer observes
	// as EOF.
	_ = first.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := first.Read(make([]byte, 1)); err == nil || !errors.Is(err, io.EOF) {
		t.Fatalf("first peer read error = %v, want EOF", err)
	}

	echoPeer(second, func(req []byte) []byte { return []byte("from-second") })
	resp, err := m.Call(context.Background(), []byte("ping"))
	if err != nil {
		t.Fatal(err)
	}
	if string(resp) != "from-second" {
		t.Errorf("response = %q, want from-second", resp)
	}
}

// TestCallsNeverOverlap verifies the exclusivity lock: with concurrent
// callers, the peer must never observe a second request before it has
// answered the first. The peer probes for early bytes between reading a
// request and writing its response.
func TestCallsNeverOverlap(t *testing.T) {
	m := startManager(t, ManagerConfig{})
	peer := attachPeer(t, m)

	overlaps := make(chan struct{}, 8)
	go func() {
		for {
			req, err := readFrame(peer, DefaultMaxFrameBytes)
			if err != nil {
				return
			}
			// A well-behaved caller has nothing more in flight until we
			// respond; any readable byte here is an overlapping request.
			_ = peer.SetReadDeadline(time.Now().Add(30 * time.Millisecond))
			if _, err := peer.Read(make([]byte, 1)); err == nil {
				overlaps <- struct{}{}
				return
			}
			_ = peer.SetReadDeadline(time.Time{})
			if err := writeFrame(peer, req); err != nil {
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Call(context.Background(), []byte("req")); err != nil {
				t.Errorf("call failed: %v", err)
			}
		}()
	}
	wg.Wait()

	select {
	case <-overlaps:
		t.Fatal("peer observed overlapping round trips")
	default:
	}
}

func TestBindErrorSurfacesFromStart(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	m := NewManager(ManagerConfig{ListenAddr: ln.Addr().String()})
	if err := m.Start(context.Background()); err == nil {
		_ = m.Close()
		t.Fatal("expected bind error on occupied port")
	}
}

func TestContextDeadlineBoundsCall(t *testing.T) {
	m := startManager(t, ManagerConfig{CallTimeout: 10 * time.Second})
	peer := attachPeer(t, m)
	echoPeer(peer, func(req []byte) []byte { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := m.Call(ctx, []byte("ping"))
	if !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("error = %v, want ErrConnectionLost", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("context-bounded call took %v", elapsed)
	}
}
