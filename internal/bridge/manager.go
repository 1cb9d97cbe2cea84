package bridge

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Defaults for ManagerConfig zero values.
const (
	DefaultCallTimeout   = 10 * time.Second
	DefaultAcceptBackoff = 500 * time.Millisecond
	DefaultMaxFrameBytes = 64 << 20
)

// ManagerConfig configures the connection manager.
type ManagerConfig struct {
	ListenAddr    string        // host:port the peer attaches to
	CallTimeout   time.Duration // per round trip, not per tool call
	AcceptBackoff time.Duration // delay after a transient accept error
	MaxFrameBytes uint32        // inbound frame size cap
}

func (c *ManagerConfig) applyDefaults() {
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.AcceptBackoff <= 0 {
		c.AcceptBackoff = DefaultAcceptBackoff
	}
	if c.MaxFrameBytes == 0 {
		c.MaxFrameBytes = DefaultMaxFrameBytes
	}
}

// Manager owns the single transport connection to the remote peer. It
// accepts one connection at a time (a new peer replaces the previous one),
// performs length-framed round trips under an exclusivity lock, and
// normalizes every transport failure to ErrConnectionLost. The protocol
// has no per-call correlation, so request/response pairing is guaranteed
// purely by serializing callers through callMu.
type Manager struct {
	cfg ManagerConfig
	ln  net.Listener

	callMu sync.Mutex // at most one round trip in flight

	connMu  sync.Mutex // guards conn and session
	conn    net.Conn
	session string

	closed atomic.Bool
}

// NewManager returns an unstarted Manager. Zero config fields take the
// package defaults.
func NewManager(cfg ManagerConfig) *Manager {
	cfg.applyDefaults()
	return &Manager{cfg: cfg}
}

// Start binds the listening socket and begins accepting peer connections
// in the background. A bind failure is returned immediately and is the
// only fatal error the bridge produces.
func (m *Manager) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", m.cfg.ListenAddr, err)
	}
	m.ln = ln
	log.Info().Str("addr", ln.Addr().String()).Msg("listening for application connection")

	go m.acceptLoop(ctx)
	return nil
}

// Addr returns the bound listen address. Only valid after Start.
func (m *Manager) Addr() net.Addr {
	return m.ln.Addr()
}

func (m *Manager) acceptLoop(ctx context.Context) {
	for {
		conn, err := m.ln.Accept()
		if err != nil {
			if m.closed.Load() || ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("accept failed, retrying")
			select {
			case <-time.After(m.cfg.AcceptBackoff):
			case <-ctx.Done():
				return
			}
			continue
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.SetNoDelay(true)
		}
		m.attach(conn)
	}
}

// attach installs a freshly accepted connection, replacing and closing any
// prior one. Closing the old socket fails whatever call is still blocked
// on it, which surfaces as ErrConnectionLost to that caller.
func (m *Manager) attach(conn net.Conn) {
	session := uuid.NewString()

	m.connMu.Lock()
	prev := m.conn
	m.conn = conn
	m.session = session
	m.connMu.Unlock()

	if prev != nil {
		log.Info().Msg("replacing previous peer connection")
		_ = prev.Close()
	}
	log.Info().
		Str("remote", conn.RemoteAddr().String()).
		Str("session", session).
		Msg("application connected")
}

func (m *Manager) current() (net.Conn, string) {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	return m.conn, m.session
}

// drop discards conn if it is still the active connection. Guarding on
// identity keeps a slow failure from tearing down a replacement peer that
// attached in the meantime.
func (m *Manager) drop(conn net.Conn, session, reason string) {
	m.connMu.Lock()
	active := m.conn == conn
	if active {
		m.conn = nil
		m.session = ""
	}
	m.connMu.Unlock()

	_ = conn.Close()
	if active {
		log.Warn().Str("session", session).Str("reason", reason).Msg("dropped peer connection")
	}
}

// Drop discards the current peer connection, if any. The gateway calls
// this after a protocol error, since a desynchronized byte stream cannot
// be trusted for further round trips.
func (m *Manager) Drop(reason string) {
	m.connMu.Lock()
	conn, session := m.conn, m.session
	m.conn = nil
	m.session = ""
	m.connMu.Unlock()

	if conn != nil {
		_ = conn.Close()
		log.Warn().Str("session", session).Str("reason", reason).Msg("dropped peer connection")
	}
}

// Connected reports whether a peer is currently attached.
func (m *Manager) Connected() bool {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	return m.conn != nil
}

// Call performs one length-prefixed write followed by one length-prefixed
// read against the attached peer. Callers are serialized; with no peer
// attached it fails immediately rather than waiting for one. The round
// trip is bounded by the configured timeout (or an earlier context
// deadline), and expiry is reported as ErrConnectionLost so a stuck peer
// never stalls the bridge.
func (m *Manager) Call(ctx context.Context, request []byte) ([]byte, error) {
	m.callMu.Lock()
	defer m.callMu.Unlock()

	conn, session := m.current()
	if conn == nil {
		return nil, fmt.Errorf("%w: no application attached", ErrConnectionLost)
	}

	deadline := time.Now().Add(m.cfg.CallTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		m.drop(conn, session, "set deadline failed")
		return nil, fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}

	if err := writeFrame(conn, request); err != nil {
		m.drop(conn, session, "write failed")
		return nil, fmt.Errorf("%w: write: %v", ErrConnectionLost, err)
	}

	response, err := readFrame(conn, m.cfg.MaxFrameBytes)
	if err != nil {
		m.drop(conn, session, "read failed")
		if isFrameTooLarge(err) {
			return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		return nil, fmt.Errorf("%w: read: %v", ErrConnectionLost, err)
	}

	_ = conn.SetDeadline(time.Time{})
	return response, nil
}

// Close stops accepting and disconnects any attached peer.
func (m *Manager) Close() error {
	m.closed.Store(true)
	var err error
	if m.ln != nil {
		err = m.ln.Close()
	}
	m.Drop("manager closed")
	return err
}
