// Package app holds the session lifecycle core: the single-slot session
// manager and its background receive worker.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/canbridge/canbridge/internal/core"
	"github.com/canbridge/canbridge/internal/domain"
)

const sendTimeout = 1 * time.Second

// SessionManager owns at most one live CAN session. All control calls are
// safe for concurrent use; only the receive worker blocks on bus I/O.
type SessionManager struct {
	transport    core.Transport
	sink         core.EventSink
	defaultIface string

	mu      sync.Mutex
	session *session
}

// Status is a read-only snapshot of the session slot.
type Status struct {
	Active    bool   `json:"active"`
	Interface string `json:"interface,omitempty"`
}

func NewSessionManager(tr core.Transport, sink core.EventSink, defaultIface string) *SessionManager {
	return &SessionManager{
		transport:    tr,
		sink:         sink,
		defaultIface: defaultIface,
	}
}

// Start dials iface and launches the receive worker. It fails with
// core.ErrAlreadyActive when a session exists, without dialing. A blank
// iface falls back to the configured default.
func (m *SessionManager) Start(iface string) error {
	iface = strings.TrimSpace(iface)
	if iface == "" {
		iface = m.defaultIface
	}

	m.mu.Lock()
	if m.session != nil {
		m.mu.Unlock()
		return core.ErrAlreadyActive
	}
	sess := newSession(iface)
	m.session = sess
	m.mu.Unlock()

	// Dial outside the lock so concurrent control calls see the pending
	// session instead of blocking behind the dial.
	conn, err := m.transport.Dial(sess.ctx, iface)
	if err != nil {
		// A Stop that raced the dial cancelled it; that is not a user error.
		if sess.ctx.Err() == nil {
			m.sink.EmitError(domain.NewErrorEvent(fmt.Errorf("dial %s: %w", iface, err)))
		}
		m.discard(sess)
		return err
	}
	if sess.ctx.Err() != nil {
		_ = conn.Close()
		m.discard(sess)
		return sess.ctx.Err()
	}

	m.mu.Lock()
	sess.conn = conn
	m.mu.Unlock()

	go m.receiveLoop(sess)
	log.Info().Str("module", "app.can").Str("iface", iface).Msg("session started")
	return nil
}

// Stop tears down the current session and waits for the worker to exit.
// Idempotent; a no-op when nothing is running.
func (m *SessionManager) Stop() {
	m.mu.Lock()
	sess := m.session
	var conn core.Conn
	if sess != nil {
		conn = sess.conn
	}
	m.mu.Unlock()

	if sess == nil {
		return
	}

	sess.cancel()
	// Closing the conn is what unblocks a worker stuck in Next.
	if conn != nil {
		_ = conn.Close()
	}
	<-sess.done

	m.clearIfCurrent(sess)
	log.Info().Str("module", "app.can").Str("iface", sess.iface).Msg("session stopped")
}

// Send transmits one data frame on the active session, bounded by a fixed
// deadline. Validation failures never reach the transport or the sink.
func (m *SessionManager) Send(id uint32, payload []byte, extended bool) error {
	if len(payload) > domain.MaxPayloadLen {
		return fmt.Errorf("%w: got %d", domain.ErrPayloadTooLong, len(payload))
	}

	m.mu.Lock()
	var conn core.Conn
	if m.session != nil {
		conn = m.session.conn
	}
	m.mu.Unlock()

	if conn == nil {
		return core.ErrNotStarted
	}

	f, err := domain.NewFrame(id, payload, extended)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := conn.Send(ctx, f); err != nil {
		err = fmt.Errorf("transmit 0x%X: %w", id, err)
		m.sink.EmitError(domain.NewErrorEvent(err))
		return err
	}
	return nil
}

// Status reports whether a session is active and on which interface.
func (m *SessionManager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil || m.session.conn == nil {
		return Status{}
	}
	return Status{Active: true, Interface: m.session.iface}
}

// receiveLoop pulls units from the bus until the session is cancelled or the
// stream ends, and hands each one to the sink. Error-frames never terminate
// the loop.
func (m *SessionManager) receiveLoop(sess *session) {
	defer func() {
		_ = sess.conn.Close()
		close(sess.done)
		m.clearIfCurrent(sess)
	}()

	for {
		unit, err := sess.conn.Next()
		if err != nil {
			if sess.ctx.Err() == nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				m.sink.EmitError(domain.NewErrorEvent(fmt.Errorf("receive: %w", err)))
			}
			return
		}
		if sess.ctx.Err() != nil {
			return
		}

		if unit.BusFault != nil {
			m.sink.EmitError(domain.ErrorEvent{Message: "CAN error frame: " + unit.BusFault.String()})
			continue
		}
		m.sink.EmitFrame(domain.NewFrameEvent(sess.iface, unit.Frame, time.Now()))
	}
}

// discard frees the slot for a session whose dial never produced a worker.
func (m *SessionManager) discard(sess *session) {
	sess.cancel()
	close(sess.done)
	m.clearIfCurrent(sess)
}

// clearIfCurrent empties the slot only when it still holds sess, so a slow
// worker exit cannot clear a newer session installed after a Stop/Start.
func (m *SessionManager) clearIfCurrent(sess *session) {
	m.mu.Lock()
	if m.session == sess {
		m.session = nil
	}
	m.mu.Unlock()
}
