// Package core defines the boundaries between the session manager and its
// collaborators: the bus transport below and the event sink above.
package core

import (
	"context"

	"github.com/canbridge/canbridge/internal/domain"
)

// Unit is one item pulled off the bus: either a data frame or an
// error-frame. BusFault is non-nil for error-frames.
type Unit struct {
	Frame    domain.Frame
	BusFault *domain.BusFault
}

// Conn is a live duplex binding to one bus interface.
// Owned by the session; the session must Close() it.
type Conn interface {
	// Next blocks until the next unit arrives. It returns io.EOF when the
	// stream ends cleanly and net.ErrClosed after Close.
	Next() (Unit, error)

	// Send transmits one frame, bounded by ctx.
	Send(ctx context.Context, f domain.Frame) error

	// Close releases the binding. Idempotent; unblocks a pending Next.
	Close() error
}

// Transport dials named bus interfaces.
type Transport interface {
	Dial(ctx context.Context, ifname string) (Conn, error)
}
