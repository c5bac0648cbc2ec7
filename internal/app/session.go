package app

import (
	"context"

	"github.com/canbridge/canbridge/internal/core"
)

// session is one exclusively-owned binding to a bus interface.
// All fields except conn are set at construction; conn is set once after a
// successful dial, before the receive worker starts. The worker reads them
// without the manager lock.
type session struct {
	iface  string
	ctx    context.Context
	cancel context.CancelFunc
	conn   core.Conn
	done   chan struct{}
}

func newSession(iface string) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		iface:  iface,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}
