// Package socketcan binds the session core to the kernel's SocketCAN
// interface through go.einride.tech/can.
package socketcan

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"

	"github.com/canbridge/canbridge/internal/core"
	"github.com/canbridge/canbridge/internal/domain"
)

// Transport implements core.Transport over raw CAN sockets.
type Transport struct{}

func New() *Transport {
	return &Transport{}
}

func (*Transport) Dial(ctx context.Context, ifname string) (core.Conn, error) {
	c, err := socketcan.DialContext(ctx, "can", ifname)
	if err != nil {
		return nil, err
	}
	return &busConn{
		conn: c,
		rx:   socketcan.NewReceiver(c),
		tx:   socketcan.NewTransmitter(c),
	}, nil
}

// busConn adapts one dialed socket to the core.Conn contract.
type busConn struct {
	conn net.Conn
	rx   *socketcan.Receiver
	tx   *socketcan.Transmitter

	closeOnce sync.Once
	closeErr  error
}

func (c *busConn) Next() (core.Unit, error) {
	if !c.rx.Receive() {
		if err := c.rx.Err(); err != nil {
			return core.Unit{}, err
		}
		return core.Unit{}, io.EOF
	}

	if c.rx.HasErrorFrame() {
		ef := c.rx.ErrorFrame()
		return core.Unit{BusFault: &domain.BusFault{
			Class:       fmt.Sprint(ef.ErrorClass),
			Controller:  fmt.Sprint(ef.ControllerError),
			Protocol:    fmt.Sprint(ef.ProtocolError),
			Location:    fmt.Sprint(ef.ProtocolViolationErrorLocation),
			Transceiver: fmt.Sprint(ef.TransceiverError),
		}}, nil
	}

	f := c.rx.Frame()
	unit := core.Unit{Frame: domain.Frame{
		ID:       f.ID,
		Extended: f.IsExtended,
		Remote:   f.IsRemote,
		Length:   f.Length,
	}}
	copy(unit.Frame.Data[:], f.Data[:])
	return unit, nil
}

func (c *busConn) Send(ctx context.Context, f domain.Frame) error {
	var d can.Data
	copy(d[:], f.Data[:])
	return c.tx.TransmitFrame(ctx, can.Frame{
		ID:         f.ID,
		Length:     f.Length,
		Data:       d,
		IsExtended: f.Extended,
		IsRemote:   f.Remote,
	})
}

func (c *busConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
