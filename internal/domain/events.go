package domain

import (
	"fmt"
	"time"
)

// FrameEvent is the outbound notification for one received frame.
// Data is an array of byte values; JSON []byte would base64-encode.
type FrameEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Interface string    `json:"interface"`
	ID        uint32    `json:"id"`
	Extended  bool      `json:"extended"`
	Remote    bool      `json:"remote"`
	Length    uint8     `json:"length"`
	Data      []uint32  `json:"data"`
}

// NewFrameEvent snapshots a frame as seen on iface at ts.
func NewFrameEvent(iface string, f Frame, ts time.Time) FrameEvent {
	data := make([]uint32, f.Length)
	for i := 0; i < int(f.Length); i++ {
		data[i] = uint32(f.Data[i])
	}
	return FrameEvent{
		Timestamp: ts,
		Interface: iface,
		ID:        f.ID,
		Extended:  f.Extended,
		Remote:    f.Remote,
		Length:    f.Length,
		Data:      data,
	}
}

// ErrorEvent carries a human-readable transport fault description.
type ErrorEvent struct {
	Message string `json:"message"`
}

func NewErrorEvent(err error) ErrorEvent {
	return ErrorEvent{Message: err.Error()}
}

// BusFault describes an error-frame reported by the bus itself.
type BusFault struct {
	Class       string
	Controller  string
	Protocol    string
	Location    string
	Transceiver string
}

func (b BusFault) String() string {
	return fmt.Sprintf("class=%s controller=%s protocol=%s location=%s transceiver=%s",
		b.Class, b.Controller, b.Protocol, b.Location, b.Transceiver)
}
