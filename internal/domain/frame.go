// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"fmt"
)

const (
	MaxPayloadLen = 8
	MaxStandardID = 0x7FF      // 11-bit identifier space
	MaxExtendedID = 0x1FFFFFFF // 29-bit identifier space
)

var (
	ErrPayloadTooLong = errors.New("payload exceeds 8 bytes")
	ErrIDOutOfRange   = errors.New("identifier out of range")
)

// Frame is a single CAN message. Length always equals the number of
// meaningful bytes in Data.
type Frame struct {
	ID       uint32
	Extended bool
	Remote   bool
	Length   uint8
	Data     [MaxPayloadLen]byte
}

// NewFrame builds a validated data frame from raw send parameters.
func NewFrame(id uint32, payload []byte, extended bool) (Frame, error) {
	if len(payload) > MaxPayloadLen {
		return Frame{}, fmt.Errorf("%w: got %d", ErrPayloadTooLong, len(payload))
	}
	f := Frame{
		ID:       id,
		Extended: extended,
		Length:   uint8(len(payload)),
	}
	copy(f.Data[:], payload)
	if err := f.Validate(); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// Validate checks the identifier width against the extended flag.
func (f Frame) Validate() error {
	max := uint32(MaxStandardID)
	if f.Extended {
		max = MaxExtendedID
	}
	if f.ID > max {
		return fmt.Errorf("%w: 0x%X (extended=%t)", ErrIDOutOfRange, f.ID, f.Extended)
	}
	if int(f.Length) > MaxPayloadLen {
		return fmt.Errorf("%w: length %d", ErrPayloadTooLong, f.Length)
	}
	return nil
}

// Payload returns the meaningful prefix of Data.
func (f Frame) Payload() []byte {
	return f.Data[:f.Length]
}
