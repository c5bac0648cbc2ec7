package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canbridge/canbridge/internal/domain"
)

func TestHubSubscribePublish(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe()
	defer unsub()
	assert.Equal(t, 1, h.Len())

	h.EmitFrame(domain.FrameEvent{Interface: "vcan0", ID: 0x100, Timestamp: time.Now()})
	h.EmitError(domain.ErrorEvent{Message: "boom"})

	ev := <-ch
	require.Equal(t, "frame", ev.Type)
	require.NotNil(t, ev.Frame)
	assert.Equal(t, uint32(0x100), ev.Frame.ID)
	assert.Nil(t, ev.Error)

	ev = <-ch
	require.Equal(t, "error", ev.Type)
	require.NotNil(t, ev.Error)
	assert.Equal(t, "boom", ev.Error.Message)
}

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a, unsubA := h.Subscribe()
	b, unsubB := h.Subscribe()
	defer unsubA()
	defer unsubB()

	h.EmitError(domain.ErrorEvent{Message: "shared"})

	assert.Equal(t, "shared", (<-a).Error.Message)
	assert.Equal(t, "shared", (<-b).Error.Message)
}

func TestHubSlowConsumerDropped(t *testing.T) {
	h := NewHub()
	slow, unsubSlow := h.Subscribe()
	fast, unsubFast := h.Subscribe()
	defer unsubSlow()
	defer unsubFast()

	// Overflow the slow subscriber's buffer without reading it.
	for i := 0; i < subscriberBuf+10; i++ {
		h.EmitFrame(domain.FrameEvent{ID: uint32(i)})
		// Keep the fast one drained so it misses nothing.
		ev := <-fast
		assert.Equal(t, uint32(i), ev.Frame.ID)
	}

	// The slow subscriber holds a full buffer; the overflow was dropped for
	// it alone and publishing never blocked.
	assert.Equal(t, subscriberBuf, len(slow))
	ev := <-slow
	assert.Equal(t, uint32(0), ev.Frame.ID)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe()
	unsub()
	assert.Equal(t, 0, h.Len())

	_, ok := <-ch
	assert.False(t, ok, "unsubscribe must close the channel")

	// Publishing after unsubscribe must not panic.
	h.EmitError(domain.ErrorEvent{Message: "late"})
}
