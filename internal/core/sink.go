package core

import "github.com/canbridge/canbridge/internal/domain"

// EventSink receives normalized bus events. Delivery is fire-and-forget:
// implementations must not block the caller, and the producer makes no
// assumption about subscriber presence.
type EventSink interface {
	EmitFrame(domain.FrameEvent)
	EmitError(domain.ErrorEvent)
}
