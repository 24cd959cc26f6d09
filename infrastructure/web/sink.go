package web

import (
	"context"

	"courier/domain/event"
)

// ConnSink bridges the coordinator's fan-out to one WebSocket session.
// Consume is called by the registry on delivery; the session's event pump
// takes it from there.
type ConnSink struct {
	Events chan event.DomainEvent
}

func NewConnSink(bufferSize int) *ConnSink {
	return &ConnSink{Events: make(chan event.DomainEvent, bufferSize)}
}

// Consume blocks until the session accepts the event or the caller's
// per-recipient deadline expires. A full buffer past the deadline is a
// delivery failure for this recipient only.
func (s *ConnSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
