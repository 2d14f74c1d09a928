package inbound

import (
	"context"

	"github.com/jonny/hookbridge/internal/domain/model"
)

// EventSource is the inbound event stream the correlation matcher consumes.
// Receive blocks until an envelope arrives or the source is closed, in which
// case it returns model.ErrDisconnected. Close is idempotent and may be called
// from any goroutine.
type EventSource interface {
	Receive(ctx context.Context) (model.Envelope, error)
	Ack(token string) error
	Close() error
}

// HookPort handles a single approval request.
type HookPort interface {
	Handle(ctx context.Context, req model.HookRequest) (model.Outcome, error)
}
