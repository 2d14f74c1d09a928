package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jonny/hookbridge/internal/domain/model"
	"github.com/jonny/hookbridge/internal/domain/port/inbound"
	"github.com/jonny/hookbridge/internal/domain/port/outbound"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- fake event source ---

type fakeEvents struct {
	ch        chan model.Envelope
	closed    chan struct{}
	closeOnce sync.Once
	closes    atomic.Int32
	ackErr    error

	mu   sync.Mutex
	acks []string
}

func newFakeEvents(envs ...model.Envelope) *fakeEvents {
	f := &fakeEvents{
		ch:     make(chan model.Envelope, 64),
		closed: make(chan struct{}),
	}
	for _, e := range envs {
		f.ch <- e
	}
	return f
}

func (f *fakeEvents) Receive(ctx context.Context) (model.Envelope, error) {
	select {
	case <-f.closed:
		return model.Envelope{}, model.ErrDisconnected
	default:
	}
	select {
	case env := <-f.ch:
		return env, nil
	case <-f.closed:
		return model.Envelope{}, model.ErrDisconnected
	case <-ctx.Done():
		return model.Envelope{}, ctx.Err()
	}
}

func (f *fakeEvents) Ack(token string) error {
	f.mu.Lock()
	f.acks = append(f.acks, token)
	f.mu.Unlock()
	return f.ackErr
}

func (f *fakeEvents) Close() error {
	f.closeOnce.Do(func() {
		f.closes.Add(1)
		close(f.closed)
	})
	return nil
}

func (f *fakeEvents) ackedTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.acks...)
}

var _ inbound.EventSource = (*fakeEvents)(nil)

// --- fake messenger ---

type published struct {
	ThreadID string
	Ref      outbound.MessageRef
	Card     outbound.Card
}

type updated struct {
	Ref  outbound.MessageRef
	Card outbound.Card
}

type fakeMessenger struct {
	mu         sync.Mutex
	seq        int
	published  []published
	updates    []updated
	publishErr error
	updateErr  error
}

// msgTS returns the timestamp the fake assigns to the n-th published message
// (1-based).
func msgTS(n int) string {
	return fmt.Sprintf("1700000000.%06d", n*10)
}

func (m *fakeMessenger) Publish(_ context.Context, threadID string, card outbound.Card) (outbound.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return outbound.MessageRef{}, m.publishErr
	}
	m.seq++
	ref := outbound.MessageRef{ChannelID: "C123", Timestamp: msgTS(m.seq)}
	m.published = append(m.published, published{ThreadID: threadID, Ref: ref, Card: card})
	return ref, nil
}

func (m *fakeMessenger) Update(_ context.Context, ref outbound.MessageRef, card outbound.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, updated{Ref: ref, Card: card})
	return nil
}

func (m *fakeMessenger) lastUpdate(ts string) (outbound.Card, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.updates) - 1; i >= 0; i-- {
		if m.updates[i].Ref.Timestamp == ts {
			return m.updates[i].Card, true
		}
	}
	return nil, false
}

func (m *fakeMessenger) updateCount(ts string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.updates {
		if u.Ref.Timestamp == ts {
			n++
		}
	}
	return n
}

var _ outbound.Messenger = (*fakeMessenger)(nil)

// --- fake audit repository ---

type fakeAudits struct {
	mu   sync.Mutex
	logs []model.AuditLog
}

func (a *fakeAudits) Create(_ context.Context, log model.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return nil
}

func (a *fakeAudits) List(_ context.Context, _ outbound.AuditFilter) ([]model.AuditLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]model.AuditLog(nil), a.logs...), nil
}

var _ outbound.AuditRepository = (*fakeAudits)(nil)

// --- envelope builders ---

func press(token, messageTS, actionID, user string) model.Envelope {
	return model.Envelope{
		Kind:  model.KindAction,
		Token: token,
		Action: &model.ActionPayload{
			Actions:   []model.Action{{ActionID: actionID, Value: "v", MessageID: messageTS}},
			UserID:    user,
			MessageID: messageTS,
			ChannelID: "C123",
		},
	}
}

func reply(token, threadTS, ts, text, user string) model.Envelope {
	return model.Envelope{
		Kind:  model.KindMessage,
		Token: token,
		Message: &model.MessagePayload{
			ThreadRootID: threadTS,
			Timestamp:    ts,
			Text:         text,
			UserID:       user,
			ChannelID:    "C123",
		},
	}
}

func botReply(token, threadTS, ts, text string) model.Envelope {
	env := reply(token, threadTS, ts, text, "UBOT")
	env.Message.AuthorIsBot = true
	return env
}

var errBoom = errors.New("boom")
