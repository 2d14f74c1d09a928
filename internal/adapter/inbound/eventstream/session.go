package eventstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	slackapi "github.com/slack-go/slack"

	"github.com/jonny/hookbridge/internal/domain/model"
	"github.com/jonny/hookbridge/internal/domain/port/inbound"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteTimeout     = 5 * time.Second
	closeGracePeriod        = time.Second
)

// ControlPlane hands out fresh Socket Mode endpoints. *slack.Client
// satisfies it once created with slack.OptionAppLevelToken.
type ControlPlane interface {
	StartSocketModeContext(ctx context.Context) (*slackapi.SocketModeConnection, string, error)
}

var _ ControlPlane = (*slackapi.Client)(nil)

// ConnectionError reports a failure to establish the session: the control
// plane call, the dial, or the handshake.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("socket mode %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Config holds Session settings.
type Config struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	BotUserID        string
}

// Session owns one Socket Mode websocket. Reads are not synchronized: only
// one goroutine may call Receive at a time. Ack and Close are safe to call
// concurrently with Receive.
type Session struct {
	conn    *websocket.Conn
	decoder Decoder
	cfg     Config
	logger  *slog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

var _ inbound.EventSource = (*Session)(nil)

// Open asks the control plane for an endpoint, dials it and waits for the
// hello frame.
func Open(ctx context.Context, api ControlPlane, cfg Config, logger *slog.Logger) (*Session, error) {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaultHandshakeTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	_, url, err := api.StartSocketModeContext(ctx)
	if err != nil {
		return nil, &ConnectionError{Op: "open", Err: err}
	}
	if url == "" {
		return nil, &ConnectionError{Op: "open", Err: errors.New("control plane returned no endpoint")}
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", Err: err}
	}

	s := &Session{
		conn:    conn,
		decoder: Decoder{BotUserID: cfg.BotUserID},
		cfg:     cfg,
		logger:  logger,
		closed:  make(chan struct{}),
	}
	if err := s.handshake(); err != nil {
		_ = s.Close()
		return nil, &ConnectionError{Op: "handshake", Err: err}
	}
	logger.Debug("socket mode session established")
	return s, nil
}

func (s *Session) handshake() error {
	if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.HandshakeTimeout)); err != nil {
		return err
	}
	_, frame, err := s.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("reading hello: %w", err)
	}
	env, err := s.decoder.Decode(frame)
	if err != nil {
		return fmt.Errorf("decoding hello: %w", err)
	}
	if env.Kind != model.KindHandshake {
		return fmt.Errorf("expected hello frame, got %s", env.Kind)
	}
	return s.conn.SetReadDeadline(time.Time{})
}

// Receive blocks until the next envelope arrives. Frames that cannot be
// decoded are logged and skipped. Once the session is closed, locally or by
// a read failure, Receive returns model.ErrDisconnected. Cancelling ctx tears
// the whole session down.
func (s *Session) Receive(ctx context.Context) (model.Envelope, error) {
	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	for {
		if s.isClosed() {
			return model.Envelope{}, s.closedErr(ctx)
		}

		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if s.isClosed() {
				return model.Envelope{}, s.closedErr(ctx)
			}
			_ = s.Close()
			return model.Envelope{}, fmt.Errorf("%w: %v", model.ErrDisconnected, err)
		}

		env, err := s.decoder.Decode(frame)
		if err != nil {
			s.skip(err)
			continue
		}
		return env, nil
	}
}

func (s *Session) skip(err error) {
	if errors.Is(err, ErrUnrecognizedFrame) {
		s.logger.Debug("skipping frame", "error", err)
		return
	}
	s.logger.Warn("skipping undecodable frame", "error", err)

	var fe *FrameError
	if errors.As(err, &fe) && fe.EnvelopeID != "" {
		if ackErr := s.Ack(fe.EnvelopeID); ackErr != nil {
			s.logger.Warn("acknowledging undecodable frame", "error", ackErr)
		}
	}
}

// Ack sends the acknowledgment for an envelope.
func (s *Session) Ack(token string) error {
	data, err := EncodeAck(token)
	if err != nil {
		return fmt.Errorf("encoding ack: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.isClosed() {
		return fmt.Errorf("acknowledging envelope %s: %w", token, model.ErrDisconnected)
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
		return fmt.Errorf("acknowledging envelope %s: %w", token, err)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("acknowledging envelope %s: %w", token, err)
	}
	return nil
}

// Close shuts the socket down and unblocks a pending Receive. Only the first
// call has any effect.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGracePeriod))
		s.closeErr = s.conn.Close()
		s.logger.Debug("socket mode session closed")
	})
	return s.closeErr
}

func (s *Session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *Session) closedErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return model.ErrDisconnected
}
