package eventstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonny/hookbridge/internal/adapter/inbound/eventstream"
	"github.com/jonny/hookbridge/internal/domain/model"
)

type fakeControlPlane struct {
	url string
	err error
}

func (f fakeControlPlane) StartSocketModeContext(context.Context) (*slackapi.SocketModeConnection, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return &slackapi.SocketModeConnection{}, f.url, nil
}

// socketServer plays the Slack side of a Socket Mode connection: it sends the
// scripted frames in order and records every ack the client writes back.
type socketServer struct {
	srv  *httptest.Server
	acks chan string
}

func newSocketServer(t *testing.T, frames ...string) *socketServer {
	t.Helper()
	s := &socketServer{acks: make(chan string, 16)}
	upgrader := websocket.Upgrader{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ack struct {
				EnvelopeID string `json:"envelope_id"`
			}
			if json.Unmarshal(data, &ack) == nil {
				s.acks <- ack.EnvelopeID
			}
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *socketServer) controlPlane() fakeControlPlane {
	return fakeControlPlane{url: "ws" + strings.TrimPrefix(s.srv.URL, "http")}
}

func (s *socketServer) nextAck(t *testing.T) string {
	t.Helper()
	select {
	case id := <-s.acks:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("no ack received")
		return ""
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openSession(t *testing.T, s *socketServer) *eventstream.Session {
	t.Helper()
	sess, err := eventstream.Open(context.Background(), s.controlPlane(), eventstream.Config{
		HandshakeTimeout: 2 * time.Second,
		BotUserID:        "UBOT",
	}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func TestOpen_ControlPlaneError(t *testing.T) {
	_, err := eventstream.Open(context.Background(), fakeControlPlane{err: errors.New("invalid_auth")}, eventstream.Config{}, testLogger())
	var ce *eventstream.ConnectionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "open", ce.Op)
}

func TestOpen_EmptyEndpoint(t *testing.T) {
	_, err := eventstream.Open(context.Background(), fakeControlPlane{}, eventstream.Config{}, testLogger())
	var ce *eventstream.ConnectionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "open", ce.Op)
}

func TestOpen_DialFailure(t *testing.T) {
	_, err := eventstream.Open(context.Background(), fakeControlPlane{url: "ws://127.0.0.1:1/link"}, eventstream.Config{
		HandshakeTimeout: time.Second,
	}, testLogger())
	var ce *eventstream.ConnectionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "dial", ce.Op)
}

func TestOpen_FirstFrameMustBeHello(t *testing.T) {
	s := newSocketServer(t, interactiveFrame("env-1", "1.0", model.ActionIDApprove, "U1"))
	_, err := eventstream.Open(context.Background(), s.controlPlane(), eventstream.Config{HandshakeTimeout: 2 * time.Second}, testLogger())
	var ce *eventstream.ConnectionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "handshake", ce.Op)
}

func TestSession_ReceiveAndAck(t *testing.T) {
	s := newSocketServer(t,
		helloFrame,
		interactiveFrame("env-1", "1700000000.000100", model.ActionIDDeny, "U1"),
		messageFrame("env-2", "1700000000.000100", "1700000000.000200", "looks risky", "U2", ""),
	)
	sess := openSession(t, s)
	ctx := context.Background()

	env, err := sess.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindAction, env.Kind)
	require.NoError(t, sess.Ack(env.Token))
	assert.Equal(t, "env-1", s.nextAck(t))

	env, err = sess.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.KindMessage, env.Kind)
	assert.Equal(t, "looks risky", env.Message.Text)
	require.NoError(t, sess.Ack(env.Token))
	assert.Equal(t, "env-2", s.nextAck(t))
}

func TestSession_MalformedFrameIsAckedAndSkipped(t *testing.T) {
	s := newSocketServer(t,
		helloFrame,
		`{"envelope_id":"env-bad","type":"interactive","payload":"oops"}`,
		`{"type":"something_new"}`,
		interactiveFrame("env-1", "1.0", model.ActionIDApprove, "U1"),
	)
	sess := openSession(t, s)

	env, err := sess.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-1", env.Token)
	assert.Equal(t, "env-bad", s.nextAck(t))
}

func TestSession_CloseUnblocksReceive(t *testing.T) {
	s := newSocketServer(t, helloFrame)
	sess := openSession(t, s)

	errc := make(chan error, 1)
	go func() {
		_, err := sess.Receive(context.Background())
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, sess.Close())
	_ = sess.Close()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, model.ErrDisconnected)
	case <-time.After(2 * time.Second):
		t.Fatal("Receive still blocked after Close")
	}

	_, err := sess.Receive(context.Background())
	assert.ErrorIs(t, err, model.ErrDisconnected)
	assert.ErrorIs(t, sess.Ack("env-1"), model.ErrDisconnected)
}

func TestSession_ContextCancelUnblocksReceive(t *testing.T) {
	s := newSocketServer(t, helloFrame)
	sess := openSession(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := sess.Receive(ctx)
		errc <- err
	}()
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Receive still blocked after cancel")
	}
}

func TestSession_PeerCloseIsDisconnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(helloFrame))
		_ = conn.Close()
	}))
	defer srv.Close()

	sess, err := eventstream.Open(context.Background(), fakeControlPlane{url: "ws" + strings.TrimPrefix(srv.URL, "http")},
		eventstream.Config{HandshakeTimeout: 2 * time.Second}, testLogger())
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.Receive(context.Background())
	assert.ErrorIs(t, err, model.ErrDisconnected)
}
