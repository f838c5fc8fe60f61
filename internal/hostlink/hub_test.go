package hostlink

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/codeclock/internal/domain"
	"github.com/alexanderramin/codeclock/internal/health"
	"github.com/alexanderramin/codeclock/internal/testutil"
	"github.com/alexanderramin/codeclock/internal/workspace"
)

type recordingSink struct {
	mu      sync.Mutex
	signals []domain.Signal
}

func (s *recordingSink) Signal(sig domain.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = append(s.signals, sig)
}

func (s *recordingSink) snapshot() []domain.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Signal(nil), s.signals...)
}

type countingObserver struct {
	mu           sync.Mutex
	signals      int
	connected    int
	disconnected int
}

func (o *countingObserver) SignalReceived(domain.SignalKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.signals++
}

func (o *countingObserver) ClientConnected() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.connected++
}

func (o *countingObserver) ClientDisconnected() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.disconnected++
}

func startHub(t *testing.T, opts ...Option) (*Hub, *recordingSink, string) {
	t.Helper()
	sink := &recordingSink{}
	hub := NewHub(sink, testutil.DiscardLogger(), opts...)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, sink, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, hub *Hub, url string) *websocket.Conn {
	t.Helper()
	before := hub.Clients()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.Clients() == before+1 }, time.Second, 5*time.Millisecond)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Envelope{Type: msgType, Payload: raw}))
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestSignalIsResolvedAndForwarded(t *testing.T) {
	obs := &countingObserver{}
	hub, sink, url := startHub(t, WithObserver(obs))
	conn := dial(t, hub, url)

	send(t, conn, TypeSignal, SignalPayload{
		Kind: domain.SignalTextChanged,
		Workspace: workspace.Context{
			Name:       "api",
			Folders:    []workspace.Folder{{Name: "api", Path: "/src/api"}},
			ActiveFile: &workspace.File{Scheme: "file", Path: "/src/api/main.go"},
		},
	})

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	got := sink.snapshot()[0]
	assert.Equal(t, domain.SignalTextChanged, got.Kind)
	assert.Equal(t, "api", got.Project)
	assert.Equal(t, "/src/api", got.Path)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, 1, obs.signals)
	assert.Equal(t, 1, obs.connected)
}

func TestFocusFlagIsCarried(t *testing.T) {
	hub, sink, url := startHub(t)
	conn := dial(t, hub, url)

	send(t, conn, TypeSignal, SignalPayload{Kind: domain.SignalWindowFocusChanged, Focused: true})

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	got := sink.snapshot()[0]
	assert.True(t, got.Focused)
	assert.Equal(t, workspace.UnknownProject, got.Project)
}

func TestUnknownSignalKindIsRejected(t *testing.T) {
	hub, sink, url := startHub(t)
	conn := dial(t, hub, url)

	send(t, conn, TypeSignal, SignalPayload{Kind: "scrolled"})

	env := readEnvelope(t, conn)
	assert.Equal(t, TypeError, env.Type)
	var p ErrorPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Contains(t, p.Message, "scrolled")
	assert.Empty(t, sink.snapshot())
}

func TestMalformedMessageGetsError(t *testing.T) {
	hub, _, url := startHub(t)
	conn := dial(t, hub, url)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	env := readEnvelope(t, conn)
	assert.Equal(t, TypeError, env.Type)
}

func TestRemindWithoutClient(t *testing.T) {
	hub, _, _ := startHub(t)

	_, err := hub.Remind(context.Background(), health.ReminderFor(domain.ReminderEyeRest, false))
	assert.ErrorIs(t, err, ErrNoClient)
}

func TestRemindRoundTrip(t *testing.T) {
	hub, _, url := startHub(t)
	conn := dial(t, hub, url)

	type result struct {
		resp domain.ReminderResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := hub.Remind(context.Background(), health.ReminderFor(domain.ReminderStretch, true))
		done <- result{resp, err}
	}()

	env := readEnvelope(t, conn)
	require.Equal(t, TypeReminder, env.Type)
	var p ReminderPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, domain.ReminderStretch, p.Kind)
	assert.True(t, p.Modal)

	send(t, conn, TypeReminderResponse, ReminderResponsePayload{ID: p.ID, Response: domain.ResponseSnooze})

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, domain.ResponseSnooze, r.resp)
	case <-time.After(2 * time.Second):
		t.Fatal("Remind did not return")
	}
}

func TestRemindTimesOut(t *testing.T) {
	hub, _, url := startHub(t, WithReplyTimeout(20*time.Millisecond))
	conn := dial(t, hub, url)

	_, err := hub.Remind(context.Background(), health.ReminderFor(domain.ReminderBreak, false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no answer")

	// The reminder was still delivered.
	env := readEnvelope(t, conn)
	assert.Equal(t, TypeReminder, env.Type)
}

func TestUnknownResponseIsRejected(t *testing.T) {
	hub, _, url := startHub(t)
	conn := dial(t, hub, url)

	send(t, conn, TypeReminderResponse, ReminderResponsePayload{ID: "x", Response: "maybe"})

	env := readEnvelope(t, conn)
	assert.Equal(t, TypeError, env.Type)
}

func TestDisconnectIsObserved(t *testing.T) {
	obs := &countingObserver{}
	hub, _, url := startHub(t, WithObserver(obs))
	conn := dial(t, hub, url)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, 1, obs.disconnected)
}
