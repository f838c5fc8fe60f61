// Package hostlink is the websocket endpoint editor hosts connect to. Hosts
// push activity signals in; the daemon pushes health reminders out and
// waits for the answer.
package hostlink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/alexanderramin/codeclock/internal/domain"
	"github.com/alexanderramin/codeclock/internal/health"
	"github.com/alexanderramin/codeclock/internal/workspace"
)

// ErrNoClient is returned by Remind when no editor host is connected.
var ErrNoClient = errors.New("no editor host connected")

const (
	// DefaultReplyTimeout bounds how long a reminder waits for an answer.
	DefaultReplyTimeout = 10 * time.Minute

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

// SignalSink receives decoded activity signals.
type SignalSink interface {
	Signal(sig domain.Signal)
}

// Observer receives connection telemetry.
type Observer interface {
	SignalReceived(kind domain.SignalKind)
	ClientConnected()
	ClientDisconnected()
}

type noopObserver struct{}

func (noopObserver) SignalReceived(domain.SignalKind) {}
func (noopObserver) ClientConnected()                 {}
func (noopObserver) ClientDisconnected()              {}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected hosts and outstanding reminders.
type Hub struct {
	sink         SignalSink
	logger       *slog.Logger
	observer     Observer
	replyTimeout time.Duration
	upgrader     websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	pending map[string]chan domain.ReminderResponse
}

var _ health.Notifier = (*Hub)(nil)

type Option func(*Hub)

func WithObserver(o Observer) Option {
	return func(h *Hub) { h.observer = o }
}

func WithReplyTimeout(d time.Duration) Option {
	return func(h *Hub) { h.replyTimeout = d }
}

func NewHub(sink SignalSink, logger *slog.Logger, opts ...Option) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		sink:         sink,
		logger:       logger,
		observer:     noopObserver{},
		replyTimeout: DefaultReplyTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Hosts are local processes, not browsers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		pending: make(map[string]chan domain.ReminderResponse),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	go h.writeLoop(c)
	h.readLoop(c)
}

// Clients returns the number of connected hosts.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Remind sends r to every connected host and returns the first answer.
func (h *Hub) Remind(ctx context.Context, r health.Reminder) (domain.ReminderResponse, error) {
	id := uuid.NewString()
	msg, err := encode(TypeReminder, ReminderPayload{ID: id, Reminder: r})
	if err != nil {
		return "", fmt.Errorf("encoding reminder: %w", err)
	}

	reply := make(chan domain.ReminderResponse, 1)
	h.mu.Lock()
	if len(h.clients) == 0 {
		h.mu.Unlock()
		return "", ErrNoClient
	}
	h.pending[id] = reply
	for c := range h.clients {
		h.enqueueLocked(c, msg)
	}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.pending, id)
		h.mu.Unlock()
	}()

	timer := time.NewTimer(h.replyTimeout)
	defer timer.Stop()
	select {
	case resp := <-reply:
		return resp, nil
	case <-timer.C:
		return "", fmt.Errorf("reminder %s: no answer after %s", r.Kind, h.replyTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close disconnects every host.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.observer.ClientConnected()
	h.logger.Info("editor host connected", "clients", n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	n := len(h.clients)
	h.mu.Unlock()
	h.observer.ClientDisconnected()
	h.logger.Info("editor host disconnected", "clients", n)
}

// enqueueLocked drops the message for a client whose buffer is full rather
// than block the hub.
func (h *Hub) enqueueLocked(c *client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		h.logger.Warn("editor host send buffer full, dropping message")
	}
}

func (h *Hub) reply(c *client, msgType string, payload any) {
	msg, err := encode(msgType, payload)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.enqueueLocked(c, msg)
	}
}

func (h *Hub) readLoop(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("editor host read failed", "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.reply(c, TypeError, ErrorPayload{Message: "malformed message"})
			continue
		}
		if err := h.dispatch(env); err != nil {
			h.logger.Debug("rejected host message", "type", env.Type, "error", err)
			h.reply(c, TypeError, ErrorPayload{Message: err.Error()})
		}
	}
}

func (h *Hub) dispatch(env Envelope) error {
	switch env.Type {
	case TypeSignal:
		var p SignalPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("decoding signal: %w", err)
		}
		if !domain.ValidSignalKinds[p.Kind] {
			return fmt.Errorf("unknown signal kind %q", p.Kind)
		}
		project, dir := workspace.Resolve(p.Workspace)
		h.observer.SignalReceived(p.Kind)
		h.sink.Signal(domain.Signal{Kind: p.Kind, Project: project, Path: dir, Focused: p.Focused})
		return nil

	case TypeReminderResponse:
		var p ReminderResponsePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("decoding reminder response: %w", err)
		}
		switch p.Response {
		case domain.ResponseDone, domain.ResponseSnooze, domain.ResponseDismiss:
		default:
			return fmt.Errorf("unknown reminder response %q", p.Response)
		}
		h.mu.Lock()
		ch, ok := h.pending[p.ID]
		delete(h.pending, p.ID)
		h.mu.Unlock()
		if ok {
			ch <- p.Response
		}
		return nil

	default:
		return fmt.Errorf("unknown message type %q", env.Type)
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
