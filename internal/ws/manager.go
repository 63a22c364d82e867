package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"chat-client/internal/models"
	"chat-client/internal/observability"
)

// ErrNotReady is returned by Send before the server has acknowledged the
// session. Callers must not retry automatically.
var ErrNotReady = errors.New("connection not ready")

// ErrTokenExpired is surfaced through OnError when the bearer token's
// exp claim is already in the past. Dialing would only burn the retry
// budget against a server that rejects every attempt, so the manager
// goes idle instead; recovery requires a fresh token via Connect.
var ErrTokenExpired = errors.New("auth token expired")

// State tracks the connection lifecycle. A raw open socket is not enough
// to send on: the server may still reject the token, so readiness is
// two-phase (open, then CONNECTION_ESTABLISHED).
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateAwaitingAck
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAwaitingAck:
		return "awaiting_ack"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Manager owns the single websocket connection for a session: dialing,
// two-phase readiness, bounded reconnects, and event fan-out. Other
// components never touch the socket directly.
type Manager struct {
	wsURL       string
	delay       time.Duration
	maxAttempts int

	mu         sync.Mutex
	conn       *websocket.Conn
	state      State
	token      string
	attempts   int
	generation int
	info       ConnInfo

	onEvent  []func(models.Event)
	onReady  []func(userID string)
	onClosed []func()
	onError  []func(error)
}

// NewManager constructs a Manager for the given websocket URL.
// maxAttempts bounds consecutive unexpected closes before the manager
// gives up and requires an explicit Connect.
func NewManager(wsURL string, delay time.Duration, maxAttempts int) *Manager {
	return &Manager{wsURL: wsURL, delay: delay, maxAttempts: maxAttempts, state: StateIdle}
}

// OnEvent registers a subscriber for every parsed inbound event.
func (m *Manager) OnEvent(fn func(models.Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvent = append(m.onEvent, fn)
}

// OnReady registers a subscriber for session acknowledgment; the
// argument is the user id the server bound the connection to.
func (m *Manager) OnReady(fn func(userID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReady = append(m.onReady, fn)
}

// OnClosed registers a subscriber for connection loss.
func (m *Manager) OnClosed(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onClosed = append(m.onClosed, fn)
}

// OnError registers a subscriber for transport errors.
func (m *Manager) OnError(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = append(m.onError, fn)
}

// Connect opens a transport session authenticated by token. Calling
// while a previous attempt is in flight supersedes it; the retry budget
// starts fresh.
func (m *Manager) Connect(token string) {
	m.mu.Lock()
	m.token = token
	m.attempts = 0
	m.generation++
	gen := m.generation
	m.state = StateConnecting
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.mu.Unlock()

	go m.dial(gen)
}

func (m *Manager) dial(gen int) {
	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return
	}
	m.state = StateConnecting
	token := m.token
	m.mu.Unlock()

	// Fail fast on a locally-expired token: this covers both the first
	// dial and every scheduled redial, so a token that dies mid-session
	// never burns the reconnect budget.
	if tokenExpired(token, time.Now()) {
		m.mu.Lock()
		if m.generation == gen {
			m.state = StateIdle
		}
		m.mu.Unlock()
		log.Printf("ws: not dialing, token expired")
		m.notifyError(ErrTokenExpired)
		return
	}

	_, span := otel.Tracer("chat-client/ws").Start(context.Background(), "ws.connect")
	defer span.End()

	target := m.wsURL + "?token=" + url.QueryEscape(token)
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		log.Printf("ws: dial failed: %v", err)
		m.notifyError(fmt.Errorf("dial: %w", err))
		m.handleClose(gen)
		return
	}

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		_ = conn.Close()
		return
	}
	m.conn = conn
	m.state = StateAwaitingAck
	m.info = ConnInfo{ConnID: newConnID(), ConnectedAt: time.Now(), Attempt: m.attempts}
	m.mu.Unlock()

	go m.readLoop(gen, conn)
}

func (m *Manager) readLoop(gen int, conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				m.notifyError(err)
			}
			m.handleClose(gen)
			return
		}

		var evt models.Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			// Malformed frames are dropped; the connection stays open.
			log.Printf("ws: dropping malformed event: %v", err)
			continue
		}
		observability.IncWSEvent(string(evt.Type))

		if evt.Type == models.EventConnectionEstablished {
			m.mu.Lock()
			if m.generation == gen {
				m.state = StateReady
				m.attempts = 0
			}
			m.mu.Unlock()
			observability.SetWSConnected(true)
			for _, fn := range m.readySubs() {
				fn(evt.UserID)
			}
		}
		for _, fn := range m.eventSubs() {
			fn(evt)
		}
	}
}

// handleClose runs the bounded reconnect policy for unexpected closes.
// A stale generation means the manager was re-connected or shut down
// explicitly; those paths never reconnect from here.
func (m *Manager) handleClose(gen int) {
	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	m.state = StateClosed
	m.attempts++
	attempts := m.attempts
	exhausted := attempts >= m.maxAttempts
	if exhausted {
		m.state = StateIdle
	}
	m.mu.Unlock()

	observability.SetWSConnected(false)
	for _, fn := range m.closedSubs() {
		fn()
	}

	if exhausted {
		log.Printf("ws: giving up after %d consecutive failures", attempts)
		return
	}

	observability.IncWSReconnect()
	log.Printf("ws: reconnecting in %s (%d/%d)", m.delay, attempts, m.maxAttempts)
	time.AfterFunc(m.delay, func() { m.dial(gen) })
}

// Send transmits one event if and only if the session is acknowledged.
// It never buffers: a failure means the event was not sent.
func (m *Manager) Send(evt models.Event) error {
	m.mu.Lock()
	if m.state != StateReady || m.conn == nil {
		m.mu.Unlock()
		observability.IncSend("rejected")
		return ErrNotReady
	}
	err := m.conn.WriteJSON(evt)
	m.mu.Unlock()

	if err != nil {
		observability.IncSend("error")
		return fmt.Errorf("write event: %w", err)
	}
	observability.IncSend("ok")
	return nil
}

// IsReady reports whether the transport is open and acknowledged.
func (m *Manager) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateReady
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Info returns metadata for the current connection.
func (m *Manager) Info() ConnInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info
}

// Close tears the connection down for good; no reconnect is scheduled.
func (m *Manager) Close() {
	m.mu.Lock()
	m.generation++
	m.token = ""
	m.attempts = 0
	m.state = StateIdle
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.mu.Unlock()

	observability.SetWSConnected(false)
	for _, fn := range m.closedSubs() {
		fn()
	}
}

func (m *Manager) eventSubs() []func(models.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]func(models.Event), len(m.onEvent))
	copy(out, m.onEvent)
	return out
}

func (m *Manager) readySubs() []func(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]func(string), len(m.onReady))
	copy(out, m.onReady)
	return out
}

func (m *Manager) closedSubs() []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]func(), len(m.onClosed))
	copy(out, m.onClosed)
	return out
}

func (m *Manager) notifyError(err error) {
	m.mu.Lock()
	subs := make([]func(error), len(m.onError))
	copy(subs, m.onError)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(err)
	}
}
