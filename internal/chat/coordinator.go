package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"chat-client/internal/models"
	"chat-client/internal/store"
)

var (
	// ErrEmptyContent rejects sends with nothing in them.
	ErrEmptyContent = errors.New("message content is empty")
	// ErrNotConnected means the transport is not acknowledged; the draft
	// stays with the user for a manual retry.
	ErrNotConnected = errors.New("not connected")
)

// HistoryService is the slice of the REST client the coordinator needs.
type HistoryService interface {
	ChatMessages(ctx context.Context, userID string, page, size int) ([]models.Message, error)
}

// Connection is the capability the coordinator holds on the transport:
// send and teardown, never the raw socket.
type Connection interface {
	Send(evt models.Event) error
	IsReady() bool
	Close()
}

// Coordinator is the single integration point between the UI and the
// synchronization core: it routes inbound events into the cache and
// presence tracker, drives history loading, and gates outbound sends.
type Coordinator struct {
	selfID   string
	history  HistoryService
	conn     Connection
	cache    *store.Conversations
	presence *store.Presence
	pageSize int
	tracer   trace.Tracer

	mu       sync.Mutex
	active   string
	loading  map[string]bool
	onStatus func(string)

	dispatch map[models.EventType]func(models.Event)
}

// NewCoordinator wires the coordinator for one authenticated session.
// selfID is the local user's id, used to derive conversation keys.
func NewCoordinator(selfID string, history HistoryService, conn Connection, cache *store.Conversations, presence *store.Presence, pageSize int) *Coordinator {
	c := &Coordinator{
		selfID:   selfID,
		history:  history,
		conn:     conn,
		cache:    cache,
		presence: presence,
		pageSize: pageSize,
		tracer:   otel.Tracer("chat-client/chat"),
		loading:  make(map[string]bool),
	}
	c.dispatch = map[models.EventType]func(models.Event){
		models.EventNewMessage:  c.handleMessage,
		models.EventMessageSent: c.handleMessage,
		models.EventUserOnline:  c.handleOnline,
		models.EventUserOffline: c.handleOffline,
		models.EventError:       c.handleError,
	}
	return c
}

// OnStatus registers the callback used to surface non-fatal conditions
// to the UI layer.
func (c *Coordinator) OnStatus(fn func(string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStatus = fn
}

// HandleEvent routes one inbound transport event. Unrecognized kinds
// (TYPING included) are ignored, not fatal.
func (c *Coordinator) HandleEvent(evt models.Event) {
	if handler, ok := c.dispatch[evt.Type]; ok {
		handler(evt)
	}
}

func (c *Coordinator) handleMessage(evt models.Event) {
	if evt.Message == nil {
		return
	}
	c.cache.Merge(c.selfID, *evt.Message)
}

func (c *Coordinator) handleOnline(evt models.Event) {
	if evt.UserID != "" {
		c.presence.MarkOnline(evt.UserID)
	}
}

func (c *Coordinator) handleOffline(evt models.Event) {
	if evt.UserID != "" {
		c.presence.MarkOffline(evt.UserID)
	}
}

func (c *Coordinator) handleError(evt models.Event) {
	log.Printf("chat: server error event: %s", evt.Error)
	c.status("server error: " + evt.Error)
}

// Activate marks a conversation current and loads its history if the
// cache is cold. In-flight loads for other conversations keep running;
// their completion is harmless because Replace is keyed and never
// changes which conversation is active.
func (c *Coordinator) Activate(ctx context.Context, key string) {
	c.mu.Lock()
	c.active = key
	if key == "" || c.cache.Len(key) > 0 || c.loading[key] {
		c.mu.Unlock()
		return
	}
	c.loading[key] = true
	c.mu.Unlock()

	go c.loadHistory(ctx, key)
}

func (c *Coordinator) loadHistory(ctx context.Context, key string) {
	ctx, span := c.tracer.Start(ctx, "history.load")
	defer span.End()

	msgs, err := c.history.ChatMessages(ctx, key, 0, c.pageSize)

	c.mu.Lock()
	delete(c.loading, key)
	c.mu.Unlock()

	if err != nil {
		// Cache left untouched; the user can retry by re-activating.
		log.Printf("chat: history load for %s failed: %v", key, err)
		c.status("could not load history")
		return
	}
	c.cache.Replace(key, msgs)
}

// Active returns the currently selected conversation key.
func (c *Coordinator) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// SelfID returns the local user's id.
func (c *Coordinator) SelfID() string {
	return c.selfID
}

// SendMessage validates and transmits one outbound message. There is no
// optimistic cache insert: the message appears when the server echoes it
// back with its assigned id.
func (c *Coordinator) SendMessage(key, content string, msgType models.MessageType) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if !c.conn.IsReady() {
		return ErrNotConnected
	}
	return c.conn.Send(models.Event{
		Type:        models.EventSendMessage,
		Content:     content,
		ReceiverID:  key,
		MessageType: msgType,
	})
}

// Teardown closes the transport and clears presence and cache. Runs at
// logout; afterwards the coordinator is inert until a new session wires
// a fresh one.
func (c *Coordinator) Teardown() {
	c.mu.Lock()
	c.active = ""
	c.loading = make(map[string]bool)
	c.mu.Unlock()

	c.conn.Close()
	c.presence.Clear()
	c.cache.Clear()
}

func (c *Coordinator) status(msg string) {
	c.mu.Lock()
	fn := c.onStatus
	c.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}
