package store

import (
	"sort"
	"sync"

	"chat-client/internal/models"
)

// ChangeKind tells subscribers what mutated a conversation. A live
// arrival (ChangeMerge) and a bulk history load (ChangeReplace) look
// very different to a UI: only the former is a new message.
type ChangeKind int

const (
	ChangeReplace ChangeKind = iota
	ChangeMerge
	ChangeUpdate
	ChangeRemove
	ChangeClear
)

// Conversations caches per-partner message lists for the current
// session. Lists are unique by message id and sorted ascending by
// timestamp; those invariants hold after every mutation.
type Conversations struct {
	mu       sync.RWMutex
	byKey    map[string][]models.Message
	onChange []func(key string, kind ChangeKind)
}

// NewConversations creates an empty cache.
func NewConversations() *Conversations {
	return &Conversations{byKey: make(map[string][]models.Message)}
}

// OnChange registers a callback fired after a conversation's list
// changes, outside the cache lock.
func (c *Conversations) OnChange(fn func(key string, kind ChangeKind)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Replace bulk-sets the list for a conversation from a history load,
// overwriting any prior content for that key.
func (c *Conversations) Replace(key string, msgs []models.Message) {
	sorted := make([]models.Message, len(msgs))
	copy(sorted, msgs)
	sortByTimestamp(sorted)

	c.mu.Lock()
	c.byKey[key] = sorted
	c.mu.Unlock()

	c.notify(key, ChangeReplace)
}

// Merge routes a live message into the conversation keyed by the other
// participant. Messages whose id is already present are dropped, which
// absorbs duplicate delivery and the overlap between a history load and
// concurrently arriving events. Returns the conversation key.
func (c *Conversations) Merge(selfID string, msg models.Message) string {
	key := ConversationKeyFor(selfID, msg)

	c.mu.Lock()
	list := c.byKey[key]
	for _, existing := range list {
		if existing.ID == msg.ID {
			c.mu.Unlock()
			return key
		}
	}
	list = append(list, msg)
	sortByTimestamp(list)
	c.byKey[key] = list
	c.mu.Unlock()

	c.notify(key, ChangeMerge)
	return key
}

// Update replaces a message in place, matched by id. Unknown ids are a
// no-op: an edit echo for a message we never cached is not worth a slot.
func (c *Conversations) Update(key string, msg models.Message) {
	c.mu.Lock()
	list := c.byKey[key]
	found := false
	for i, existing := range list {
		if existing.ID == msg.ID {
			list[i] = msg
			found = true
			break
		}
	}
	if found {
		sortByTimestamp(list)
	}
	c.mu.Unlock()
	if found {
		c.notify(key, ChangeUpdate)
	}
}

// Remove deletes a message by id from a conversation.
func (c *Conversations) Remove(key, messageID string) {
	c.mu.Lock()
	list := c.byKey[key]
	found := false
	for i, existing := range list {
		if existing.ID == messageID {
			c.byKey[key] = append(list[:i], list[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()
	if found {
		c.notify(key, ChangeRemove)
	}
}

// Get returns a copy of the ordered list for a conversation. A key with
// no entries yields an empty, non-nil slice.
func (c *Conversations) Get(key string) []models.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Message, len(c.byKey[key]))
	copy(out, c.byKey[key])
	return out
}

// Len reports the number of cached messages for a conversation.
func (c *Conversations) Len(key string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey[key])
}

// Keys lists every conversation with at least one cached message.
func (c *Conversations) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.byKey))
	for k := range c.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear drops every cached conversation. Used at logout.
func (c *Conversations) Clear() {
	c.mu.Lock()
	c.byKey = make(map[string][]models.Message)
	c.mu.Unlock()
	c.notify("", ChangeClear)
}

func (c *Conversations) notify(key string, kind ChangeKind) {
	c.mu.RLock()
	subs := make([]func(string, ChangeKind), len(c.onChange))
	copy(subs, c.onChange)
	c.mu.RUnlock()
	for _, fn := range subs {
		fn(key, kind)
	}
}

func sortByTimestamp(msgs []models.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}
