package store

import "sync"

// Presence tracks the set of currently-online user ids. Events carry no
// sequence numbers, so the last observed event wins.
type Presence struct {
	mu       sync.RWMutex
	online   map[string]struct{}
	onChange []func()
}

// NewPresence creates an empty tracker.
func NewPresence() *Presence {
	return &Presence{online: make(map[string]struct{})}
}

// OnChange registers a callback fired after the set changes.
func (p *Presence) OnChange(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = append(p.onChange, fn)
}

// MarkOnline adds a user to the set. Idempotent.
func (p *Presence) MarkOnline(userID string) {
	p.mu.Lock()
	p.online[userID] = struct{}{}
	p.mu.Unlock()
	p.notify()
}

// MarkOffline removes a user from the set. Idempotent.
func (p *Presence) MarkOffline(userID string) {
	p.mu.Lock()
	delete(p.online, userID)
	p.mu.Unlock()
	p.notify()
}

// IsOnline reports membership.
func (p *Presence) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.online[userID]
	return ok
}

// Snapshot returns the current set of online user ids.
func (p *Presence) Snapshot() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.online))
	for id := range p.online {
		ids = append(ids, id)
	}
	return ids
}

// Reset replaces the whole set, e.g. from a fresh user-list fetch where
// the online flag is authoritative.
func (p *Presence) Reset(userIDs []string) {
	p.mu.Lock()
	p.online = make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		p.online[id] = struct{}{}
	}
	p.mu.Unlock()
	p.notify()
}

// Clear empties the set. Used at logout.
func (p *Presence) Clear() {
	p.Reset(nil)
}

func (p *Presence) notify() {
	p.mu.RLock()
	subs := make([]func(), len(p.onChange))
	copy(subs, p.onChange)
	p.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}
