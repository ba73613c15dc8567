package telegram

import "sync"

// Registry maps application user identifiers ("@username" or a numeric
// id as text) to Telegram chat ids. It is populated when a user writes
// /start to the bot. Registration is idempotent, last write wins;
// entries are never removed.
type Registry struct {
	mu sync.RWMutex
	m  map[string]int64
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[string]int64)}
}

func (r *Registry) Register(userID string, chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[userID] = chatID
}

func (r *Registry) Resolve(userID string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chatID, ok := r.m[userID]
	return chatID, ok
}
