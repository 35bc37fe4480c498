package storage

import "sync"

// Memory - the process-wide key/value store backing the repositories.
// Sessions are single-process and in-memory; nothing survives a restart.
type Memory struct {
	mu    sync.RWMutex
	items map[string]any
}

func NewMemory() *Memory {
	return &Memory{
		items: make(map[string]any),
	}
}

func (that *Memory) Set(key string, value any) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.items[key] = value
}

// SetIfAbsent - stores the value only when the key is free; reports whether
// the value was stored. Insert and check are a single atomic step, which is
// what makes collision-checked game codes race-free.
func (that *Memory) SetIfAbsent(key string, value any) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.items[key]; ok {
		return false
	}

	that.items[key] = value

	return true
}

func (that *Memory) Get(key string) (any, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	value, ok := that.items[key]

	return value, ok
}

func (that *Memory) Delete(key string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.items, key)
}
