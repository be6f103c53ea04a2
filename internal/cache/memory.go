package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value   []byte
	expires time.Time // zero means no expiry
}

// Memory is an in-process Cache. SetUnavailable lets tests simulate a
// backend outage without a network.
type Memory struct {
	mu          sync.Mutex
	entries     map[string]memoryEntry
	now         func() time.Time
	unavailable bool
}

// NewMemory returns an empty in-memory cache. A nil now uses time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{entries: make(map[string]memoryEntry), now: now}
}

// SetUnavailable switches the simulated outage on or off.
func (m *Memory) SetUnavailable(down bool) {
	m.mu.Lock()
	m.unavailable = down
	m.mu.Unlock()
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, k)
			continue
		}
		n++
	}
	return n
}

func (m *Memory) Get(_ context.Context, key string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return Result{Status: Unavailable, Err: ErrUnavailable}
	}
	e, ok := m.entries[key]
	if !ok {
		return Result{Status: Miss}
	}
	if m.expired(e) {
		delete(m.entries, key)
		return Result{Status: Miss}
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return Result{Status: Hit, Value: out}
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return fmt.Errorf("set %s: %w", key, ErrUnavailable)
	}
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return fmt.Errorf("delete %s: %w", key, ErrUnavailable)
	}
	delete(m.entries, key)
	return nil
}

func (m *Memory) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return fmt.Errorf("delete prefix %s: %w", prefix, ErrUnavailable)
	}
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

func (m *Memory) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return ErrUnavailable
	}
	return nil
}

// expired must be called with mu held.
func (m *Memory) expired(e memoryEntry) bool {
	return !e.expires.IsZero() && !m.now().Before(e.expires)
}
