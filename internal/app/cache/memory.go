package cache

import (
	"context"
	"sync"
	"sync/atomic"
)

type snapshot struct {
	gen     uint64
	entries map[Key]Entry
}

// Memory is an in-process Cache. Reads load an immutable snapshot without
// locking; Put and InvalidateAll copy-on-write under a mutex.
type Memory struct {
	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

func NewMemory() *Memory {
	m := &Memory{}
	m.snap.Store(&snapshot{entries: map[Key]Entry{}})
	return m
}

func (m *Memory) Generation(context.Context) (uint64, error) {
	return m.load().gen, nil
}

func (m *Memory) Get(_ context.Context, key Key) (Entry, bool, error) {
	e, ok := m.load().entries[key]
	return e, ok, nil
}

func (m *Memory) Put(_ context.Context, gen uint64, key Key, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.load()
	if cur.gen != gen {
		return nil
	}
	next := make(map[Key]Entry, len(cur.entries)+1)
	for k, v := range cur.entries {
		next[k] = v
	}
	next[key] = entry
	m.snap.Store(&snapshot{gen: cur.gen, entries: next})
	return nil
}

func (m *Memory) InvalidateAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Store(&snapshot{gen: m.load().gen + 1, entries: map[Key]Entry{}})
	return nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	return len(m.load().entries)
}

func (m *Memory) load() *snapshot {
	if s := m.snap.Load(); s != nil {
		return s
	}
	return &snapshot{}
}

var _ Cache = (*Memory)(nil)
