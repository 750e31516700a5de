package store

import "sync"

// Memory is an in-process Store. Nothing survives Close.
type Memory struct {
	mu       sync.RWMutex
	data     map[string]string
	used     int64
	maxBytes int64
}

// NewMemory creates an empty in-memory store. maxBytes of 0 means unlimited.
func NewMemory(maxBytes int64) *Memory {
	return &Memory{
		data:     make(map[string]string),
		maxBytes: maxBytes,
	}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used
	if old, ok := m.data[key]; ok {
		used -= entrySize(key, old)
	}
	size := used + entrySize(key, value)
	if m.maxBytes > 0 && size > m.maxBytes {
		return quotaError(key, size, m.maxBytes)
	}

	m.data[key] = value
	m.used = size
	return nil
}

// Clear removes every key
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	m.used = 0
	return nil
}

func (m *Memory) Close() error {
	return nil
}

// Len returns the number of stored keys
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
