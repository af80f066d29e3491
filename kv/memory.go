package kv

import (
	"context"
	"sync"
)

// MemoryStorage is an in-process Storage. A positive quota bounds the total
// size of stored keys and values in bytes, the way browser storage does.
type MemoryStorage struct {
	mu        sync.Mutex
	data      map[string]string
	quota     int
	used      int
	failWrite error
	failRead  error
}

// NewMemoryStorage returns an empty store. quota <= 0 disables the limit.
func NewMemoryStorage(quota int) *MemoryStorage {
	return &MemoryStorage{
		data:  make(map[string]string),
		quota: quota,
	}
}

// Get returns the value for key, or ok=false when it is absent.
func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead != nil {
		return "", false, m.failRead
	}
	v, ok := m.data[key]
	return v, ok, nil
}

// SetMany writes every value or none of them.
func (m *MemoryStorage) SetMany(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}

	next := m.used
	for k, v := range values {
		if old, ok := m.data[k]; ok {
			next -= len(k) + len(old)
		}
		next += len(k) + len(v)
	}
	if m.quota > 0 && next > m.quota {
		return ErrQuotaExceeded
	}

	for k, v := range values {
		m.data[k] = v
	}
	m.used = next
	return nil
}

// Delete removes keys. Absent keys are ignored.
func (m *MemoryStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}
	for _, k := range keys {
		if old, ok := m.data[k]; ok {
			m.used -= len(k) + len(old)
			delete(m.data, k)
		}
	}
	return nil
}

// FailWrites makes every subsequent SetMany and Delete return err.
// A nil err restores normal behaviour.
func (m *MemoryStorage) FailWrites(err error) {
	m.mu.Lock()
	m.failWrite = err
	m.mu.Unlock()
}

// FailReads makes every subsequent Get return err.
func (m *MemoryStorage) FailReads(err error) {
	m.mu.Lock()
	m.failRead = err
	m.mu.Unlock()
}

// Put writes a raw value, bypassing quota and failure injection.
func (m *MemoryStorage) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.data[key]; ok {
		m.used -= len(key) + len(old)
	}
	m.data[key] = value
	m.used += len(key) + len(value)
}

// Len returns the number of stored keys.
func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
