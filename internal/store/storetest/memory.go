// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"strconv"
	"sync"

	"github.com/heytom-labs/heytom-healthroute/internal/store"
)

// Memory is a versioned in-memory record. Hooks let tests inject failures.
type Memory struct {
	mu      sync.Mutex
	fields  map[string]string
	version int
	exists  bool

	reads  int
	writes int

	// ReadErr, when set, is returned by every Read.
	ReadErr error
	// WriteErr, when set, is returned by every Write.
	WriteErr error
	// BeforeWrite runs before each Write is applied, outside the lock.
	BeforeWrite func()
}

// NewMemory returns an empty store with no record.
func NewMemory() *Memory {
	return &Memory{}
}

// Seed stores fields as a new version of the record.
func (m *Memory) Seed(fields map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields = copyFields(fields)
	m.version++
	m.exists = true
}

// Fields returns a copy of the stored fields.
func (m *Memory) Fields() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyFields(m.fields)
}

// Reads returns the number of Read calls.
func (m *Memory) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Writes returns the number of successful Write calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *Memory) Read(ctx context.Context) (*store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	if !m.exists {
		return nil, store.ErrNotFound
	}
	return &store.Record{Fields: copyFields(m.fields), Version: strconv.Itoa(m.version)}, nil
}

func (m *Memory) Write(ctx context.Context, rec *store.Record) error {
	if m.BeforeWrite != nil {
		m.BeforeWrite()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}

	if rec.Version == "" {
		if m.exists {
			return store.ErrConflict
		}
	} else if !m.exists || rec.Version != strconv.Itoa(m.version) {
		return store.ErrConflict
	}

	m.fields = copyFields(rec.Fields)
	m.version++
	m.exists = true
	m.writes++
	return nil
}

func (m *Memory) Close() error { return nil }

func copyFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var _ store.Store = (*Memory)(nil)
