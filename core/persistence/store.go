// Package persistence defines the host-provided state store that filter values
// are saved to and restored from, together with the opaque encoding used for
// the saved blob.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/asaidimu/go-colfilter/core/filter"
	"github.com/goccy/go-json"
)

// ErrEmptyTableID is returned when a store is addressed without a table id.
var ErrEmptyTableID = errors.New("persistence: empty table id")

// Store persists the filter specs of table instances.
type Store interface {
	// Load returns the saved specs of tableID. ok is false when nothing has
	// been saved for it.
	Load(ctx context.Context, tableID string) (specs filter.Specs, ok bool, err error)
	// Save replaces the saved specs of tableID.
	Save(ctx context.Context, tableID string, specs filter.Specs) error
	// Delete forgets tableID. Deleting an unknown id is not an error.
	Delete(ctx context.Context, tableID string) error
}

// Encode serialises specs into the blob stored by a Store. Empty specs are
// omitted.
func Encode(specs filter.Specs) ([]byte, error) {
	data, err := json.Marshal(specs.Clone())
	if err != nil {
		return nil, fmt.Errorf("encoding filter state: %w", err)
	}
	return data, nil
}

// Decode is the inverse of Encode.
func Decode(data []byte) (filter.Specs, error) {
	var specs filter.Specs
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("decoding filter state: %w", err)
	}
	return specs.Clone(), nil
}

// MemoryStore is a Store kept in process memory. It holds encoded blobs so
// callers never share spec values with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Load implements Store.
func (m *MemoryStore) Load(ctx context.Context, tableID string) (filter.Specs, bool, error) {
	if tableID == "" {
		return nil, false, ErrEmptyTableID
	}
	m.mu.RLock()
	blob, ok := m.blobs[tableID]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	specs, err := Decode(blob)
	if err != nil {
		return nil, false, err
	}
	return specs, true, nil
}

// Save implements Store.
func (m *MemoryStore) Save(ctx context.Context, tableID string, specs filter.Specs) error {
	if tableID == "" {
		return ErrEmptyTableID
	}
	blob, err := Encode(specs)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[tableID] = blob
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, tableID string) error {
	if tableID == "" {
		return ErrEmptyTableID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, tableID)
	return nil
}
