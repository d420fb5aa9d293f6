package ledger

import (
	"context"
	"sync"

	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/pkg/clock"
)

var _ Repository = (*InMemoryRepository)(nil)

// InMemoryRepository implements Repository using in-memory storage. It lives
// for one process, so it only deduplicates within a run.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store map[string]Entry
	clock clock.Clock
}

// NewInMemory creates a new in-memory repository
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{
		store: make(map[string]Entry),
		clock: clock.New(),
	}
}

// Get retrieves an entry
func (r *InMemoryRepository) Get(_ context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateKey(input.Category, input.Name); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.store[ledgerKey(input.Category, input.Name)]
	if !exists {
		return nil, errors.NotFoundf("no ledger entry for %s %s", input.Category, input.Name)
	}

	return &GetOutput{Entry: &entry}, nil
}

// Put stores an entry
func (r *InMemoryRepository) Put(_ context.Context, input *PutInput) (*PutOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateEntry(input.Entry); err != nil {
		return nil, err
	}

	entry := *input.Entry
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = r.clock.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[ledgerKey(entry.Category, entry.Name)] = entry

	return &PutOutput{Entry: &entry}, nil
}

// Delete removes an entry
func (r *InMemoryRepository) Delete(_ context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateKey(input.Category, input.Name); err != nil {
		return nil, err
	}

	key := ledgerKey(input.Category, input.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[key]; !exists {
		return nil, errors.NotFoundf("no ledger entry for %s %s", input.Category, input.Name)
	}
	delete(r.store, key)

	return &DeleteOutput{}, nil
}

// Len returns the number of stored entries
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store)
}
