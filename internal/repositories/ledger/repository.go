// Package ledger records what each run wrote so later runs can skip records
// whose input has not changed.
package ledger

//go:generate mockgen -destination=mock/mock_repository.go -package=ledgermock github.com/KirkDiggler/rpg-statblocks/internal/repositories/ledger Repository

import (
	"context"
	"time"
)

// Repository defines the interface for run ledger persistence
type Repository interface {
	// Get retrieves the entry for a record
	// Returns errors.InvalidArgument for an empty category or name
	// Returns errors.NotFound if the record was never written
	// Returns errors.Internal for storage failures
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Put creates or replaces the entry for a record
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.Internal for storage failures
	Put(ctx context.Context, input *PutInput) (*PutOutput, error)

	// Delete removes the entry for a record
	// Returns errors.NotFound if no entry exists
	// Returns errors.Internal for storage failures
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}

// Entry is what the ledger knows about one written record
type Entry struct {
	Category   string    `json:"category"`
	Name       string    `json:"name"`
	Hash       string    `json:"hash"`
	OutputPath string    `json:"output_path"`
	BatchID    string    `json:"batch_id"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GetInput defines the input for getting an entry
type GetInput struct {
	Category string
	Name     string
}

// GetOutput defines the output for getting an entry
type GetOutput struct {
	Entry *Entry
}

// PutInput defines the input for storing an entry
type PutInput struct {
	Entry *Entry
}

// PutOutput defines the output for storing an entry
type PutOutput struct {
	Entry *Entry
}

// DeleteInput defines the input for deleting an entry
type DeleteInput struct {
	Category string
	Name     string
}

// DeleteOutput defines the output for deleting an entry
type DeleteOutput struct{}
