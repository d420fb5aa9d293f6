// Package output persists rendered documents.
package output

//go:generate mockgen -destination=mock/mock_writer.go -package=outputmock github.com/KirkDiggler/rpg-statblocks/internal/repositories/output Writer

import (
	"context"
)

// DefaultExt is appended to record names when no extension is configured.
const DefaultExt = ".md"

// Writer persists one rendered document per record
type Writer interface {
	// Write stores the document as <dir>/<name><ext>, replacing any
	// existing file.
	// Returns errors.InvalidArgument for an empty name
	// Returns errors.Internal for filesystem failures
	Write(ctx context.Context, input *WriteInput) (*WriteOutput, error)

	// Path returns where a document with this name is written
	Path(name string) string
}

// WriteInput defines the input for writing a document
type WriteInput struct {
	Name    string
	Content string
}

// WriteOutput defines the output for writing a document
type WriteOutput struct {
	Path string
	// Unchanged is true when the existing file already held Content
	Unchanged bool
	// DryRun is true when nothing was written
	DryRun bool
}
