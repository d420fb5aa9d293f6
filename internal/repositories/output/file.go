package output

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// FileConfig configures the filesystem writer
type FileConfig struct {
	Dir    string
	Ext    string
	DryRun bool
}

// Validate validates the FileConfig
func (cfg *FileConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("dir", cfg.Dir, vb)
	return vb.Build()
}

type fileWriter struct {
	dir    string
	ext    string
	dryRun bool
}

// NewFile creates a Writer backed by a directory. The directory is created
// on the first write.
func NewFile(cfg *FileConfig) (Writer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ext := cfg.Ext
	if ext == "" {
		ext = DefaultExt
	}

	return &fileWriter{
		dir:    cfg.Dir,
		ext:    ext,
		dryRun: cfg.DryRun,
	}, nil
}

func (w *fileWriter) Path(name string) string {
	return filepath.Join(w.dir, name+w.ext)
}

func (w *fileWriter) Write(ctx context.Context, input *WriteInput) (*WriteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Name == "" {
		return nil, errors.InvalidArgument("name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.GetCode(err), "write canceled")
	}

	path := w.Path(input.Name)
	content := []byte(input.Content)

	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, content) {
		return &WriteOutput{Path: path, Unchanged: true, DryRun: w.dryRun}, nil
	}

	if w.dryRun {
		slog.DebugContext(ctx, "Dry run, skipping write", "path", path)
		return &WriteOutput{Path: path, DryRun: true}, nil
	}

	if err := os.MkdirAll(w.dir, dirPerm); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", w.dir)
	}

	tmp, err := os.CreateTemp(w.dir, ".statblock-*")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create temp file in %s", w.dir)
	}
	tmpName := tmp.Name()
	defer func() {
		// Removing after a successful rename is a no-op.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return nil, errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return nil, errors.Wrapf(err, "failed to set permissions on %s", path)
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.Wrapf(err, "failed to close %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return nil, errors.Wrapf(err, "failed to replace %s", path)
	}

	return &WriteOutput{Path: path}, nil
}
