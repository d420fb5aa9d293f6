// Package assets attaches monster images that already exist on disk.
//
// An Index is opened once per run, shared read-only by every worker and
// closed by the orchestrator when the batch completes. Images are never
// downloaded.
package assets

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

// FieldImage is the record field that receives the image file name.
const FieldImage = "image"

// Extensions are checked in preference order.
var Extensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// Attacher attaches images to records.
type Attacher interface {
	Attach(rec *tree.Object, name string) bool
}

var _ Attacher = (*Index)(nil)

// Index is a snapshot of the image files in one directory.
type Index struct {
	dir string

	mu     sync.RWMutex
	files  map[string]struct{}
	closed bool
}

// Open snapshots the image file names in dir.
func Open(dir string) (*Index, error) {
	if dir == "" {
		return nil, errors.InvalidArgument("image directory is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("image directory %s does not exist", dir).WithMeta("dir", dir)
		}
		return nil, errors.Wrapf(err, "failed to read image directory %s", dir)
	}

	files := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isImage(entry.Name()) {
			continue
		}
		files[entry.Name()] = struct{}{}
	}

	slog.Debug("Opened image index", "dir", dir, "images", len(files))

	return &Index{dir: dir, files: files}, nil
}

func isImage(file string) bool {
	ext := strings.ToLower(filepath.Ext(file))
	for _, known := range Extensions {
		if ext == known {
			return true
		}
	}
	return false
}

// Dir returns the indexed directory
func (i *Index) Dir() string {
	return i.dir
}

// Len returns the number of indexed images
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.files)
}

// Lookup returns the image file for name, preferring png.
func (i *Index) Lookup(name string) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return "", false
	}
	for _, ext := range Extensions {
		file := name + ext
		if _, ok := i.files[file]; ok {
			return file, true
		}
	}
	return "", false
}

// Attach sets the image field when an image named after the record exists.
// It reports whether one was found.
func (i *Index) Attach(rec *tree.Object, name string) bool {
	file, ok := i.Lookup(name)
	if !ok {
		return false
	}
	rec.SetString(FieldImage, file)
	return true
}

// Close releases the snapshot. Lookups after Close find nothing.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.files = nil
	i.closed = true
	return nil
}
