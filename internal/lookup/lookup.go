// Package lookup holds the fixed game-rules vocabularies used to turn source
// codes into display names.
//
// Tables are built once at package initialization and are never mutated, so
// they are safe to share between workers without synchronization.
package lookup

import (
	"sort"

	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
)

// Table maps short source codes to display names.
type Table struct {
	name    string
	entries map[string]string
}

func newTable(name string, entries map[string]string) Table {
	return Table{name: name, entries: entries}
}

// Name identifies the table in errors and logs.
func (t Table) Name() string {
	return t.name
}

// Len returns the number of codes in the table.
func (t Table) Len() int {
	return len(t.entries)
}

// Resolve returns the display name for code. An unknown code is a hard
// failure: the vocabulary is closed, so a miss means malformed input.
func (t Table) Resolve(code string) (string, error) {
	display, ok := t.entries[code]
	if !ok {
		return "", errors.UnknownCodef("unknown %s code %q", t.name, code).
			WithMeta("table", t.name).
			WithMeta("code", code)
	}
	return display, nil
}

// Lookup is the non-failing probe for callers whose source vocabulary is open.
func (t Table) Lookup(code string) (string, bool) {
	display, ok := t.entries[code]
	return display, ok
}

// Codes returns the table's codes in sorted order.
func (t Table) Codes() []string {
	codes := make([]string, 0, len(t.entries))
	for code := range t.entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
