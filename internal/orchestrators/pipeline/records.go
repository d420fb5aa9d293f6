package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments"
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

var nameReplacer = strings.NewReplacer(
	`"`, "`",
	"/", "-",
	`\`, "-",
	":", "-",
	"*", "-",
	"?", "-",
	"<", "-",
	">", "-",
	"|", "-",
)

// SanitizeName makes a record name safe to use as a file name.
func SanitizeName(name string) string {
	return nameReplacer.Replace(name)
}

// unwrap returns the record array of a document. The root is either the
// array itself or an object holding exactly one array-valued field.
func unwrap(document []byte) (*tree.Array, error) {
	root, err := tree.ParseJSON(document)
	if err != nil {
		return nil, err
	}

	switch v := root.(type) {
	case *tree.Array:
		return v, nil
	case *tree.Object:
		var (
			found *tree.Array
			keys  []string
		)
		v.Each(func(key string, value tree.Value) {
			if arr, ok := value.(*tree.Array); ok {
				found = arr
				keys = append(keys, key)
			}
		})
		if len(keys) != 1 {
			return nil, errors.InvalidArgumentf("document root must hold exactly one record array, found %d", len(keys)).
				WithMeta("fields", keys)
		}
		return found, nil
	}

	return nil, errors.InvalidArgumentf("document root must be an array or an object, got %s", root.Kind())
}

// loadRecords resolves every record's display name. Entries that are not
// objects come back as failed results.
func loadRecords(category string, items *tree.Array) ([]*Record, map[int]Result) {
	records := make([]*Record, 0, items.Len())
	failed := make(map[int]Result)

	for i, item := range items.Items() {
		obj, err := tree.AsObject(item)
		if err != nil {
			failed[i] = Result{
				Index: i,
				Name:  strconv.Itoa(i),
				Stage: StageFailed,
				Err:   errors.Wrap(err, "record is not an object").WithMeta("stage", string(StageLoaded)),
			}
			continue
		}
		records = append(records, &Record{
			Index:    i,
			Name:     displayName(category, obj, i),
			Category: category,
			Tree:     obj,
		})
	}

	return records, failed
}

func displayName(category string, rec *tree.Object, index int) string {
	fallback := strconv.Itoa(index)

	name, ok, err := rec.StringField("name")
	if err != nil || !ok || name == "" {
		adjustments.Warn(category, fallback, "Record has no name property, using its index")
		return fallback
	}
	return SanitizeName(name)
}

// supersededIndexes marks every record that shares its name with a later
// record. The record with the highest index wins.
func supersededIndexes(records []*Record) map[int]bool {
	winner := make(map[string]int, len(records))
	for _, rec := range records {
		winner[rec.Name] = rec.Index
	}

	superseded := make(map[int]bool)
	for _, rec := range records {
		if winner[rec.Name] != rec.Index {
			superseded[rec.Index] = true
		}
	}
	return superseded
}

// hashRecord fingerprints the raw record for the ledger.
func hashRecord(rec *tree.Object) (string, error) {
	data, err := rec.MarshalJSON()
	if err != nil {
		return "", errors.Wrap(err, "failed to encode record")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
