package adjustments

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

// PrivatePrefix marks source fields that are never rendered.
const PrivatePrefix = "_"

// FilterFields removes private fields and every key in deny. It returns the
// removed keys in their original order.
func FilterFields(rec *tree.Object, deny ...string) []string {
	denied := make(map[string]struct{}, len(deny))
	for _, key := range deny {
		denied[key] = struct{}{}
	}
	return rec.RemoveIf(func(key string) bool {
		if strings.HasPrefix(key, PrivatePrefix) {
			return true
		}
		_, ok := denied[key]
		return ok
	})
}

// RemoveFields removes each key that is present.
func RemoveFields(rec *tree.Object, keys ...string) {
	for _, key := range keys {
		rec.Remove(key)
	}
}

// JoinField replaces an array field with its items' text joined by sep.
// An absent field is left alone; a present field that is not an array fails.
func JoinField(rec *tree.Object, key, sep string) error {
	arr, ok, err := rec.ArrayField(key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	rec.SetString(key, strings.Join(arr.Texts(), sep))
	return nil
}

// LinkField replaces an array of objects with their "name" values as links
// joined by ", ". Items without a name are skipped.
func LinkField(rec *tree.Object, key string) error {
	arr, ok, err := rec.ArrayField(key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	links := make([]string, 0, arr.Len())
	for _, item := range arr.Items() {
		obj, err := tree.AsObject(item)
		if err != nil {
			return errors.Wrapf(err, "%s entry", key).WithMeta("field", key)
		}
		name, ok, err := obj.StringField("name")
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		links = append(links, Link(name))
	}
	rec.SetString(key, strings.Join(links, ", "))
	return nil
}

// RequireString returns a string field that the caller cannot proceed
// without.
func RequireString(rec *tree.Object, key string) (string, error) {
	value, ok, err := rec.StringField(key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.MissingRequiredField(key)
	}
	return value, nil
}

// Link wraps target in link markup.
func Link(target string) string {
	return "[[" + target + "]]"
}

// UpperFirst upper-cases the first letter and leaves the rest unchanged.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Ordinal returns "1st", "2nd", "3rd", "4th" and so on. Teens take "th".
func Ordinal(n int64) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.FormatInt(n, 10) + suffix
}

// FirstObject returns the first element of an array field as an object. The
// boolean is false when the field is absent or the array is empty.
func FirstObject(rec *tree.Object, key string) (*tree.Object, bool, error) {
	arr, ok, err := rec.ArrayField(key)
	if err != nil || !ok {
		return nil, false, err
	}
	first, ok := arr.First()
	if !ok {
		return nil, false, nil
	}
	obj, err := tree.AsObject(first)
	if err != nil {
		return nil, true, errors.Wrapf(err, "first %s entry", key).WithMeta("field", key)
	}
	return obj, true, nil
}
