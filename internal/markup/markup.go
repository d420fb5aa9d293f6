// Package markup rewrites serialized statblock text: it expands embedded
// {@name arg} directive tokens and wraps bare rules keywords in
// [[target|text]] link markup.
package markup

import (
	"strings"

	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
)

const (
	tokenOpen  = "{@"
	tokenClose = "}"
)

// Call is one resolved directive occurrence handed to a Handler.
type Call struct {
	Directive string
	Arg       string
	// Record is the display name of the record being expanded, for diagnostics.
	Record string
}

// Handler turns a directive argument into replacement text.
type Handler func(call Call) (string, error)

// Directive binds a token name to its handler.
type Directive struct {
	Name    string
	Handler Handler
	// Terminator ends the argument early. The replaced span still runs to
	// the closing brace. Defaults to "}".
	Terminator string
}

type edit struct {
	start, end  int
	replacement string
}

// Expand runs each directive over text in order. Every directive sees the
// output of the ones before it.
func Expand(text, record string, directives ...Directive) (string, error) {
	for _, d := range directives {
		var err error
		text, err = expandDirective(text, record, d)
		if err != nil {
			return "", err
		}
	}
	return text, nil
}

func expandDirective(text, record string, d Directive) (string, error) {
	edits, err := scan(text, record, d)
	if err != nil {
		return "", err
	}
	if len(edits) == 0 {
		return text, nil
	}
	return splice(text, edits), nil
}

// scan collects every occurrence of d without modifying text.
func scan(text, record string, d Directive) ([]edit, error) {
	head := tokenOpen + d.Name
	terminator := d.Terminator
	if terminator == "" {
		terminator = tokenClose
	}

	var edits []edit
	pos := 0
	for {
		i := strings.Index(text[pos:], head)
		if i < 0 {
			return edits, nil
		}
		start := pos + i
		after := start + len(head)

		if after >= len(text) {
			return nil, unterminated(d.Name, record, start)
		}
		// {@dice ...} is not {@d ...}
		if c := text[after]; c != ' ' && c != '}' {
			pos = after
			continue
		}

		argStart := after
		if text[after] == ' ' {
			argStart++
		}
		closing := strings.Index(text[argStart:], tokenClose)
		if closing < 0 {
			return nil, unterminated(d.Name, record, start)
		}
		end := argStart + closing + len(tokenClose)

		argEnd := argStart + closing
		if terminator != tokenClose {
			if t := strings.Index(text[argStart:argStart+closing], terminator); t >= 0 {
				argEnd = argStart + t
			}
		}

		replacement, err := d.Handler(Call{
			Directive: d.Name,
			Arg:       text[argStart:argEnd],
			Record:    record,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to expand {@%s}", d.Name).
				WithMeta("directive", d.Name).
				WithMeta("record", record)
		}

		edits = append(edits, edit{start: start, end: end, replacement: replacement})
		pos = end
	}
}

func unterminated(name, record string, offset int) error {
	return errors.InvalidArgumentf("unterminated {@%s} token", name).
		WithMeta("directive", name).
		WithMeta("record", record).
		WithMeta("offset", offset)
}

// splice applies non-overlapping edits, given in ascending order, from the
// rightmost to the leftmost so earlier offsets stay valid.
func splice(text string, edits []edit) string {
	out := []byte(text)
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		tail := append([]byte(e.replacement), out[e.end:]...)
		out = append(out[:e.start], tail...)
	}
	return string(out)
}
