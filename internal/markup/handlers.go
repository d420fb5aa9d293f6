package markup

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-statblocks/internal/lookup"
)

// warn logs a recoverable handler problem in the record diagnostics shape.
func warn(call Call, message string) {
	slog.Warn(fmt.Sprintf("%s. | %s", message, call.Record),
		"record", call.Record,
		"directive", call.Directive,
		"arg", call.Arg)
}

// Hit renders {@h}.
func Hit(Call) (string, error) {
	return "Hit: ", nil
}

// Attack resolves an attack type code such as "mw" or "ms,rs".
func Attack(call Call) (string, error) {
	display, err := lookup.AttackTypes.Resolve(call.Arg)
	if err != nil {
		return "", err
	}
	return display + ".", nil
}

// AttackBonus renders {@hit 5} as "+5".
func AttackBonus(call Call) (string, error) {
	bonus := strings.ReplaceAll(call.Arg, "summonSpellLevel", "summon spell level")
	return "+" + strings.TrimSpace(bonus), nil
}

// Passthrough emits the argument unchanged.
func Passthrough(call Call) (string, error) {
	return call.Arg, nil
}

// Link wraps the whole argument.
func Link(call Call) (string, error) {
	return "[[" + call.Arg + "]]", nil
}

// LinkBeforePipe wraps the argument up to the first pipe, dropping the
// source tag in {@item rope|XPHB}.
func LinkBeforePipe(call Call) (string, error) {
	target, _, _ := strings.Cut(call.Arg, "|")
	return "[[" + target + "]]", nil
}

// QuickRef links the first field and shows the last one when it is not
// already all upper case.
func QuickRef(call Call) (string, error) {
	first := strings.Index(call.Arg, "|")
	if first < 0 {
		warn(call, "Quickref has no display field")
		return "[[" + call.Arg + "]]", nil
	}
	target := call.Arg[:first]
	display := call.Arg[strings.LastIndex(call.Arg, "|")+1:]

	if strings.ToUpper(display) != display {
		return "[[" + target + "|" + display + "]]", nil
	}
	return "[[" + target + "]]", nil
}

// Status resolves a status keyword to its link.
func Status(call Call) (string, error) {
	return lookup.Statuses.Resolve(call.Arg)
}

// ScaleDamage keeps the field after the last pipe.
func ScaleDamage(call Call) (string, error) {
	return call.Arg[strings.LastIndex(call.Arg, "|")+1:], nil
}

// Book links the last field, showing the first.
func Book(call Call) (string, error) {
	first := strings.Index(call.Arg, "|")
	if first < 0 {
		warn(call, "Book reference has no section")
		return "[[" + call.Arg + "]]", nil
	}
	text := call.Arg[:first]
	section := call.Arg[strings.LastIndex(call.Arg, "|")+1:]

	if section == "Jumping" {
		section = "Movement"
	}
	return "[[" + section + "|" + text + "]]", nil
}

// Format returns a handler that substitutes the argument into layout, which
// must hold exactly one %s verb.
func Format(layout string) Handler {
	return func(call Call) (string, error) {
		return fmt.Sprintf(layout, call.Arg), nil
	}
}

// Recharge renders "(recharge 5-6)".
func Recharge(call Call) (string, error) {
	if call.Arg == "" {
		warn(call, "Recharge value is empty")
	}
	return "(recharge " + call.Arg + ")", nil
}

// Chance renders a percentage. Pair it with the "|" terminator.
func Chance(call Call) (string, error) {
	return call.Arg + "%", nil
}

// D20 renders a d20 modifier in parentheses. Values of 10 and up are
// prefixed with "+", everything else with "-".
func D20(call Call) (string, error) {
	value, err := strconv.Atoi(strings.TrimSpace(call.Arg))
	if err != nil {
		warn(call, "D20 value is not a number")
		return "(" + call.Arg + ")", nil
	}

	prefix := "-"
	if value >= 10 {
		prefix = "+"
	}
	return "(" + prefix + call.Arg + ")", nil
}
