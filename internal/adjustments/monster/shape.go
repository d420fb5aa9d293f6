package monster

import (
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments"
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/lookup"
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

var abilityFields = []string{"str", "dex", "con", "int", "wis", "cha"}

// speedModes are rendered after walk in this order.
var speedModes = []string{"fly", "swim", "climb", "burrow"}

// modifierFields may hold nested {<field>: [...], note} groups.
var modifierFields = []string{"resist", "immune", "vulnerable", "conditionImmune"}

// splitSpecialAC turns {special: "17 (natural armor)"} into
// {ac: 17, special: "(natural armor)"}.
func (s *Strategy) splitSpecialAC(rec *tree.Object, name string) error {
	first, ok, err := adjustments.FirstObject(rec, "ac")
	if err != nil {
		if errors.IsShapeMismatch(err) {
			// Scalar entries carry no special text.
			return nil
		}
		return err
	}
	if !ok {
		return nil
	}

	special, ok, err := first.StringField("special")
	if err != nil || !ok {
		return err
	}

	digits := 0
	for digits < len(special) && special[digits] >= '0' && special[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		adjustments.Warn(s.Category(), name, "Special AC has no value")
		return nil
	}

	ac, err := strconv.ParseInt(special[:digits], 10, 64)
	if err != nil {
		return errors.Wrap(err, "special AC value")
	}
	rest := special[digits:]
	if open := strings.Index(rest, "("); open >= 0 {
		rest = rest[open:]
	}

	first.Set("ac", tree.Int(ac))
	if rest = strings.TrimSpace(rest); rest != "" {
		first.SetString("special", rest)
	} else {
		first.Remove("special")
	}
	return nil
}

// describeTraits replaces each trait's entries with a single desc string.
func describeTraits(rec *tree.Object, block string) error {
	traits, ok, err := rec.ArrayField(block)
	if err != nil || !ok {
		return err
	}

	for _, item := range traits.Items() {
		trait, err := tree.AsObject(item)
		if err != nil {
			return err
		}
		entries, ok, err := trait.ArrayField("entries")
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		parts := make([]string, 0, entries.Len())
		for _, entry := range entries.Items() {
			if entry.Kind().IsScalar() {
				parts = append(parts, strings.TrimSpace(tree.Text(entry)))
				continue
			}
			list, err := tree.AsObject(entry)
			if err != nil {
				return err
			}
			lines, err := listItems(list)
			if err != nil {
				return err
			}
			parts = append(parts, lines...)
		}

		trait.Rename("entries", "desc")
		trait.SetString("desc", strings.Join(parts, " "))
	}
	return nil
}

// listItems renders a list entry's items as "Name: entry" or plain text.
func listItems(list *tree.Object) ([]string, error) {
	items, ok, err := list.ArrayField("items")
	if err != nil || !ok {
		return nil, err
	}

	lines := make([]string, 0, items.Len())
	for _, item := range items.Items() {
		if item.Kind().IsScalar() {
			lines = append(lines, tree.Text(item))
			continue
		}
		obj, err := tree.AsObject(item)
		if err != nil {
			return nil, err
		}
		itemName, hasName, err := obj.StringField("name")
		if err != nil {
			return nil, err
		}
		entry, hasEntry, err := obj.StringField("entry")
		if err != nil {
			return nil, err
		}
		if hasName && hasEntry {
			lines = append(lines, itemName+": "+entry)
		}
	}
	return lines, nil
}

func (s *Strategy) flattenSize(rec *tree.Object, name string) error {
	v, ok := rec.Get("size")
	if !ok {
		adjustments.Warn(s.Category(), name, "No size found")
		return nil
	}

	var codes []string
	if v.Kind() == tree.KindString {
		codes = []string{tree.Text(v)}
	} else {
		sizes, err := tree.AsArray(v)
		if err != nil {
			return errors.Wrap(err, "size").WithMeta("field", "size")
		}
		codes = sizes.Texts()
	}

	names := make([]string, len(codes))
	for i, code := range codes {
		size, err := lookup.Sizes.Resolve(code)
		if err != nil {
			return err
		}
		names[i] = size
	}
	rec.SetString("size", strings.Join(names, " "))
	return nil
}

// flattenAlignment renders ["L","E"] as "Lawful Evil" and alternatives such
// as [{alignment:["C","G"]},{alignment:["N","E"]}] as
// "Chaotic Good | Neutral Evil". Codes outside the table pass through.
func (s *Strategy) flattenAlignment(rec *tree.Object, name string) error {
	alignments, ok, err := rec.ArrayField("alignment")
	if err != nil {
		return err
	}
	if !ok {
		adjustments.Warn(s.Category(), name, "Monster has no alignment")
		return nil
	}

	var words []string
	previousGroup := false
	for _, item := range alignments.Items() {
		if item.Kind().IsScalar() {
			words = append(words, alignmentName(tree.Text(item)))
			previousGroup = false
			continue
		}

		group, err := tree.AsObject(item)
		if err != nil {
			return errors.Wrap(err, "alignment entry").WithMeta("field", "alignment")
		}

		var groupWords []string
		if inner, ok, err := group.ArrayField("alignment"); err != nil {
			return err
		} else if ok {
			for _, code := range inner.Texts() {
				groupWords = append(groupWords, alignmentName(code))
			}
		} else if special, ok, err := group.StringField("special"); err != nil {
			return err
		} else if ok {
			groupWords = []string{special}
		} else {
			adjustments.Warn(s.Category(), name, "Monster has no inner alignment")
			return nil
		}

		if previousGroup {
			words = append(words, "|")
		}
		words = append(words, groupWords...)
		previousGroup = true
	}

	rec.SetString("alignment", strings.Join(words, " "))
	return nil
}

func alignmentName(code string) string {
	if display, ok := lookup.Alignments.Lookup(code); ok {
		return display
	}
	return code
}

// flattenAC renders [12] as "12" and [{ac: 15, from: ["natural armor"]}] as
// "15 (natural armor)". Only the first entry is used.
func (s *Strategy) flattenAC(rec *tree.Object, name string) error {
	v, ok := rec.Get("ac")
	if !ok {
		adjustments.Warn(s.Category(), name, "No AC property found")
		return nil
	}
	if v.Kind().IsScalar() {
		rec.SetString("ac", tree.Text(v))
		return nil
	}

	acs, err := tree.AsArray(v)
	if err != nil {
		return errors.Wrap(err, "ac").WithMeta("field", "ac")
	}
	first, ok := acs.First()
	if !ok {
		adjustments.Warn(s.Category(), name, "AC is empty")
		return nil
	}

	switch first.Kind() {
	case tree.KindInt, tree.KindFloat, tree.KindString:
		rec.SetString("ac", tree.Text(first))
		return nil
	case tree.KindObject:
	default:
		adjustments.Warn(s.Category(), name, "Unknown AC type")
		return nil
	}

	entry, _ := tree.AsObject(first)
	value, ok, err := entry.IntField("ac")
	if err != nil {
		return err
	}
	if !ok {
		adjustments.Warn(s.Category(), name, "Inner AC does not have an 'ac' property")
		return nil
	}

	parts := []string{strconv.FormatInt(value, 10)}
	from, ok, err := entry.ArrayField("from")
	if err != nil {
		return err
	}
	if ok && from.Len() > 0 {
		parts = append(parts, "("+strings.Join(from.Texts(), ", ")+")")
	}
	for _, key := range []string{"special", "condition"} {
		text, ok, err := entry.StringField(key)
		if err != nil {
			return err
		}
		if ok && text != "" {
			parts = append(parts, text)
		}
	}

	rec.SetString("ac", strings.Join(parts, " "))
	return nil
}

// flattenHP sets hp to the average and hit_dice to the formula. A special
// hp is kept as a number when it parses as one.
func (s *Strategy) flattenHP(rec *tree.Object, name string) error {
	v, ok := rec.Get("hp")
	if !ok {
		adjustments.Warn(s.Category(), name, "No hp property found")
		return nil
	}
	if v.Kind().IsScalar() {
		return nil
	}
	hp, err := tree.AsObject(v)
	if err != nil {
		return errors.Wrap(err, "hp").WithMeta("field", "hp")
	}

	if special, ok := hp.Get("special"); ok {
		text := tree.Text(special)
		if n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64); err == nil {
			rec.Set("hp", tree.Int(n))
			return nil
		}
		rec.SetString("hp", text)
		return nil
	}

	average, ok, err := hp.IntField("average")
	if err != nil {
		return err
	}
	if !ok {
		adjustments.Warn(s.Category(), name, "Hp has no average")
		return nil
	}
	formula, ok, err := hp.StringField("formula")
	if err != nil {
		return err
	}
	if !ok {
		adjustments.Warn(s.Category(), name, "Hp has no formula")
		return nil
	}

	rec.Set("hp", tree.Int(average))
	rec.SetString("hit_dice", formula)
	return nil
}

// flattenSpeed renders "30 ft., fly 60 ft. (hover), swim 30 ft.".
func (s *Strategy) flattenSpeed(rec *tree.Object, name string) error {
	v, ok := rec.Get("speed")
	if !ok {
		adjustments.Warn(s.Category(), name, "No speed property found")
		return nil
	}
	if v.Kind().IsScalar() {
		rec.SetString("speed", tree.Text(v)+" ft.")
		return nil
	}
	speed, err := tree.AsObject(v)
	if err != nil {
		return errors.Wrap(err, "speed").WithMeta("field", "speed")
	}

	var parts []string
	if walk, ok := speed.Get("walk"); ok {
		text, err := speedText(walk)
		if err != nil {
			return errors.Wrap(err, "walk speed")
		}
		parts = append(parts, text)
	}
	for _, mode := range speedModes {
		value, ok := speed.Get(mode)
		if !ok {
			continue
		}
		text, err := speedText(value)
		if err != nil {
			return errors.Wrapf(err, "%s speed", mode)
		}
		parts = append(parts, mode+" "+text)
	}

	rec.SetString("speed", strings.Join(parts, ", "))
	return nil
}

// speedText renders 30 as "30 ft." and {number: 30, condition: "(hover)"}
// as "30 ft. (hover)".
func speedText(v tree.Value) (string, error) {
	if v.Kind() == tree.KindBool {
		return "equal to walking speed", nil
	}
	if v.Kind().IsScalar() {
		return tree.Text(v) + " ft.", nil
	}
	obj, err := tree.AsObject(v)
	if err != nil {
		return "", err
	}
	number, ok, err := obj.IntField("number")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.MissingRequiredField("number")
	}
	text := strconv.FormatInt(number, 10) + " ft."
	condition, ok, err := obj.StringField("condition")
	if err != nil {
		return "", err
	}
	if ok {
		text += " " + condition
	}
	return text, nil
}

func flattenSummonedBySpell(rec *tree.Object, _ string) error {
	spell, ok, err := rec.StringField("summonedBySpell")
	if err != nil || !ok {
		return err
	}
	spell, _, _ = strings.Cut(spell, "|")
	rec.SetString("summonedBySpell", adjustments.Link(spell))
	return nil
}

// flattenStats moves the six ability scores into a stats array.
func (s *Strategy) flattenStats(rec *tree.Object, name string) error {
	stats := tree.NewArray()
	for _, ability := range abilityFields {
		score, ok := rec.Get(ability)
		if !ok {
			adjustments.Warn(s.Category(), name, "No '"+ability+"' property on monster")
			return nil
		}
		stats.Append(score)
	}

	adjustments.RemoveFields(rec, abilityFields...)
	rec.Set("stats", stats)
	return nil
}

// flattenSaves renames save keys to ability names.
func flattenSaves(rec *tree.Object, _ string) error {
	saves, ok, err := rec.ObjectField("save")
	if err != nil || !ok {
		return err
	}
	for _, key := range saves.Keys() {
		ability, err := lookup.Abilities.Resolve(key)
		if err != nil {
			return err
		}
		saves.Rename(key, ability)
	}
	return nil
}

// flattenModifiers joins damage and condition modifier lists. Nested groups
// render as "fire, cold from nonmagical attacks".
func flattenModifiers(rec *tree.Object, _ string) error {
	for _, field := range modifierFields {
		list, ok, err := rec.ArrayField(field)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		// Groups follow the plain entries, last group first.
		ordered := tree.NewArray()
		var groups []tree.Value
		for _, item := range list.Items() {
			if item.Kind() != tree.KindObject {
				ordered.Append(item)
				continue
			}
			group, _ := tree.AsObject(item)
			text, ok, err := nestedModifier(group, field)
			if err != nil {
				return errors.Wrapf(err, "%s entry", field).WithMeta("field", field)
			}
			if !ok {
				ordered.Append(item)
				continue
			}
			groups = append(groups, tree.String(text))
		}
		for i := len(groups) - 1; i >= 0; i-- {
			ordered.Append(groups[i])
		}
		rec.Set(field, ordered)
		if err := adjustments.JoinField(rec, field, ", "); err != nil {
			return err
		}
	}
	return adjustments.JoinField(rec, "languages", ", ")
}

func nestedModifier(group *tree.Object, field string) (string, bool, error) {
	if special, ok, err := group.StringField("special"); err != nil || ok {
		return special, ok, err
	}

	nested, ok, err := group.ArrayField(field)
	if err != nil || !ok {
		return "", false, err
	}
	for i, item := range nested.Items() {
		if item.Kind() != tree.KindObject {
			continue
		}
		inner, _ := tree.AsObject(item)
		text, ok, err := nestedModifier(inner, field)
		if err != nil {
			return "", false, err
		}
		if ok {
			nested.Replace(i, tree.String(text))
		}
	}

	text := strings.Join(nested.Texts(), ", ")
	for _, key := range []string{"note", "preNote"} {
		note, ok, err := group.StringField(key)
		if err != nil {
			return "", false, err
		}
		if !ok {
			continue
		}
		if key == "preNote" {
			text = note + " " + text
		} else {
			text += " " + note
		}
	}
	return text, true, nil
}

// flattenSenses puts passive Perception first and joins the rest.
func flattenSenses(rec *tree.Object, _ string) error {
	var senses []string
	if passive, ok := rec.Get("passive"); ok {
		senses = append(senses, "passive Perception "+tree.Text(passive))
		rec.Remove("passive")
	}

	list, ok, err := rec.ArrayField("senses")
	if err != nil {
		return err
	}
	if ok {
		senses = append(senses, list.Texts()...)
	}

	if len(senses) == 0 {
		return nil
	}
	rec.SetString("senses", strings.Join(senses, ", "))
	return nil
}
