// Package magicitem normalizes magic item and magic weapon records.
package magicitem

import (
	"strings"

	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments"
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/markup"
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

const (
	attunedSpellsIntro = "While attuned to this item you can cast the following spells:\n"
	spellsIntro        = "You can cast the following spells:\n"
)

var _ adjustments.Strategy = (*Strategy)(nil)

// Strategy is the magic item category strategy.
type Strategy struct {
	replacer *markup.Replacer
}

// New builds the magic item strategy.
func New() (*Strategy, error) {
	replacer, err := markup.NewReplacer(&markup.ReplacerConfig{
		Directives: []markup.Directive{
			{Name: "condition", Handler: markup.Link},
			{Name: "item", Handler: markup.LinkBeforePipe},
			{Name: "quickref", Handler: markup.QuickRef},
			{Name: "dice", Handler: markup.Passthrough},
			{Name: "damage", Handler: markup.Passthrough},
			{Name: "action", Handler: markup.Format("[[Actions|%s]]")},
			{Name: "spell", Handler: markup.Link},
			{Name: "skill", Handler: markup.Link},
			{Name: "note", Handler: markup.Format("Note: %s")},
			{Name: "creature", Handler: markup.Link},
		},
		Links: markup.CommonLinks(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build magic item text replacer")
	}
	return &Strategy{replacer: replacer}, nil
}

// Category implements adjustments.Strategy.
func (s *Strategy) Category() string {
	return adjustments.CategoryMagicItem
}

// PreShape consolidates properties, random properties and variants, filters
// fields and renames damage fields.
func (s *Strategy) PreShape(rec *tree.Object, name string) error {
	opts := adjustments.PropertyOptions{Magic: true}
	if err := adjustments.ConsolidateProperties(rec, s.Category(), name, opts); err != nil {
		return err
	}
	adjustments.FilterFields(rec, adjustments.ItemDenyList...)
	return adjustments.PreShapeDamage(rec, s.Category(), name)
}

// FlattenForDisplay renders the item fields for the statblock.
func (s *Strategy) FlattenForDisplay(rec *tree.Object, name string) error {
	steps := []func(*tree.Object, string) error{
		s.flattenBaseItem,
		func(rec *tree.Object, _ string) error { return adjustments.FlattenRarity(rec) },
		s.flattenAttunement,
		func(rec *tree.Object, name string) error { return adjustments.FlattenDamage(rec, s.Category(), name) },
		func(rec *tree.Object, _ string) error {
			_, err := adjustments.FlattenWeaponCategory(rec)
			return err
		},
		func(rec *tree.Object, _ string) error { return adjustments.FlattenProperties(rec) },
		s.flattenAttachedSpells,
		func(rec *tree.Object, _ string) error { return adjustments.JoinField(rec, adjustments.FieldNotes, "\n") },
	}

	for _, step := range steps {
		if err := step(rec, name); err != nil {
			return err
		}
	}

	adjustments.RemoveFields(rec, adjustments.ItemUnusedFields...)
	return nil
}

// TextReplace implements adjustments.Strategy.
func (s *Strategy) TextReplace(text, name string) (string, error) {
	return s.replacer.Replace(text, name)
}

// flattenBaseItem renders "longsword|phb" as "(longsword)".
func (s *Strategy) flattenBaseItem(rec *tree.Object, _ string) error {
	baseItem, ok, err := rec.StringField("baseItem")
	if err != nil || !ok {
		return err
	}
	baseItem, _, _ = strings.Cut(baseItem, "|")
	rec.SetString("baseItem", "("+baseItem+")")
	return nil
}

func (s *Strategy) flattenAttunement(rec *tree.Object, name string) error {
	v, ok := rec.Get("reqAttune")
	if !ok {
		return nil
	}

	text := "(requires attunement)"
	switch v.Kind() {
	case tree.KindString:
		text += " " + tree.Text(v)
	case tree.KindBool:
		if attune, _ := tree.AsBool(v); !attune {
			rec.Remove("reqAttune")
			return nil
		}
	default:
		adjustments.Warn(s.Category(), name, "Unknown attunement requirement")
	}
	rec.SetString("reqAttune", text)
	return nil
}

func (s *Strategy) flattenAttachedSpells(rec *tree.Object, _ string) error {
	spells, ok, err := rec.ArrayField("attachedSpells")
	if err != nil || !ok {
		return err
	}

	links := make([]string, 0, spells.Len())
	for _, spell := range spells.Texts() {
		spell, _, _ = strings.Cut(spell, "|")
		links = append(links, adjustments.Link(upperWords(spell)))
	}

	intro := spellsIntro
	if rec.Has("reqAttune") {
		intro = attunedSpellsIntro
	}
	rec.SetString("attachedSpells", intro+strings.Join(links, ", "))
	return nil
}

// upperWords uppercases the first letter of each space separated word and
// leaves the rest as written.
func upperWords(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		words[i] = adjustments.UpperFirst(w)
	}
	return strings.Join(words, " ")
}
