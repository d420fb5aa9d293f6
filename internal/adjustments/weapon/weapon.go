// Package weapon normalizes mundane weapon records.
package weapon

import (
	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments"
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/markup"
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

var _ adjustments.Strategy = (*Strategy)(nil)

// Strategy is the weapon category strategy.
type Strategy struct {
	replacer *markup.Replacer
}

// New builds the weapon strategy.
func New() (*Strategy, error) {
	replacer, err := markup.NewReplacer(&markup.ReplacerConfig{
		Directives: []markup.Directive{
			{Name: "condition", Handler: markup.Link},
			{Name: "item", Handler: markup.LinkBeforePipe},
			{Name: "quickref", Handler: markup.QuickRef},
			{Name: "dice", Handler: markup.Format("0 (%s)")},
			{Name: "action", Handler: markup.Format("[[Actions|%s]]")},
			{Name: "note", Handler: markup.Format("Note: %s")},
		},
		Links: markup.CommonLinks(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build weapon text replacer")
	}
	return &Strategy{replacer: replacer}, nil
}

// Category implements adjustments.Strategy.
func (s *Strategy) Category() string {
	return adjustments.CategoryWeapon
}

// PreShape consolidates properties, filters fields and renames damage fields.
func (s *Strategy) PreShape(rec *tree.Object, name string) error {
	if err := adjustments.ConsolidateProperties(rec, s.Category(), name, adjustments.PropertyOptions{}); err != nil {
		return err
	}
	adjustments.FilterFields(rec, adjustments.ItemDenyList...)
	return adjustments.PreShapeDamage(rec, s.Category(), name)
}

// FlattenForDisplay renders rarity, damage, category, properties and notes.
func (s *Strategy) FlattenForDisplay(rec *tree.Object, name string) error {
	if err := adjustments.FlattenRarity(rec); err != nil {
		return err
	}
	if err := adjustments.FlattenDamage(rec, s.Category(), name); err != nil {
		return err
	}

	present, err := adjustments.FlattenWeaponCategory(rec)
	if err != nil {
		return err
	}
	if !present {
		adjustments.Warn(s.Category(), name, "No weaponCategory property")
	}

	if err := adjustments.FlattenProperties(rec); err != nil {
		return err
	}
	if err := adjustments.JoinField(rec, adjustments.FieldNotes, ", "); err != nil {
		return err
	}

	adjustments.RemoveFields(rec, adjustments.ItemUnusedFields...)
	return nil
}

// TextReplace implements adjustments.Strategy.
func (s *Strategy) TextReplace(text, name string) (string, error) {
	return s.replacer.Replace(text, name)
}
