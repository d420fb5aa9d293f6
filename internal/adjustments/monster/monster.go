// Package monster normalizes bestiary records.
package monster

import (
	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments"
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/markup"
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

var denyList = []string{"hasToken", "hasFluff", "hasFluffImages", "soundClip"}

// traitBlocks hold lists of {name, entries} whose entries become desc.
var traitBlocks = []string{"trait", "action", "bonus", "reaction", "legendary"}

var conditionInflictFields = []string{"conditionInflict", "conditionInflictSpell", "conditionInflictLegendary"}

var unusedFields = []string{
	"miscTags",
	"damageTags",
	"languageTags",
	"attachedItems",
	"environment",
	"page",
	"source",
	"otherSources",
	"variant",
	"legendaryGroup",
	"dragonAge",
	"dragonCastingColor",
	"traitTags",
	"senseTags",
	"actionTags",
	"damageTagsLegendary",
	"conditionInflict",
	"conditionInflictSpell",
	"conditionInflictLegendary",
}

var _ adjustments.Strategy = (*Strategy)(nil)

// Strategy is the monster category strategy.
type Strategy struct {
	replacer *markup.Replacer
}

// New builds the monster strategy.
func New() (*Strategy, error) {
	replacer, err := markup.NewReplacer(&markup.ReplacerConfig{
		Literals: []string{"×", "*"},
		Directives: []markup.Directive{
			{Name: "h", Handler: markup.Hit},
			{Name: "atk", Handler: markup.Attack},
			{Name: "hit", Handler: markup.AttackBonus},
			{Name: "damage", Handler: markup.Passthrough},
			{Name: "status", Handler: markup.Status},
			{Name: "spell", Handler: markup.Link},
			{Name: "condition", Handler: markup.Link},
			{Name: "item", Handler: markup.LinkBeforePipe},
			{Name: "quickref", Handler: markup.QuickRef},
			{Name: "dc", Handler: markup.Format("[[Difficulty Class|DC]] %s")},
			{Name: "dice", Handler: markup.Passthrough},
			{Name: "action", Handler: markup.Format("[[Actions|%s]]")},
			{Name: "skill", Handler: markup.Link},
			{Name: "note", Handler: markup.Format("Note: %s")},
			{Name: "creature", Handler: markup.Link},
			{Name: "recharge", Handler: markup.Recharge},
		},
		Links: markup.CommonLinks(false),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build monster text replacer")
	}
	return &Strategy{replacer: replacer}, nil
}

// Category implements adjustments.Strategy.
func (s *Strategy) Category() string {
	return adjustments.CategoryMonster
}

// PreShape filters fields, gathers inflicted conditions, splits a special AC
// and turns trait entries into desc text.
func (s *Strategy) PreShape(rec *tree.Object, name string) error {
	adjustments.FilterFields(rec, denyList...)

	if err := gatherConditionInflicts(rec); err != nil {
		return err
	}
	if err := s.splitSpecialAC(rec, name); err != nil {
		return err
	}
	for _, block := range traitBlocks {
		if err := describeTraits(rec, block); err != nil {
			return errors.Wrapf(err, "%s block", block).WithMeta("field", block)
		}
	}
	return nil
}

// FlattenForDisplay renders the monster fields for the statblock.
func (s *Strategy) FlattenForDisplay(rec *tree.Object, name string) error {
	steps := []func(*tree.Object, string) error{
		s.flattenSize,
		s.flattenAlignment,
		s.flattenAC,
		s.flattenHP,
		s.flattenSpeed,
		flattenSummonedBySpell,
		s.flattenStats,
		flattenSaves,
		flattenModifiers,
		flattenSenses,
		s.flattenSpellcasting,
	}

	for _, step := range steps {
		if err := step(rec, name); err != nil {
			return err
		}
	}

	adjustments.RemoveFields(rec, unusedFields...)
	return nil
}

// TextReplace implements adjustments.Strategy.
func (s *Strategy) TextReplace(text, name string) (string, error) {
	return s.replacer.Replace(text, name)
}

func gatherConditionInflicts(rec *tree.Object) error {
	all := tree.NewArray()
	for _, key := range conditionInflictFields {
		conditions, ok, err := rec.ArrayField(key)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		for _, c := range conditions.Items() {
			all.Append(tree.Clone(c))
		}
	}
	if all.Len() > 0 {
		rec.Set("conditionInflictAll", all)
	}
	return nil
}
