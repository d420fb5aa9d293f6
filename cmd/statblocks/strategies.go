package main

import (
	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments"
	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments/magicitem"
	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments/monster"
	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments/spell"
	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments/weapon"
	"github.com/KirkDiggler/rpg-statblocks/internal/config"
	"github.com/KirkDiggler/rpg-statblocks/internal/document"
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
)

func newStrategy(category string) (adjustments.Strategy, error) {
	switch category {
	case adjustments.CategoryMonster:
		return monster.New()
	case adjustments.CategorySpell:
		return spell.New()
	case adjustments.CategoryWeapon:
		return weapon.New()
	case adjustments.CategoryMagicItem:
		return magicitem.New()
	}
	return nil, errors.NotFoundf("no strategy for category %q", category).
		WithMeta("category", category)
}

// templateFor starts from the built-in template and applies the
// category's overrides.
func templateFor(name string, cat *config.Category) (document.Template, error) {
	tmpl, err := document.Builtin(name)
	if err != nil {
		return document.Template{}, err
	}
	if len(cat.Tags) > 0 {
		tmpl.Tags = cat.Tags
	}
	if cat.Layout != "" {
		tmpl.Layout = cat.Layout
	}
	return tmpl, nil
}
