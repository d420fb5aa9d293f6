// Package adjustments defines the per-category normalization contract and
// the field helpers shared by the category strategies.
//
// A strategy reshapes one record in three phases. PreShape produces the
// front-matter view, FlattenForDisplay turns the same tree into the
// statblock view, and TextReplace rewrites the serialized text of both.
package adjustments

//go:generate mockgen -destination=mock/mock_strategy.go -package=adjustmentsmock github.com/KirkDiggler/rpg-statblocks/internal/adjustments Strategy

import (
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

// Category names.
const (
	CategoryMonster   = "monster"
	CategorySpell     = "spell"
	CategoryWeapon    = "weapon"
	CategoryMagicItem = "magicitem"
)

// Categories lists every built-in category in processing order.
func Categories() []string {
	return []string{CategoryMonster, CategorySpell, CategoryWeapon, CategoryMagicItem}
}

// Strategy is the three-phase normalization contract. Implementations hold
// no per-record state and are shared by every worker of a run.
type Strategy interface {
	// Category returns the category name the strategy is bound to.
	Category() string

	// PreShape strips private and deny-listed fields and normalizes
	// polymorphic fields in place.
	PreShape(rec *tree.Object, name string) error

	// FlattenForDisplay turns normalized fields into display strings and
	// removes fields that are not rendered.
	FlattenForDisplay(rec *tree.Object, name string) error

	// TextReplace expands directives and keyword links in serialized text.
	TextReplace(text, name string) (string, error)
}
