package testutils

import (
	"github.com/KirkDiggler/rpg-statblocks/internal/testutils/builders"
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

// Names of the fixture records
const (
	GoblinName    = "Goblin"
	LongswordName = "Longsword"
)

// Goblin returns a minimal monster record that converts without warnings
// other than the missing image.
func Goblin() *builders.RecordBuilder {
	ac := tree.NewObject()
	ac.Set("ac", tree.Int(15))
	ac.Set("from", tree.Strings("leather armor", "shield"))

	hp := tree.NewObject()
	hp.Set("average", tree.Int(7))
	hp.SetString("formula", "2d6")

	speed := tree.NewObject()
	speed.Set("walk", tree.Int(30))

	return builders.NewRecordBuilder(GoblinName).
		WithSource("MM", 166).
		WithStrings("size", "S").
		WithString("type", "humanoid").
		WithStrings("alignment", "N", "E").
		With("ac", tree.NewArray(ac)).
		With("hp", hp).
		With("speed", speed).
		WithInt("str", 8).
		WithInt("dex", 14).
		WithInt("con", 10).
		WithInt("int", 10).
		WithInt("wis", 8).
		WithInt("cha", 8).
		WithStrings("senses", "darkvision 60 ft.").
		WithInt("passive", 9).
		WithStrings("languages", "Common", "Goblin")
}

// Longsword returns a mundane weapon record.
func Longsword() *builders.RecordBuilder {
	return builders.NewRecordBuilder(LongswordName).
		WithSource("PHB", 149).
		WithString("type", "M").
		WithString("rarity", "none").
		WithString("weaponCategory", "martial").
		WithStrings("property", "V").
		WithString("dmg1", "1d8").
		WithString("dmgType", "S").
		WithString("dmg2", "1d10")
}
