package lookup

// Sizes maps creature size letters.
var Sizes = newTable("size", map[string]string{
	"T": "Tiny",
	"S": "Small",
	"M": "Medium",
	"L": "Large",
	"H": "Huge",
	"G": "Gargantuan",
})

// Alignments maps alignment letters. Combinations are resolved letter by letter.
var Alignments = newTable("alignment", map[string]string{
	"U": "Unaligned",
	"A": "Any Alignment",
	"L": "Lawful",
	"C": "Chaotic",
	"G": "Good",
	"E": "Evil",
	"N": "Neutral",
})

// Abilities maps ability score abbreviations in both casings seen in source data.
var Abilities = newTable("ability", map[string]string{
	"str": "Strength",
	"Str": "Strength",
	"dex": "Dexterity",
	"Dex": "Dexterity",
	"con": "Constitution",
	"Con": "Constitution",
	"int": "Intelligence",
	"Int": "Intelligence",
	"wis": "Wisdom",
	"Wis": "Wisdom",
	"cha": "Charisma",
	"Cha": "Charisma",
})

// DamageTypes maps damage type letters.
var DamageTypes = newTable("damage type", map[string]string{
	"A":  "Acid",
	"B":  "Bludgeoning",
	"C":  "Cold",
	"F":  "Fire",
	"FO": "Force",
	"L":  "Lightning",
	"N":  "Necrotic",
	"P":  "Piercing",
	"PO": "Poison",
	"PS": "Psychic",
	"R":  "Radiant",
	"S":  "Slashing",
	"T":  "Thunder",
})

// WeaponProperties maps weapon property letters.
var WeaponProperties = newTable("weapon property", map[string]string{
	"A":   "Ammunition",
	"AF":  "Ammunition",
	"BF":  "Burst Fire",
	"F":   "Finesse",
	"H":   "Heavy",
	"L":   "Light",
	"LD":  "Loading",
	"R":   "Reach",
	"RN":  "Range",
	"RLD": "Reload",
	"S":   "Special",
	"T":   "Thrown",
	"V":   "Versatile",
})

// Schools maps spell school letters.
var Schools = newTable("school", map[string]string{
	"A": "Abjuration",
	"C": "Conjuration",
	"D": "Divination",
	"E": "Enchantment",
	"V": "Evocation",
	"I": "Illusion",
	"N": "Necromancy",
	"T": "Transmutation",
})

// AttackTypes maps attack abbreviations, including comma combinations.
var AttackTypes = newTable("attack type", map[string]string{
	"mw":    "Melee Weapon Attack",
	"m":     "Melee Weapon Attack",
	"rw":    "Ranged Weapon Attack",
	"r":     "Ranged Weapon Attack",
	"mw,rw": "Melee or Ranged Weapon Attack",
	"ms":    "Melee Spell Attack",
	"rs":    "Ranged Spell Attack",
	"ms,rs": "Melee or Ranged Spell Attack",
})

// Statuses maps status keywords to their rendered link.
var Statuses = newTable("status", map[string]string{
	"concentration":                "[[Duration|Concentration]]",
	"concentration||concentrating": "[[Duration|Concentrating]]",
})

// All lists every table, for diagnostics.
func All() []Table {
	return []Table{Sizes, Alignments, Abilities, DamageTypes, WeaponProperties, Schools, AttackTypes, Statuses}
}
