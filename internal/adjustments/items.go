package adjustments

import (
	"strings"

	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/lookup"
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

// Item field names shared by weapons and magic items.
const (
	FieldFullEntries      = "_fullEntries"
	FieldProperties       = "properties"
	FieldSpecial          = "special"
	FieldNotes            = "notes"
	FieldRandomProperties = "randomProperties"
	FieldVariants         = "variants"
)

const (
	groupSpecial          = "Special"
	groupRandomProperties = "Random Properties"
	tableToken            = "{@table"
)

// ItemDenyList is removed from weapons and magic items during PreShape.
var ItemDenyList = []string{"entries", "type", "property", "sword", "dagger", "weapon", "firearm"}

// ItemUnusedFields are removed from weapons and magic items during
// FlattenForDisplay.
var ItemUnusedFields = []string{"page", "source", "otherSources", "srd", "basicRules"}

// PropertyOptions selects the category-specific consolidation rules.
type PropertyOptions struct {
	// Magic collects "Random Properties" groups and treats a wrapped object
	// without a name as a list of variants. Without it such an object is
	// malformed.
	Magic bool
}

type propertyGroups struct {
	properties []string
	special    []string
	random     []string
	variants   []string
	notes      []string
}

// ConsolidateProperties collapses the mixed _fullEntries list into
// properties, special, randomProperties, variants and notes. Entry order is
// preserved within every output.
func ConsolidateProperties(rec *tree.Object, category, name string, opts PropertyOptions) error {
	full, ok, err := rec.ArrayField(FieldFullEntries)
	if err != nil {
		return err
	}
	if !ok {
		Warn(category, name, "No _fullEntries property")
		return nil
	}

	var groups propertyGroups
	for i, entry := range full.Items() {
		if err := groups.add(entry, category, name, opts); err != nil {
			return errors.Wrapf(err, "property entry %d", i).WithMeta("field", FieldFullEntries)
		}
	}

	rec.Remove(FieldFullEntries)
	rec.Set(FieldProperties, tree.Strings(groups.properties...))

	if len(groups.special) > 0 {
		rec.SetString(FieldSpecial, strings.Join(groups.special, "\n"))
	}
	if len(groups.random) > 0 {
		rec.Set(FieldRandomProperties, randomPropertyTable(groups.random, category, name))
	}
	if len(groups.variants) > 0 {
		rec.SetString(FieldVariants, strings.Join(groups.variants, ", "))
	}
	if len(groups.notes) > 0 {
		notes, ok, err := rec.ArrayField(FieldNotes)
		if err != nil {
			return err
		}
		if !ok {
			notes = tree.NewArray()
			rec.Set(FieldNotes, notes)
		}
		notes.Append(tree.Strings(groups.notes...).Items()...)
	}
	return nil
}

func (g *propertyGroups) add(entry tree.Value, category, name string, opts PropertyOptions) error {
	if entry.Kind().IsScalar() {
		g.notes = append(g.notes, tree.Text(entry))
		return nil
	}

	obj, err := tree.AsObject(entry)
	if err != nil {
		return err
	}

	wrapped, isWrapped := obj.Get("wrapped")
	if !isWrapped {
		return g.addGroup(obj, category, name, opts)
	}

	if wrapped.Kind().IsScalar() {
		g.notes = append(g.notes, tree.Text(wrapped))
		return nil
	}

	wrappedObj, err := tree.AsObject(wrapped)
	if err != nil {
		return errors.Wrap(err, "wrapped entry")
	}

	propertyName, ok, err := wrappedObj.StringField("name")
	if err != nil {
		return err
	}
	if !ok {
		if !opts.Magic {
			return errors.MissingRequiredFieldf("wrapped entry has no name").WithMeta("field", "wrapped.name")
		}
		items, ok, err := wrappedObj.ArrayField("items")
		if err != nil {
			return err
		}
		if !ok {
			return errors.MissingRequiredField("items")
		}
		g.variants = append(g.variants, items.Texts()...)
		return nil
	}

	// A wrapped Special only flags the property; its text comes from the
	// named Special group.
	if propertyName != groupSpecial {
		g.properties = append(g.properties, propertyName)
	}
	return nil
}

func (g *propertyGroups) addGroup(obj *tree.Object, category, name string, opts PropertyOptions) error {
	groupName, ok, err := obj.StringField("name")
	if err != nil {
		return err
	}
	if !ok {
		Warn(category, name, "Property entry has no name")
		return nil
	}

	entries, ok, err := obj.ArrayField("entries")
	if err != nil {
		return err
	}
	if !ok {
		return errors.MissingRequiredField("entries").WithMeta("group", groupName)
	}

	if opts.Magic && groupName == groupRandomProperties {
		return g.addRandom(entries)
	}

	for _, e := range entries.Items() {
		text, err := tree.AsString(e)
		if err != nil {
			return errors.Wrapf(err, "%s entry", groupName).WithMeta("group", groupName)
		}
		if text != "" {
			g.special = append(g.special, text)
		}
	}
	return nil
}

func (g *propertyGroups) addRandom(entries *tree.Array) error {
	for _, e := range entries.Items() {
		if e.Kind().IsScalar() {
			g.random = append(g.random, tree.Text(e))
			continue
		}

		list, err := tree.AsObject(e)
		if err != nil {
			return err
		}
		listType, _, err := list.StringField("type")
		if err != nil {
			return err
		}
		if listType != "list" {
			return errors.ShapeMismatchf("%s entry is not a list", groupRandomProperties).
				WithMeta("group", groupRandomProperties)
		}
		items, ok, err := list.ArrayField("items")
		if err != nil {
			return err
		}
		if !ok {
			return errors.MissingRequiredField("items").WithMeta("group", groupRandomProperties)
		}
		g.random = append(g.random, items.Texts()...)
	}
	return nil
}

// randomPropertyTable keeps the first line as written and turns every other
// line into {item: "amount [[table|alias]]"}.
func randomPropertyTable(lines []string, category, name string) *tree.Array {
	table := tree.NewArray(tree.String(lines[0]))
	for _, line := range lines[1:] {
		item, value, ok := ParseTableReference(line)
		if !ok {
			Warn(category, name, "Random property has no table reference")
			table.Append(tree.String(line))
			continue
		}
		row := tree.NewObject()
		row.SetString(item, value)
		table.Append(row)
	}
	return table
}

// ParseTableReference splits "1 {@table Item; Table|src|Alias}" into the
// item name and "1 [[Table|Alias]]".
func ParseTableReference(line string) (item, value string, ok bool) {
	start := strings.Index(line, tableToken)
	if start < 0 {
		return "", "", false
	}
	end := strings.Index(line[start:], "}")
	if end < 0 {
		return "", "", false
	}
	body := line[start+len(tableToken) : start+end]

	item, rest, found := strings.Cut(body, ";")
	if !found {
		return "", "", false
	}

	table, alias := rest, rest
	if pipe := strings.Index(rest, "|"); pipe >= 0 {
		table = rest[:pipe]
		alias = rest[strings.LastIndex(rest, "|")+1:]
	}

	amount := strings.TrimSpace(line[:start])
	link := "[[" + strings.TrimSpace(table) + "|" + strings.TrimSpace(alias) + "]]"
	return strings.TrimSpace(item), strings.TrimSpace(amount + " " + link), true
}

// PreShapeDamage renames dmg1, dmgType and dmg2 to damage, damageType and
// versatileDamage, resolving the damage type code.
func PreShapeDamage(rec *tree.Object, category, name string) error {
	if _, _, err := rec.StringField("dmg1"); err != nil {
		return err
	}
	if !rec.Rename("dmg1", "damage") {
		Warn(category, name, "No damage property")
		return nil
	}

	code, ok, err := rec.StringField("dmgType")
	if err != nil {
		return err
	}
	if !ok {
		Warn(category, name, "No damage type property")
		return nil
	}
	damageType, err := lookup.DamageTypes.Resolve(code)
	if err != nil {
		return err
	}
	rec.Rename("dmgType", "damageType")
	rec.SetString("damageType", damageType)

	if _, _, err := rec.StringField("dmg2"); err != nil {
		return err
	}
	rec.Rename("dmg2", "versatileDamage")
	return nil
}

// FlattenDamage renders damage as "0 (1d8) Slashing", "0 (1d8) or 0 (1d10)
// Slashing" or "1 Piercing".
func FlattenDamage(rec *tree.Object, category, name string) error {
	damage, ok, err := rec.StringField("damage")
	if err != nil {
		return err
	}
	if !ok {
		Warn(category, name, "No damage property")
		return nil
	}
	damageType, ok, err := rec.StringField("damageType")
	if err != nil {
		return err
	}
	if !ok {
		Warn(category, name, "No damage type property")
		return nil
	}
	versatile, hasVersatile, err := rec.StringField("versatileDamage")
	if err != nil {
		return err
	}

	var text string
	switch {
	case hasVersatile:
		text = "0 (" + damage + ") or 0 (" + versatile + ") " + damageType
	case strings.Contains(damage, "d"):
		text = "0 (" + damage + ") " + damageType
	default:
		text = damage + " " + damageType
	}

	rec.SetString("damage", text)
	RemoveFields(rec, "damageType", "versatileDamage")
	return nil
}

// FlattenRarity drops a "none" rarity and capitalizes the rest.
func FlattenRarity(rec *tree.Object) error {
	rarity, ok, err := rec.StringField("rarity")
	if err != nil || !ok {
		return err
	}
	if rarity == "none" {
		rec.Remove("rarity")
		return nil
	}
	rec.SetString("rarity", UpperFirst(rarity))
	return nil
}

// FlattenWeaponCategory renders "martial" as "Martial Weapon". It reports
// whether the field was present.
func FlattenWeaponCategory(rec *tree.Object) (bool, error) {
	weaponCategory, ok, err := rec.StringField("weaponCategory")
	if err != nil || !ok {
		return ok, err
	}
	rec.SetString("weaponCategory", UpperFirst(weaponCategory)+" Weapon")
	return true, nil
}

// FlattenProperties renders properties as links and joins a special list.
func FlattenProperties(rec *tree.Object) error {
	properties, ok, err := rec.ArrayField(FieldProperties)
	if err != nil {
		return err
	}
	if ok {
		links := make([]string, 0, properties.Len())
		for _, p := range properties.Texts() {
			links = append(links, Link(p))
		}
		rec.SetString(FieldProperties, strings.Join(links, ", "))
	}

	if special, ok := rec.Get(FieldSpecial); ok && special.Kind() == tree.KindArray {
		return JoinField(rec, FieldSpecial, "\n")
	}
	return nil
}
