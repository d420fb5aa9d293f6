// Package spell normalizes spell records.
package spell

import (
	"strings"

	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments"
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/lookup"
	"github.com/KirkDiggler/rpg-statblocks/internal/markup"
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

var denyList = []string{"otherSource"}

// linkedLists are arrays of {name} objects rendered as links.
var linkedLists = []string{"races", "feats", "backgrounds", "optionalfeatures"}

var _ adjustments.Strategy = (*Strategy)(nil)

// Strategy is the spell category strategy.
type Strategy struct {
	replacer *markup.Replacer
}

// New builds the spell strategy.
func New() (*Strategy, error) {
	replacer, err := markup.NewReplacer(&markup.ReplacerConfig{
		Directives: []markup.Directive{
			{Name: "damage", Handler: markup.Passthrough},
			{Name: "status", Handler: markup.Status},
			{Name: "spell", Handler: markup.Link},
			{Name: "condition", Handler: markup.Link},
			{Name: "quickref", Handler: markup.QuickRef},
			{Name: "scaledamage", Handler: markup.ScaleDamage},
			{Name: "item", Handler: markup.LinkBeforePipe},
			{Name: "book", Handler: markup.Book},
			{Name: "action", Handler: markup.Format("[[Actions|%s]]")},
			{Name: "creature", Handler: markup.Link},
			{Name: "sense", Handler: markup.Link},
			{Name: "dice", Handler: markup.Passthrough},
			{Name: "skill", Handler: markup.Link},
			{Name: "chance", Handler: markup.Chance, Terminator: "|"},
			{Name: "d20", Handler: markup.D20},
		},
		Links: markup.CommonLinks(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build spell text replacer")
	}
	return &Strategy{replacer: replacer}, nil
}

// Category implements adjustments.Strategy.
func (s *Strategy) Category() string {
	return adjustments.CategorySpell
}

// PreShape resolves the school, collapses class lists and flattens a timed
// duration.
func (s *Strategy) PreShape(rec *tree.Object, name string) error {
	if err := preShapeSchool(rec); err != nil {
		return err
	}
	if err := preShapeClasses(rec); err != nil {
		return err
	}
	adjustments.FilterFields(rec, denyList...)
	return s.preShapeDuration(rec, name)
}

// FlattenForDisplay renders the spell fields for the statblock.
func (s *Strategy) FlattenForDisplay(rec *tree.Object, name string) error {
	steps := []func(*tree.Object, string) error{
		s.flattenLevel,
		s.flattenCastingTime,
		s.flattenDuration,
		s.flattenRange,
		s.flattenComponents,
		s.flattenEntries,
		s.flattenClasses,
		flattenLinkedLists,
		s.flattenUpcast,
	}

	for _, step := range steps {
		if err := step(rec, name); err != nil {
			return err
		}
	}

	adjustments.RemoveFields(rec, denyList...)
	return nil
}

// TextReplace implements adjustments.Strategy.
func (s *Strategy) TextReplace(text, name string) (string, error) {
	return s.replacer.Replace(text, name)
}

func preShapeSchool(rec *tree.Object) error {
	code, ok, err := rec.StringField("school")
	if err != nil || !ok {
		return err
	}
	school, err := lookup.Schools.Resolve(code)
	if err != nil {
		return err
	}
	rec.SetString("school", school)
	return nil
}

// preShapeClasses joins class names, variant class names and "Class -
// Subclass" pairs into one comma separated string.
func preShapeClasses(rec *tree.Object) error {
	classes, ok, err := rec.ObjectField("classes")
	if err != nil || !ok {
		return err
	}

	var names []string
	for _, key := range []string{"fromClassList", "fromClassListVariant"} {
		list, ok, err := classes.ArrayField(key)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		for _, item := range list.Items() {
			class, err := tree.AsObject(item)
			if err != nil {
				return errors.Wrapf(err, "%s entry", key).WithMeta("field", "classes."+key)
			}
			className, ok, err := class.StringField("name")
			if err != nil {
				return err
			}
			if ok {
				names = append(names, className)
			}
		}
	}

	subclasses, ok, err := classes.ArrayField("fromSubclass")
	if err != nil {
		return err
	}
	if ok {
		for _, item := range subclasses.Items() {
			name, err := subclassName(item)
			if err != nil {
				return err
			}
			if name != "" {
				names = append(names, name)
			}
		}
	}

	rec.SetString("classes", strings.Join(names, ", "))
	return nil
}

func subclassName(v tree.Value) (string, error) {
	entry, err := tree.AsObject(v)
	if err != nil {
		return "", errors.Wrap(err, "fromSubclass entry").WithMeta("field", "classes.fromSubclass")
	}
	class, ok, err := entry.ObjectField("class")
	if err != nil || !ok {
		return "", err
	}
	className, ok, err := class.StringField("name")
	if err != nil || !ok {
		return "", err
	}

	subclass, ok, err := entry.ObjectField("subclass")
	if err != nil {
		return "", err
	}
	if !ok {
		return className, nil
	}
	subName, ok, err := subclass.StringField("name")
	if err != nil {
		return "", err
	}
	if !ok {
		return className, nil
	}
	return className + " - " + subName, nil
}

// preShapeDuration keeps the first duration entry and lifts a timed
// duration's nested type, amount and upTo flag to the top.
func (s *Strategy) preShapeDuration(rec *tree.Object, name string) error {
	duration, ok, err := adjustments.FirstObject(rec, "duration")
	if err != nil || !ok {
		return err
	}

	durationType, ok, err := duration.StringField("type")
	if err != nil {
		return err
	}
	if !ok {
		adjustments.Warn(s.Category(), name, "Spell duration has no type")
		return nil
	}

	if durationType == "timed" {
		nested, ok, err := duration.ObjectField("duration")
		if err != nil {
			return err
		}
		if !ok {
			adjustments.Warn(s.Category(), name, "Spell has a duration type of timed but no duration property")
			return nil
		}
		nestedType, ok := nested.Get("type")
		if !ok {
			adjustments.Warn(s.Category(), name, "Spell has a duration type of timed but no nested type property")
			return nil
		}

		duration.Remove("duration")
		duration.Set("type", tree.Clone(nestedType))
		if amount, ok := nested.Get("amount"); ok {
			duration.Set("amount", tree.Clone(amount))
		} else {
			adjustments.Warn(s.Category(), name, "Spell has a duration type of timed but no nested amount property")
		}
		if upTo, ok := nested.Get("upTo"); ok {
			duration.Set("upTo", tree.Clone(upTo))
		}
	}

	rec.Set("duration", tree.CloneObject(duration))
	return nil
}

func (s *Strategy) flattenLevel(rec *tree.Object, _ string) error {
	level, ok, err := rec.IntField("level")
	if err != nil || !ok {
		return err
	}
	if level == 0 {
		rec.SetString("level", "Cantrip")
		return nil
	}
	rec.SetString("level", adjustments.Ordinal(level)+" level")
	return nil
}

// flattenCastingTime renders "1 action", "1 bonus action" or "1 reaction,
// which you take when ...". Number and unit are required.
func (s *Strategy) flattenCastingTime(rec *tree.Object, name string) error {
	castingTime, ok, err := adjustments.FirstObject(rec, "time")
	if err != nil {
		return err
	}
	if !ok {
		adjustments.Warn(s.Category(), name, "No casting time")
		return nil
	}

	number, ok, err := castingTime.IntField("number")
	if err != nil {
		return err
	}
	if !ok {
		return errors.MissingRequiredField("time.number")
	}
	unit, err := adjustments.RequireString(castingTime, "unit")
	if err != nil {
		return errors.Wrap(err, "casting time")
	}
	if unit == "bonus" {
		unit = "bonus action"
	}

	text := tree.Text(tree.Int(number)) + " " + unit
	condition, ok, err := castingTime.StringField("condition")
	if err != nil {
		return err
	}
	if ok {
		text += " " + condition
	}

	rec.SetString("time", text)
	return nil
}

func (s *Strategy) flattenDuration(rec *tree.Object, name string) error {
	duration, ok, err := rec.ObjectField("duration")
	if err != nil {
		return err
	}
	if !ok {
		adjustments.Warn(s.Category(), name, "No duration")
		return nil
	}

	var b strings.Builder
	switch {
	case duration.Has("concentration"):
		b.WriteString("Concentration, up to ")
	case duration.Has("upTo"):
		b.WriteString("Up to ")
	}

	amount, ok, err := duration.IntField("amount")
	if err != nil {
		return err
	}
	if ok {
		b.WriteString(tree.Text(tree.Int(amount)))
		b.WriteString(" ")
	}

	durationType, _, err := duration.StringField("type")
	if err != nil {
		return err
	}
	b.WriteString(durationType)

	rec.SetString("duration", strings.TrimSpace(b.String()))
	return nil
}

// flattenRange renders "special", "60 feet", "self" or "15 feet radius".
func (s *Strategy) flattenRange(rec *tree.Object, name string) error {
	spellRange, ok, err := rec.ObjectField("range")
	if err != nil || !ok {
		return err
	}

	rangeType, ok, err := spellRange.StringField("type")
	if err != nil {
		return err
	}
	if !ok {
		adjustments.Warn(s.Category(), name, "Range has no type")
		return nil
	}
	if rangeType == "special" {
		rec.SetString("range", rangeType)
		return nil
	}

	distance, ok, err := spellRange.ObjectField("distance")
	if err != nil {
		return err
	}
	if !ok {
		adjustments.Warn(s.Category(), name, "Range has no distance")
		return nil
	}
	distanceType, ok, err := distance.StringField("type")
	if err != nil {
		return err
	}
	if !ok {
		adjustments.Warn(s.Category(), name, "Range distance has no type")
		return nil
	}

	if rangeType == "point" {
		rangeType = ""
	}
	parts := make([]string, 0, 3)
	if amount, ok := distance.Get("amount"); ok {
		parts = append(parts, tree.Text(amount))
	}
	parts = append(parts, distanceType, rangeType)

	rec.SetString("range", strings.TrimSpace(strings.Join(parts, " ")))
	return nil
}

// flattenComponents renders "V, S, M" and lifts the material text to
// "materials".
func (s *Strategy) flattenComponents(rec *tree.Object, name string) error {
	components, ok, err := rec.ObjectField("components")
	if err != nil {
		return err
	}
	if !ok {
		adjustments.Warn(s.Category(), name, "No components")
		return nil
	}

	var letters []string
	if components.Has("v") {
		letters = append(letters, "V")
	}
	if components.Has("s") {
		letters = append(letters, "S")
	}

	var materials string
	hasMaterials := false
	if m, ok := components.Get("m"); ok {
		letters = append(letters, "M")
		switch m.Kind() {
		case tree.KindString:
			materials, hasMaterials = tree.Text(m), true
		case tree.KindObject:
			mObj, _ := tree.AsObject(m)
			materials, hasMaterials, err = mObj.StringField("text")
			if err != nil {
				return err
			}
		}
	}

	rec.SetString("components", strings.Join(letters, ", "))
	if hasMaterials {
		rec.SetString("materials", materials)
	}
	return nil
}

// flattenEntries joins the description into paragraphs. Named sections
// become "Name: line\nline" and lists inside them one item per line.
func (s *Strategy) flattenEntries(rec *tree.Object, name string) error {
	entries, ok, err := rec.ArrayField("entries")
	if err != nil {
		return err
	}
	if !ok {
		adjustments.Warn(s.Category(), name, "No entries")
		return nil
	}

	paragraphs := make([]string, 0, entries.Len())
	for _, entry := range entries.Items() {
		if entry.Kind().IsScalar() {
			paragraphs = append(paragraphs, tree.Text(entry))
			continue
		}
		section, err := tree.AsObject(entry)
		if err != nil {
			return errors.Wrap(err, "entries item")
		}
		paragraph, ok, err := sectionText(section)
		if err != nil {
			return err
		}
		if ok {
			paragraphs = append(paragraphs, paragraph)
		}
	}

	rec.SetString("entries", strings.Join(paragraphs, "\n\n"))
	return nil
}

func sectionText(section *tree.Object) (string, bool, error) {
	title, ok, err := section.StringField("name")
	if err != nil || !ok {
		return "", false, err
	}
	body, ok, err := section.ArrayField("entries")
	if err != nil || !ok {
		return "", false, err
	}

	lines := make([]string, 0, body.Len())
	for _, line := range body.Items() {
		if line.Kind().IsScalar() {
			lines = append(lines, tree.Text(line))
			continue
		}
		list, err := tree.AsObject(line)
		if err != nil {
			return "", false, errors.Wrapf(err, "%s entry", title)
		}
		items, ok, err := list.ArrayField("items")
		if err != nil {
			return "", false, err
		}
		if !ok {
			return "", false, errors.MissingRequiredField("items").WithMeta("section", title)
		}
		lines = append(lines, strings.Join(items.Texts(), "\n"))
	}
	return title + ": " + strings.Join(lines, "\n"), true, nil
}

func (s *Strategy) flattenClasses(rec *tree.Object, name string) error {
	classes, ok, err := rec.StringField("classes")
	if err != nil {
		return err
	}
	if !ok {
		adjustments.Warn(s.Category(), name, "No classes")
		return nil
	}
	if classes == "" {
		return nil
	}

	names := strings.Split(classes, ", ")
	for i, class := range names {
		names[i] = adjustments.Link(class)
	}
	rec.SetString("classes", strings.Join(names, ", "))
	return nil
}

func flattenLinkedLists(rec *tree.Object, _ string) error {
	for _, key := range linkedLists {
		if err := adjustments.LinkField(rec, key); err != nil {
			return err
		}
	}
	return nil
}

// flattenUpcast replaces entriesHigherLevel with its first block's text.
func (s *Strategy) flattenUpcast(rec *tree.Object, name string) error {
	higher, ok, err := adjustments.FirstObject(rec, "entriesHigherLevel")
	if err != nil || !ok {
		return err
	}
	entries, ok, err := higher.ArrayField("entries")
	if err != nil {
		return err
	}
	if !ok {
		adjustments.Warn(s.Category(), name, "Higher level entry has no entries")
		return nil
	}

	rec.Remove("entriesHigherLevel")
	rec.SetString("upcast", strings.Join(entries.Texts(), ", "))
	return nil
}
