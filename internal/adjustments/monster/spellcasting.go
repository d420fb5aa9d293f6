package monster

import (
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments"
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

const maxSpellLevel = 9

// spellLine is one rendered spellcasting row. An empty label marks free text.
type spellLine struct {
	label string
	list  string
}

// flattenSpellcasting replaces the first spellcasting block with a spell
// list of header strings and {label: spells} rows. Rows are ordered headers,
// at will, daily allowances in source order, then levels 0 to 9.
func (s *Strategy) flattenSpellcasting(rec *tree.Object, name string) error {
	block, ok, err := adjustments.FirstObject(rec, "spellcasting")
	if err != nil || !ok {
		return err
	}

	castingName, err := adjustments.RequireString(block, "name")
	if err != nil {
		return errors.Wrap(err, "spellcasting")
	}

	var lines []spellLine
	if castingName != "Spellcasting" {
		lines = append(lines, spellLine{list: strings.TrimSpace(strings.ReplaceAll(castingName, "Spellcasting", ""))})
	}

	headers, ok, err := block.ArrayField("headerEntries")
	if err != nil {
		return err
	}
	var header tree.Value
	hasHeader := false
	if ok {
		header, hasHeader = headers.First()
	}
	if !hasHeader {
		adjustments.Warn(s.Category(), name, "No spellcasting header entries, leaving spellcasting as is")
		return nil
	}
	lines = append(lines, spellLine{list: tree.Text(header)})

	if will, ok, err := block.ArrayField("will"); err != nil {
		return err
	} else if ok {
		list := s.spellList(will, name)
		if list != "" {
			lines = append(lines, spellLine{label: "At will", list: list})
		}
	}

	if daily, ok, err := block.ObjectField("daily"); err != nil {
		return err
	} else if ok {
		dailyLines, err := s.dailySpells(daily, name)
		if err != nil {
			return err
		}
		lines = append(lines, dailyLines...)
	}

	if levels, ok, err := block.ObjectField("spells"); err != nil {
		return err
	} else if ok {
		for level := 0; level <= maxSpellLevel; level++ {
			line, ok, err := s.levelSpells(levels, level, name)
			if err != nil {
				return err
			}
			if ok {
				lines = append(lines, line)
			}
		}
	}

	out := tree.NewArray()
	for _, line := range lines {
		if line.label == "" {
			out.Append(tree.String(line.list))
			continue
		}
		row := tree.NewObject()
		row.SetString(line.label, line.list)
		out.Append(row)
	}

	rec.Remove("spellcasting")
	rec.Set("spell", out)
	return nil
}

// dailySpells renders keys such as "2" and "1e" as "2/day" and "1/day each".
func (s *Strategy) dailySpells(daily *tree.Object, name string) ([]spellLine, error) {
	var lines []spellLine
	for _, key := range daily.Keys() {
		amount, each := strings.CutSuffix(key, "e")
		if _, err := strconv.Atoi(amount); err != nil {
			return nil, errors.ShapeMismatchf("invalid daily spell key %q", key).WithMeta("field", "daily")
		}

		spells, _, err := daily.ArrayField(key)
		if err != nil {
			return nil, err
		}
		if spells.Len() == 0 {
			continue
		}

		label := amount + "/day"
		if each {
			label += " each"
		}
		lines = append(lines, spellLine{label: label, list: s.spellList(spells, name)})
	}
	return lines, nil
}

func (s *Strategy) levelSpells(levels *tree.Object, level int, name string) (spellLine, bool, error) {
	key := strconv.Itoa(level)
	entry, ok, err := levels.ObjectField(key)
	if err != nil || !ok {
		return spellLine{}, false, err
	}

	spells, ok, err := entry.ArrayField("spells")
	if err != nil {
		return spellLine{}, false, err
	}
	if !ok {
		adjustments.Warn(s.Category(), name, "No spells found in spellcasting level "+key)
		return spellLine{}, false, nil
	}

	var prefix string
	slots, ok, err := entry.IntField("slots")
	if err != nil {
		return spellLine{}, false, err
	}
	if ok {
		if slots == 1 {
			prefix = "(1 slot): "
		} else {
			prefix = "(" + strconv.FormatInt(slots, 10) + " slots): "
		}
	}

	label := "Cantrips (at will)"
	if level > 0 {
		label = adjustments.Ordinal(int64(level)) + " level"
	}
	return spellLine{label: label, list: prefix + s.spellList(spells, name)}, true, nil
}

// spellList joins bare spell names and {entry, hidden} objects.
func (s *Strategy) spellList(spells *tree.Array, name string) string {
	names := make([]string, 0, spells.Len())
	for _, item := range spells.Items() {
		if item.Kind().IsScalar() {
			names = append(names, tree.Text(item))
			continue
		}
		obj, err := tree.AsObject(item)
		if err != nil {
			adjustments.Warn(s.Category(), name, "Spell list entry is not a spell")
			continue
		}
		entry, ok, err := obj.StringField("entry")
		if err != nil || !ok {
			adjustments.Warn(s.Category(), name, "Spell has no entry")
			continue
		}
		if hidden, ok := obj.Get("hidden"); ok {
			if isHidden, err := tree.AsBool(hidden); err == nil && isHidden {
				entry += " (hidden)"
			}
		}
		names = append(names, entry)
	}
	return strings.Join(names, ", ")
}
