package document

import (
	"strings"

	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments"
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
)

// Template is the markdown wrapper for one category.
type Template struct {
	Tags   []string
	Layout string
}

// Validate checks the template
func (t *Template) Validate() error {
	vb := errors.NewValidationBuilder()
	if len(t.Tags) == 0 {
		vb.RequiredField("tags")
	}
	errors.ValidateRequired("layout", t.Layout, vb)
	return vb.Build()
}

// Render joins the front matter and statblock into the final document.
//
//	---
//	tags: <tags>
//	<front matter>
//	---
//
//	```statblock
//	layout: <layout>
//	<statblock>
//	```
func (t Template) Render(frontMatter, statblock string) string {
	var b strings.Builder

	b.WriteString("---\n")
	b.WriteString("tags: ")
	b.WriteString(strings.Join(t.Tags, ", "))
	b.WriteString("\n")
	writeBlock(&b, frontMatter)
	b.WriteString("---\n\n")

	b.WriteString("```statblock\n")
	b.WriteString("layout: ")
	b.WriteString(t.Layout)
	b.WriteString("\n")
	writeBlock(&b, statblock)
	b.WriteString("```\n")

	return b.String()
}

func writeBlock(b *strings.Builder, text string) {
	if text == "" {
		return
	}
	b.WriteString(text)
	b.WriteString("\n")
}

var builtins = map[string]Template{
	adjustments.CategoryMonster: {
		Tags:   []string{"monster"},
		Layout: "Monster",
	},
	adjustments.CategorySpell: {
		Tags:   []string{"spell", "official-source"},
		Layout: "Spell",
	},
	adjustments.CategoryWeapon: {
		Tags:   []string{"weapon", "mundane", "non-magical", "official-source"},
		Layout: "Weapon",
	},
	adjustments.CategoryMagicItem: {
		Tags:   []string{"weapon", "magic-item", "magical", "official-source"},
		Layout: "Weapon",
	},
}

// Builtin returns the default template for a category.
func Builtin(category string) (Template, error) {
	t, ok := builtins[category]
	if !ok {
		return Template{}, errors.NotFoundf("no template for category %q", category).
			WithMeta("category", category)
	}
	t.Tags = append([]string(nil), t.Tags...)
	return t, nil
}
