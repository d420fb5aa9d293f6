package markup

import (
	"strings"

	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
)

// ReplacerConfig describes one category's text replacement.
type ReplacerConfig struct {
	// Literals are old/new pairs substituted before any directive runs.
	Literals   []string
	Directives []Directive
	Links      []LinkRule
}

// Validate checks the directive list and literal pairs.
func (c *ReplacerConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	if len(c.Literals)%2 != 0 {
		vb.Field("Literals", "must hold old/new pairs")
	}
	for _, d := range c.Directives {
		if d.Name == "" {
			vb.RequiredField("Directives.Name")
		}
		if d.Handler == nil {
			vb.Fieldf("Directives.Handler", "is required for %q", d.Name)
		}
	}
	for _, rule := range c.Links {
		if rule.Pattern == nil {
			vb.Fieldf("Links.Pattern", "is required for %q", rule.Target)
		}
	}

	return vb.Build()
}

// Replacer is an immutable, ordered text replacement pipeline.
type Replacer struct {
	literals   *strings.Replacer
	directives []Directive
	links      []LinkRule
}

// NewReplacer validates cfg and copies its lists.
func NewReplacer(cfg *ReplacerConfig) (*Replacer, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	r := &Replacer{
		directives: append([]Directive(nil), cfg.Directives...),
		links:      append([]LinkRule(nil), cfg.Links...),
	}
	if len(cfg.Literals) > 0 {
		r.literals = strings.NewReplacer(cfg.Literals...)
	}
	return r, nil
}

// Replace applies literals, then directives, then link rules.
func (r *Replacer) Replace(text, record string) (string, error) {
	if r.literals != nil {
		text = r.literals.Replace(text)
	}

	text, err := Expand(text, record, r.directives...)
	if err != nil {
		return "", err
	}

	return ApplyLinks(text, r.links...), nil
}

// DirectiveNames lists the directives in application order.
func (r *Replacer) DirectiveNames() []string {
	names := make([]string, len(r.directives))
	for i, d := range r.directives {
		names[i] = d.Name
	}
	return names
}
