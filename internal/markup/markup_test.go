package markup_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/lookup"
	"github.com/KirkDiggler/rpg-statblocks/internal/markup"
)

type ExpandTestSuite struct {
	suite.Suite
}

func TestExpandSuite(t *testing.T) {
	suite.Run(t, new(ExpandTestSuite))
}

func (s *ExpandTestSuite) TestSplicesEveryOccurrence() {
	got, err := markup.Expand("A {@h} B {@h} C", "Goblin", markup.Directive{Name: "h", Handler: markup.Hit})

	s.Require().NoError(err)
	s.Equal("A Hit:  B Hit:  C", got)
}

func (s *ExpandTestSuite) TestHandlers() {
	testCases := []struct {
		name      string
		directive markup.Directive
		input     string
		expected  string
	}{
		{
			name:      "attack",
			directive: markup.Directive{Name: "atk", Handler: markup.Attack},
			input:     "{@atk mw} {@atk ms,rs}",
			expected:  "Melee Weapon Attack. Melee or Ranged Spell Attack.",
		},
		{
			name:      "attack bonus",
			directive: markup.Directive{Name: "hit", Handler: markup.AttackBonus},
			input:     "{@hit 5} to hit, or {@hit summonSpellLevel }",
			expected:  "+5 to hit, or +summon spell level",
		},
		{
			name:      "damage passes through",
			directive: markup.Directive{Name: "damage", Handler: markup.Passthrough},
			input:     "7 ({@damage 2d6})",
			expected:  "7 (2d6)",
		},
		{
			name:      "spell link",
			directive: markup.Directive{Name: "spell", Handler: markup.Link},
			input:     "casts {@spell fireball}.",
			expected:  "casts [[fireball]].",
		},
		{
			name:      "item drops source",
			directive: markup.Directive{Name: "item", Handler: markup.LinkBeforePipe},
			input:     "{@item rope|XPHB} and {@item torch}",
			expected:  "[[rope]] and [[torch]]",
		},
		{
			name:      "quickref with mixed case display",
			directive: markup.Directive{Name: "quickref", Handler: markup.QuickRef},
			input:     "{@quickref Jump|PHB|0|jumping}",
			expected:  "[[Jump|jumping]]",
		},
		{
			name:      "quickref with upper case display",
			directive: markup.Directive{Name: "quickref", Handler: markup.QuickRef},
			input:     "{@quickref difficult terrain||3}",
			expected:  "[[difficult terrain]]",
		},
		{
			name:      "quickref without fields",
			directive: markup.Directive{Name: "quickref", Handler: markup.QuickRef},
			input:     "{@quickref Cover}",
			expected:  "[[Cover]]",
		},
		{
			name:      "status",
			directive: markup.Directive{Name: "status", Handler: markup.Status},
			input:     "{@status concentration}, up to 1 minute",
			expected:  "[[Duration|Concentration]], up to 1 minute",
		},
		{
			name:      "scale damage",
			directive: markup.Directive{Name: "scaledamage", Handler: markup.ScaleDamage},
			input:     "{@scaledamage 8d6|3-9|1d6}",
			expected:  "1d6",
		},
		{
			name:      "book renames jumping",
			directive: markup.Directive{Name: "book", Handler: markup.Book},
			input:     "{@book jump|PHB|8|Jumping} and {@book travel|PHB|8|Travel Pace}",
			expected:  "[[Movement|jump]] and [[Travel Pace|travel]]",
		},
		{
			name:      "format",
			directive: markup.Directive{Name: "dc", Handler: markup.Format("[[Difficulty Class|DC]] %s")},
			input:     "{@dc 13} Constitution",
			expected:  "[[Difficulty Class|DC]] 13 Constitution",
		},
		{
			name:      "recharge",
			directive: markup.Directive{Name: "recharge", Handler: markup.Recharge},
			input:     "Fire Breath {@recharge 5}",
			expected:  "Fire Breath (recharge 5)",
		},
		{
			name:      "recharge without value",
			directive: markup.Directive{Name: "recharge", Handler: markup.Recharge},
			input:     "Fire Breath {@recharge}",
			expected:  "Fire Breath (recharge )",
		},
		{
			name:      "chance stops at the terminator",
			directive: markup.Directive{Name: "chance", Handler: markup.Chance, Terminator: "|"},
			input:     "a {@chance 25|25 percent} chance",
			expected:  "a 25% chance",
		},
		{
			name:      "d20 below the boundary",
			directive: markup.Directive{Name: "d20", Handler: markup.D20},
			input:     "{@d20 9}",
			expected:  "(-9)",
		},
		{
			name:      "d20 at the boundary",
			directive: markup.Directive{Name: "d20", Handler: markup.D20},
			input:     "{@d20 10}",
			expected:  "(+10)",
		},
		{
			name:      "d20 not a number",
			directive: markup.Directive{Name: "d20", Handler: markup.D20},
			input:     "{@d20 x}",
			expected:  "(x)",
		},
		{
			name:      "longer names are not matched",
			directive: markup.Directive{Name: "d", Handler: markup.Passthrough},
			input:     "{@dice 1d6} {@d 3}",
			expected:  "{@dice 1d6} 3",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			got, err := markup.Expand(tc.input, "Test Record", tc.directive)
			s.Require().NoError(err)
			s.Equal(tc.expected, got)
		})
	}
}

func (s *ExpandTestSuite) TestEveryAttackCodeResolves() {
	atk := markup.Directive{Name: "atk", Handler: markup.Attack}

	for _, code := range lookup.AttackTypes.Codes() {
		s.Run(code, func() {
			display, err := lookup.AttackTypes.Resolve(code)
			s.Require().NoError(err)

			got, err := markup.Expand("{@atk "+code+"}", "Goblin", atk)
			s.Require().NoError(err)
			s.Equal(display+".", got)
			s.NotContains(got, "{")
			s.NotContains(got, "}")
		})
	}
}

func (s *ExpandTestSuite) TestUnknownAttackCodeFails() {
	_, err := markup.Expand("{@atk zz}", "Goblin", markup.Directive{Name: "atk", Handler: markup.Attack})

	s.Require().Error(err)
	s.True(errors.IsUnknownCode(err))
	meta := errors.GetMeta(err)
	s.Equal("atk", meta["directive"])
	s.Equal("Goblin", meta["record"])
	s.Equal("zz", meta["code"])
}

func (s *ExpandTestSuite) TestUnterminatedTokenFails() {
	testCases := []string{
		"{@spell fireball",
		"trailing {@spell",
	}

	for _, input := range testCases {
		s.Run(input, func() {
			_, err := markup.Expand(input, "Mage", markup.Directive{Name: "spell", Handler: markup.Link})
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
			s.Equal("spell", errors.GetMeta(err)["directive"])
		})
	}
}

func (s *ExpandTestSuite) TestIdempotentWithoutTokens() {
	directives := []markup.Directive{
		{Name: "h", Handler: markup.Hit},
		{Name: "atk", Handler: markup.Attack},
		{Name: "spell", Handler: markup.Link},
		{Name: "chance", Handler: markup.Chance, Terminator: "|"},
	}
	inputs := []string{
		"",
		"plain text with no tokens",
		"braces {like this} and @at signs",
		"name: Goblin\nac: 15 (leather armor, shield)\n",
	}

	for _, input := range inputs {
		got, err := markup.Expand(input, "Goblin", directives...)
		s.Require().NoError(err)
		s.Equal(input, got)
	}
}

func (s *ExpandTestSuite) TestDirectivesRunInOrder() {
	directives := []markup.Directive{
		{Name: "h", Handler: markup.Hit},
		{Name: "atk", Handler: markup.Attack},
		{Name: "hit", Handler: markup.AttackBonus},
		{Name: "damage", Handler: markup.Passthrough},
	}

	got, err := markup.Expand(
		"{@atk mw} {@hit 4} to hit, reach 5 ft., one target. {@h}5 ({@damage 1d6 + 2}) slashing damage.",
		"Goblin", directives...)

	s.Require().NoError(err)
	s.Equal("Melee Weapon Attack. +4 to hit, reach 5 ft., one target. Hit: 5 (1d6 + 2) slashing damage.", got)
}

type LinksTestSuite struct {
	suite.Suite
}

func TestLinksSuite(t *testing.T) {
	suite.Run(t, new(LinksTestSuite))
}

func (s *LinksTestSuite) TestCommonLinksOrder() {
	withoutDC := markup.CommonLinks(false)
	withDC := markup.CommonLinks(true)

	s.Len(withDC, len(withoutDC)+1)
	s.Equal("Armor Class", withDC[1].Target)
	s.Equal("Difficulty Class", withDC[2].Target)
	s.Equal("Saving Throws", withoutDC[2].Target)
}

func (s *LinksTestSuite) TestApplyLinks() {
	testCases := []struct {
		name     string
		withDC   bool
		input    string
		expected string
	}{
		{
			name:     "saving throw with disadvantage",
			input:    "makes saving throws with disadvantage",
			expected: "makes [[Saving Throws|saving throws]] with [[Advantage & Disadvantage|disadvantage]]",
		},
		{
			name:     "armor class",
			input:    "AC 15",
			expected: "[[Armor Class|AC]] 15",
		},
		{
			name:     "difficulty class only when enabled",
			input:    "DC 13",
			expected: "DC 13",
		},
		{
			name:     "difficulty class",
			withDC:   true,
			input:    "DC 13",
			expected: "[[Difficulty Class|DC]] 13",
		},
		{
			name:     "damage and terrain",
			input:    "takes fire damage in difficult terrain",
			expected: "takes [[Damage|fire damage]] in [[Movement|difficult terrain]]",
		},
		{
			name:     "melee attack",
			input:    "Melee Attack",
			expected: "[[Attack Rolls|Melee Attack]]",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.expected, markup.ApplyLinks(tc.input, markup.CommonLinks(tc.withDC)...))
		})
	}
}

// Keywords inside an existing link are wrapped again. This pins the
// current output.
func (s *LinksTestSuite) TestAlreadyLinkedAdvantageIsWrappedAgain() {
	wrap := func(text string) string {
		return "[[Advantage & Disadvantage|" + text + "]]"
	}
	expected := "[[" + wrap("Advantage") + " and " + wrap("Disadvantage") + "|" + wrap("advantage") + "]]"

	got := markup.ApplyLinks("[[Advantage and Disadvantage|advantage]]", markup.CommonLinks(false)...)

	s.Equal(expected, got)
}

func (s *LinksTestSuite) TestEachRuleSeesPreviousOutput() {
	rules := []markup.LinkRule{
		markup.NewLinkRule(`Fire`, "Fire Rules"),
		markup.NewLinkRule(`Rules`, "Index"),
	}

	s.Equal("[[Fire [[Index|Rules]]|Fire]]", markup.ApplyLinks("Fire", rules...))
}

type ReplacerTestSuite struct {
	suite.Suite
}

func TestReplacerSuite(t *testing.T) {
	suite.Run(t, new(ReplacerTestSuite))
}

func (s *ReplacerTestSuite) TestNewReplacerValidation() {
	testCases := []struct {
		name    string
		cfg     *markup.ReplacerConfig
		wantErr bool
		errMsg  string
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: true,
			errMsg:  "config is required",
		},
		{
			name:    "odd literals",
			cfg:     &markup.ReplacerConfig{Literals: []string{"×"}},
			wantErr: true,
			errMsg:  "Literals",
		},
		{
			name: "missing handler",
			cfg: &markup.ReplacerConfig{
				Directives: []markup.Directive{{Name: "spell"}},
			},
			wantErr: true,
			errMsg:  "Directives.Handler",
		},
		{
			name: "valid",
			cfg: &markup.ReplacerConfig{
				Literals:   []string{"×", "*"},
				Directives: []markup.Directive{{Name: "spell", Handler: markup.Link}},
				Links:      markup.CommonLinks(false),
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			r, err := markup.NewReplacer(tc.cfg)
			if tc.wantErr {
				s.Require().Error(err)
				s.True(errors.IsInvalidArgument(err))
				s.Contains(err.Error(), tc.errMsg)
				return
			}
			s.Require().NoError(err)
			s.Equal([]string{"spell"}, r.DirectiveNames())
		})
	}
}

func (s *ReplacerTestSuite) TestReplace() {
	r, err := markup.NewReplacer(&markup.ReplacerConfig{
		Literals: []string{"×", "*"},
		Directives: []markup.Directive{
			{Name: "spell", Handler: markup.Link},
			{Name: "dc", Handler: markup.Format("[[Difficulty Class|DC]] %s")},
		},
		Links: markup.CommonLinks(false),
	})
	s.Require().NoError(err)

	got, err := r.Replace("2 × {@spell fireball}, {@dc 15} saving throw", "Mage")

	s.Require().NoError(err)
	s.Equal("2 * [[fireball]], [[Difficulty Class|DC]] 15 [[Saving Throws|saving throw]]", got)
	s.False(strings.Contains(got, "{@"))
}
