package markup

import (
	"regexp"
)

// LinkRule wraps every match of Pattern as [[Target|match]].
type LinkRule struct {
	Pattern *regexp.Regexp
	Target  string
}

// NewLinkRule compiles pattern. It panics on an invalid pattern, so it is
// meant for package-level rule lists.
func NewLinkRule(pattern, target string) LinkRule {
	return LinkRule{Pattern: regexp.MustCompile(pattern), Target: target}
}

// ApplyLinks runs the rules in order. Each rule is matched against the text
// left by the previous rules, including links they inserted.
func ApplyLinks(text string, rules ...LinkRule) string {
	for _, rule := range rules {
		matches := rule.Pattern.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}

		edits := make([]edit, len(matches))
		for i, m := range matches {
			edits[i] = edit{
				start:       m[0],
				end:         m[1],
				replacement: "[[" + rule.Target + "|" + text[m[0]:m[1]] + "]]",
			}
		}
		text = splice(text, edits)
	}
	return text
}

var (
	leadingLinks = []LinkRule{
		NewLinkRule(`[Dd]ifficult [Tt]errain`, "Movement"),
		NewLinkRule(`AC`, "Armor Class"),
	}

	difficultyClassLink = NewLinkRule(`DC`, "Difficulty Class")

	trailingLinks = []LinkRule{
		NewLinkRule(`[Ss]aving [Tt]hrows?`, "Saving Throws"),
		NewLinkRule(`[Ss]pell [Ss]aves?`, "Saving Throws"),
		NewLinkRule(`[Aa]ttack [Rr]olls?`, "Attack Rolls"),
		NewLinkRule(`[Ss]pell [Aa]ttacks?`, "Attack Rolls"),
		NewLinkRule(`[Mm]elee [Aa]ttacks?`, "Attack Rolls"),
		NewLinkRule(`[Rr]anged [Aa]ttacks?`, "Attack Rolls"),
		NewLinkRule(`[Dd]?i?s?[Aa]dvantage`, "Advantage & Disadvantage"),
		NewLinkRule(`[Aa]cid [Dd]amage`, "Damage"),
		NewLinkRule(`[Bb]ludgeoning [Dd]amage`, "Damage"),
		NewLinkRule(`[Cc]old [Dd]amage`, "Damage"),
		NewLinkRule(`[Ff]ire [Dd]amage`, "Damage"),
		NewLinkRule(`[Ff]orce [Dd]amage`, "Damage"),
		NewLinkRule(`[Ll]ightning [Dd]amage`, "Damage"),
		NewLinkRule(`[Nn]ecrotic [Dd]amage`, "Damage"),
		NewLinkRule(`[Pp]iercing [Dd]amage`, "Damage"),
		NewLinkRule(`[Pp]oison [Dd]amage`, "Damage"),
		NewLinkRule(`[Pp]sychic [Dd]amage`, "Damage"),
		NewLinkRule(`[Rr]adiant [Dd]amage`, "Damage"),
		NewLinkRule(`[Ss]lashing [Dd]amage`, "Damage"),
		NewLinkRule(`[Tt]hunder [Dd]amage`, "Damage"),
	}
)

// CommonLinks returns the shared keyword rule list in application order.
// withDC inserts the Difficulty Class rule right after Armor Class.
func CommonLinks(withDC bool) []LinkRule {
	rules := make([]LinkRule, 0, len(leadingLinks)+1+len(trailingLinks))
	rules = append(rules, leadingLinks...)
	if withDC {
		rules = append(rules, difficultyClassLink)
	}
	return append(rules, trailingLinks...)
}
