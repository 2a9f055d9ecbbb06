package builder

import (
	"regexp"
	"strings"
)

// biasedReplacements maps emotionally loaded wording to neutral phrasing.
// The description is fused from many outlets; scrubbing keeps one outlet's
// editorial tone from leaking into the canonical text.
var biasedReplacements = map[string]string{
	"slams":       "criticizes",
	"slammed":     "criticized",
	"blasts":      "criticizes",
	"blasted":     "criticized",
	"rips":        "criticizes",
	"ripped":      "criticized",
	"shocking":    "notable",
	"outrageous":  "controversial",
	"disastrous":  "damaging",
	"radical":     "far-reaching",
	"destroys":    "defeats",
	"destroyed":   "defeated",
	"bombshell":   "significant",
	"stunning":    "surprising",
	"chaos":       "disruption",
	"catastrophe": "serious setback",
}

var biasedPattern = compileBiasedPattern()

func compileBiasedPattern() *regexp.Regexp {
	words := make([]string, 0, len(biasedReplacements))
	for word := range biasedReplacements {
		words = append(words, regexp.QuoteMeta(word))
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`)
}

// ScrubBiasedWords replaces loaded wording with neutral equivalents,
// preserving leading capitalization.
func ScrubBiasedWords(text string) string {
	return biasedPattern.ReplaceAllStringFunc(text, func(match string) string {
		replacement, ok := biasedReplacements[strings.ToLower(match)]
		if !ok {
			return match
		}
		if match[0] >= 'A' && match[0] <= 'Z' {
			return strings.ToUpper(replacement[:1]) + replacement[1:]
		}
		return replacement
	})
}
