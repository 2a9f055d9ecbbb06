// Package textutil provides text cleaning, sentence splitting, and the
// lexical similarity primitives shared by the selection and summarization
// components.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

// cleaningStages are applied in order by Clean. Each stage strips one class
// of noise that scraped article text commonly carries.
var cleaningStages = []struct {
	pattern *regexp.Regexp
	replace string
}{
	// HTML-like tags
	{regexp.MustCompile(`<[^>]+>`), ""},
	// URLs of all types
	{regexp.MustCompile(`https?://\S+|www\.\S+`), ""},
	// Outlet attributions trailing a title ("... - CNN", "... - Reuters")
	{regexp.MustCompile(`(?i)\s*-\s*(ABC|NBC|Fox|CNN|MSNBC|News|Twitter|X|Facebook|Reddit|Instagram|Yahoo|Reuters|ESPN|The\s*Athletic)\b.*$`), ""},
	// Alert-style prefixes
	{regexp.MustCompile(`(?i)^(Page\s*Unavailable\s*-?|BREAKING\s*:?|ALERT\s*:?)`), ""},
	// Ellipses and runs of punctuation
	{regexp.MustCompile(`\.{3,}`), " "},
	// Repeated "No Title" placeholders
	{regexp.MustCompile(`(?i)^(No\s*Title\s*)+`), ""},
	// Syndication suffixes
	{regexp.MustCompile(`(?i)\s*originally\s*appeared\s*on.*$`), ""},
	{regexp.MustCompile(`(?i)\s*is part of the\s*.*\s*family of brands`), ""},
	// Whitespace normalization runs last
	{regexp.MustCompile(`\s+`), " "},
}

var quoteReplacer = strings.NewReplacer(`"`, "", "'", "", "“", "", "”", "")

// Clean normalizes scraped text: strips markup remnants, URLs, outlet
// attributions, and stray quoting, then collapses whitespace.
func Clean(text string) string {
	text = quoteReplacer.Replace(text)
	for _, stage := range cleaningStages {
		text = stage.pattern.ReplaceAllString(text, stage.replace)
	}
	return strings.TrimSpace(text)
}

// CleanAll cleans every string in the collection, dropping entries that end
// up empty.
func CleanAll(texts []string) []string {
	cleaned := make([]string, 0, len(texts))
	for _, t := range texts {
		if c := Clean(t); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return cleaned
}

// HasAlphanumeric reports whether the text contains at least one letter or
// digit.
func HasAlphanumeric(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
