package textutil

import (
	"strings"
	"unicode"
)

// Sentence terminators recognized by the splitter.
const terminators = ".!?"

// abbreviations that should not end a sentence even though they carry a
// trailing period.
var abbreviations = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "sr": {}, "jr": {},
	"st": {}, "vs": {}, "etc": {}, "inc": {}, "ltd": {}, "co": {}, "corp": {},
	"gov": {}, "sen": {}, "rep": {}, "gen": {}, "u.s": {}, "u.k": {}, "e.g": {}, "i.e": {},
}

// SplitSentences splits text into sentences on terminator punctuation,
// keeping abbreviations, decimals, and initials intact. The final fragment is
// returned even without a terminator.
func SplitSentences(text string) []string {
	sentences, rest := splitComplete(text)
	if trimmed := strings.TrimSpace(rest); trimmed != "" {
		sentences = append(sentences, trimmed)
	}
	return sentences
}

// SplitSentencesPartial splits text into complete sentences and returns the
// trailing fragment that has not been terminated yet. Window-based callers
// carry the remainder forward and prefix it onto the next window so no
// sentence is ever split across a window boundary.
func SplitSentencesPartial(text string) (sentences []string, remainder string) {
	return splitComplete(text)
}

func splitComplete(text string) (sentences []string, remainder string) {
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		if !strings.ContainsRune(terminators, runes[i]) {
			continue
		}

		// Swallow runs of terminators ("?!", "...").
		end := i
		for end+1 < len(runes) && strings.ContainsRune(terminators, runes[end+1]) {
			end++
		}

		if runes[i] == '.' && !isBoundary(runes, start, i) {
			i = end
			continue
		}

		// Include trailing closing quotes in the sentence.
		for end+1 < len(runes) && (runes[end+1] == '"' || runes[end+1] == '\'' || runes[end+1] == '”') {
			end++
		}

		if sent := strings.TrimSpace(string(runes[start : end+1])); sent != "" {
			sentences = append(sentences, sent)
		}
		start = end + 1
		i = end
	}

	return sentences, string(runes[start:])
}

// isBoundary reports whether the period at position i is a genuine sentence
// boundary rather than a decimal point, initial, or abbreviation.
func isBoundary(runes []rune, start, i int) bool {
	// Decimal number: digit on both sides.
	if i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
		return false
	}

	// Followed immediately by a lowercase letter ("example.com").
	if i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
		return false
	}

	// Preceding word is a known abbreviation or a single initial.
	word := precedingWord(runes, start, i)
	if len(word) == 1 && unicode.IsUpper([]rune(word)[0]) {
		return false
	}
	if _, abbr := abbreviations[strings.ToLower(word)]; abbr {
		return false
	}

	return true
}

func precedingWord(runes []rune, start, i int) string {
	j := i - 1
	for j >= start && !unicode.IsSpace(runes[j]) {
		j--
	}
	return string(runes[j+1 : i])
}

// FilterSentences keeps sentences of at least minLength bytes that contain
// alphanumeric content.
func FilterSentences(sentences []string, minLength int) []string {
	kept := make([]string, 0, len(sentences))
	for _, sent := range sentences {
		sent = strings.TrimSpace(sent)
		if len(sent) >= minLength && HasAlphanumeric(sent) {
			kept = append(kept, sent)
		}
	}
	return kept
}
