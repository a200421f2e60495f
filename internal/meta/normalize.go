package meta

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeComposer normalizes a composer name for comparison.
// "Bach, Johann Sebastian" and "Johann Sebastian Bach" produce the
// same key.
func NormalizeComposer(composer string) string {
	if composer == "" {
		return ""
	}

	// Unicode NFC normalization
	composer = norm.NFC.String(composer)

	// Lowercase
	composer = strings.ToLower(composer)

	// Trim whitespace
	composer = strings.TrimSpace(composer)

	// Handle "Lastname, Firstname" -> "firstname lastname"
	if last, first, ok := strings.Cut(composer, ","); ok {
		composer = strings.TrimSpace(first) + " " + strings.TrimSpace(last)
	}

	// Remove common punctuation
	composer = removePunctuation(composer)

	// Collapse multiple spaces
	composer = collapseWhitespace(composer)

	return composer
}

// NormalizeTitle normalizes a score title for comparison. Edition and
// arrangement suffixes are stripped so reprints of the same piece
// produce the same key.
func NormalizeTitle(title string) string {
	if title == "" {
		return ""
	}

	// Unicode NFC normalization
	title = norm.NFC.String(title)

	// Lowercase
	title = strings.ToLower(title)

	// Trim whitespace
	title = strings.TrimSpace(title)

	// Remove edition suffixes, e.g. "Air (arr. Smith)" -> "air"
	title = removeEditionSuffixes(title)

	// Remove common punctuation
	title = removePunctuation(title)

	// Collapse whitespace
	title = collapseWhitespace(title)

	return title
}

// CleanString performs basic string cleaning (Unicode, trim, collapse)
func CleanString(s string) string {
	if s == "" {
		return ""
	}

	// Unicode NFC normalization
	s = norm.NFC.String(s)

	// Trim whitespace
	s = strings.TrimSpace(s)

	// Collapse whitespace
	s = collapseWhitespace(s)

	return s
}

// removePunctuation removes common punctuation characters
func removePunctuation(s string) string {
	// Remove: . , ! ? ' " : ; - /
	replacer := strings.NewReplacer(
		".", "",
		",", "",
		"!", "",
		"?", "",
		"'", "",
		"\"", "",
		":", "",
		";", "",
		"-", " ",
		"_", " ",
		"&", "and",
		"/", "",
	)
	return replacer.Replace(s)
}

// collapseWhitespace replaces multiple spaces with a single space
func collapseWhitespace(s string) string {
	re := regexp.MustCompile(`\s+`)
	return strings.TrimSpace(re.ReplaceAllString(s, " "))
}

// removeEditionSuffixes strips edition and arrangement qualifiers so
// different engravings of the same piece compare equal. Opus and
// catalogue numbers stay: they identify the piece, not the edition.
func removeEditionSuffixes(s string) string {
	patterns := []string{
		// Parentheses: (arr. Smith), (Urtext), (Revised Edition), (Piano Reduction)
		`\s*\([^)]*?\b(arr|arranged|arrangement|transcription|transcribed|transposed|urtext|edition|ed|revised|rev|simplified|reduction|excerpt|fingered|annotated|reprint|engraving|version)\b.*?\)`,

		// Brackets: [Urtext], [arr. Smith], [2nd ed.]
		`\s*\[[^\]]*?\b(arr|arranged|arrangement|transcription|transcribed|transposed|urtext|edition|ed|revised|rev|simplified|reduction|excerpt|fingered|annotated|reprint|engraving|version)\b.*?\]`,

		// Trailing word without punctuation: "Air Urtext", "Etude Simplified"
		`\s+(urtext|simplified|revised|transposed|annotated)$`,
	}

	for _, pattern := range patterns {
		re := regexp.MustCompile(`(?i)` + pattern)
		s = re.ReplaceAllString(s, "")
	}

	return strings.TrimSpace(s)
}
