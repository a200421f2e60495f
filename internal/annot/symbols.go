package annot

import "strings"

// Musical symbols get smart sizing: a note glyph or dynamic marking at
// regular annotation sizes would be unreadably small on a full page.
var musicalSymbols = map[string]bool{
	"\U0001D15E": true, // minim
	"♩":          true,
	"♩.":         true,
	"♪":          true,
	"pp":         true,
	"p":          true,
	"mp":         true,
	"mf":         true,
	"f":          true,
	"ff":         true,
	"sfz":        true,
	"cresc":      true,
	"dim":        true,
}

// IsMusicalSymbol reports whether text renders as a music glyph or
// dynamic marking rather than prose.
func IsMusicalSymbol(text string) bool {
	return musicalSymbols[strings.TrimSpace(text)]
}

// EffectiveFontSize converts an annotation size into the point size the
// text renders at. Musical symbols are scaled up 6x.
func EffectiveFontSize(size int, text string) int {
	pt := 12 + ClampSize(size)*4
	if IsMusicalSymbol(text) {
		pt = int(float64(pt) * 6.0)
	}
	return pt
}
