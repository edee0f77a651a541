// Package category maps free-text category and institution strings to the
// canonical keys used for affinity and conflict matching.
package category

import (
	"strings"
	"unicode"
)

// Uncategorized is the canonical key for submissions with no category.
const Uncategorized = "Uncategorized"

// synonyms maps lower-cased free-text values to their canonical category.
// The table is fixed and process-wide; per-tenant tables are intentionally
// not supported.
var synonyms = map[string]string{
	"mat":         "Matemática",
	"matematica":  "Matemática",
	"matemática":  "Matemática",
	"port":        "Português",
	"portugues":   "Português",
	"português":   "Português",
	"bio":         "Biologia",
	"biologia":    "Biologia",
	"fis":         "Física",
	"fisica":      "Física",
	"física":      "Física",
	"quim":        "Química",
	"quimica":     "Química",
	"química":     "Química",
	"hist":        "História",
	"historia":    "História",
	"história":    "História",
	"geo":         "Geografia",
	"geografia":   "Geografia",
	"ing":         "Inglês",
	"ingles":      "Inglês",
	"inglês":      "Inglês",
	"info":        "Informática",
	"informatica": "Informática",
	"informática": "Informática",
	"art":         "Artes",
	"artes":       "Artes",
}

// Normalize maps a raw category string to its canonical key. Known synonyms
// resolve through the fixed table; unknown values are title-cased and kept.
// Deterministic and pure: the worst case is a pass-through normalization.
func Normalize(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return Uncategorized
	}
	if canonical, ok := synonyms[key]; ok {
		return canonical
	}
	return titleCase(key)
}

func titleCase(s string) string {
	var b strings.Builder
	prevSpace := true
	for _, r := range s {
		if prevSpace {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		prevSpace = unicode.IsSpace(r)
	}
	return b.String()
}
