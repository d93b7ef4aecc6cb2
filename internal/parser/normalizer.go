package parser

import "strings"

// currencyReplacer rewrites the Amharic birr notation to the canonical ETB
// code. The period-suffixed form is listed first so "ብር." does not leave a
// stray period behind.
var currencyReplacer = strings.NewReplacer(
	"ብር.", "ETB",
	"ብር", "ETB",
)

// Normalize collapses whitespace runs (including newlines) to single spaces,
// trims the ends, and rewrites birr notation to ETB. It is pure and
// idempotent: normalizing already-normalized text is a no-op.
func Normalize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return currencyReplacer.Replace(text)
}
