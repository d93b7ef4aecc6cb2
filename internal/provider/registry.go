// Package provider holds the static registry of notification grammars for
// every supported Ethiopian bank and mobile-money service. The registry is
// built once at process start and shared read-only by all extraction calls.
package provider

import (
	"regexp"
	"strings"
)

// Kind distinguishes conventional banks from mobile-money services. The kind
// decides which counterparty extractor runs: banks carry account numbers,
// mobile-money services carry phone numbers.
type Kind int

// Provider kinds.
const (
	KindBank Kind = iota
	KindMobileMoney
)

// Grammar describes how one institution's notifications are recognized and
// matched. Keywords gate provider selection; Patterns are tried in declared
// order and the first match wins. Ordering is significant: stricter patterns
// come first so they pre-empt looser ones for the same institution.
type Grammar struct {
	Key      string
	Name     string
	Kind     Kind
	Keywords []string
	Patterns []*regexp.Regexp
}

// MatchesKeyword reports whether any of the grammar's detection keywords
// appears in text. Matching is case-insensitive substring containment.
func (g Grammar) MatchesKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range g.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// FirstMatch returns the index of the first pattern that matches text.
// It never searches for a best match.
func (g Grammar) FirstMatch(text string) (int, bool) {
	for i, re := range g.Patterns {
		if re.MatchString(text) {
			return i, true
		}
	}
	return 0, false
}

// mustCompile wraps regexp.MustCompile with a case-insensitive flag. A
// malformed registry entry is a programming error and panics at startup.
func mustCompile(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + pattern)
}

// registry lists all supported providers in detection order. Adding an
// institution means appending an entry here; the engine and lifecycle
// components need no changes.
var registry = []Grammar{
	{
		Key:      "cbe",
		Name:     "Commercial Bank of Ethiopia",
		Kind:     KindBank,
		Keywords: []string{"CBE", "Commercial Bank"},
		Patterns: []*regexp.Regexp{
			mustCompile(`CBE.*?Account:\s*(\d+).*?Amount:\s*ETB\s*([\d,]+\.?\d*).*?Balance:\s*ETB\s*([\d,]+\.?\d*)`),
			mustCompile(`Commercial Bank.*?Acct:\s*(\d+).*?Amt:\s*ETB\s*([\d,]+\.?\d*).*?Bal:\s*ETB\s*([\d,]+\.?\d*)`),
			mustCompile(`Dear Customer.*?(\d+)\.\s*ETB\s*([\d,]+\.?\d*)\s*credited.*?from\s*(.+?)\.\s*Avail`),
			mustCompile(`You have received ETB\s*([\d,]+\.?\d*).*?from\s*(.+?)\.\s*Acc\.\s*(\d+)`),
		},
	},
	{
		Key:      "awash",
		Name:     "Awash Bank",
		Kind:     KindBank,
		Keywords: []string{"Awash"},
		Patterns: []*regexp.Regexp{
			mustCompile(`Awash Bank.*?Account:\s*(\d+).*?Amount:\s*ETB\s*([\d,]+\.?\d*).*?Balance:\s*ETB\s*([\d,]+\.?\d*)`),
			mustCompile(`AWASH.*?Acct:\s*(\d+).*?ETB\s*([\d,]+\.?\d*)\s*credited.*?Ref:\s*(\w+)`),
		},
	},
	{
		Key:      "dashen",
		Name:     "Dashen Bank",
		Kind:     KindBank,
		Keywords: []string{"Dashen"},
		Patterns: []*regexp.Regexp{
			mustCompile(`Dashen Bank.*?Account:\s*(\d+).*?Amount:\s*ETB\s*([\d,]+\.?\d*).*?Balance:\s*ETB\s*([\d,]+\.?\d*)`),
			mustCompile(`DASHEN.*?Acct\s*(\d+).*?Amt\s*ETB\s*([\d,]+\.?\d*).*?From\s*(.+?)\.`),
		},
	},
	{
		Key:      "abyssinia",
		Name:     "Bank of Abyssinia",
		Kind:     KindBank,
		Keywords: []string{"Abyssinia"},
		Patterns: []*regexp.Regexp{
			mustCompile(`Bank of Abyssinia.*?Account:\s*(\d+).*?Amount:\s*ETB\s*([\d,]+\.?\d*).*?Balance:\s*ETB\s*([\d,]+\.?\d*)`),
			mustCompile(`ABYSSINIA.*?Acct:\s*(\d+).*?ETB\s*([\d,]+\.?\d*)\s*received.*?Ref:\s*(\w+)`),
		},
	},
	{
		Key:      "nib",
		Name:     "NIB International Bank",
		Kind:     KindBank,
		Keywords: []string{"NIB"},
		Patterns: []*regexp.Regexp{
			mustCompile(`NIB.*?Account:\s*(\d+).*?Amount:\s*ETB\s*([\d,]+\.?\d*).*?Balance:\s*ETB\s*([\d,]+\.?\d*)`),
			mustCompile(`NIB.*?Acct:\s*(\d+).*?ETB\s*([\d,]+\.?\d*)\s*credited`),
		},
	},
	{
		Key:      "telebirr",
		Name:     "Telebirr",
		Kind:     KindMobileMoney,
		Keywords: []string{"Telebirr"},
		Patterns: []*regexp.Regexp{
			mustCompile(`Telebirr.*?(\+251\d{9}).*?ETB\s*([\d,]+\.?\d*).*?from\s*(.+?)\.`),
			mustCompile(`Telebirr.*?received\s*ETB\s*([\d,]+\.?\d*).*?from\s*(\+251\d{9}).*?Transaction\s*ID:\s*(\w+)`),
			mustCompile(`Dear Customer.*?(\+251\d{9}).*?ETB\s*([\d,]+\.?\d*)\s*received.*?from\s*(.+?)\.`),
			mustCompile(`You have received ETB\s*([\d,]+\.?\d*)\s*from\s*(\+251\d{9}).*?New balance:\s*ETB\s*([\d,]+\.?\d*)`),
		},
	},
	{
		Key:      "cbe_birr",
		Name:     "CBE Birr",
		Kind:     KindMobileMoney,
		Keywords: []string{"CBE Birr"},
		Patterns: []*regexp.Regexp{
			mustCompile(`CBE Birr.*?(\+251\d{9}).*?ETB\s*([\d,]+\.?\d*).*?from\s*(.+?)\.`),
			mustCompile(`CBE Birr.*?received\s*ETB\s*([\d,]+\.?\d*).*?from\s*(\+251\d{9})`),
		},
	},
	{
		Key:      "hello_cash",
		Name:     "HelloCash",
		Kind:     KindMobileMoney,
		Keywords: []string{"HelloCash"},
		Patterns: []*regexp.Regexp{
			mustCompile(`HelloCash.*?(\+251\d{9}).*?ETB\s*([\d,]+\.?\d*).*?from\s*(.+?)\.`),
			mustCompile(`HelloCash.*?You have received ETB\s*([\d,]+\.?\d*).*?from\s*(\+251\d{9})`),
		},
	},
}

// Providers returns the registry in detection order. Callers must treat the
// returned grammars as read-only.
func Providers() []Grammar {
	return registry
}
