// Package parser implements the notification extraction engine: it
// normalizes forwarded notification text, recognizes which institution
// produced it, and pulls out the fields of a transfer candidate.
package parser

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/birrflow/birrflow/internal/common"
	"github.com/birrflow/birrflow/internal/model"
	"github.com/birrflow/birrflow/internal/provider"
)

// UnknownProvider labels candidates produced by the generic fallback pass.
const UnknownProvider = "Unknown Ethiopian Bank"

// genericPatterns are provider-agnostic fallbacks tried in order after every
// provider grammar has failed. Named capture groups keep field meaning
// explicit instead of relying on positional group indexes.
var genericPatterns = []*regexp.Regexp{
	// Amount from account, with date.
	regexp.MustCompile(`(?i)ETB\s*(?P<amount>[\d,]+\.?\d*).*?from.*?(?P<party>\d{13,}).*?on\s*(?P<date>\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	// Received amount from phone.
	regexp.MustCompile(`(?i)received\s*ETB\s*(?P<amount>[\d,]+\.?\d*).*?from\s*(?P<party>\+251\d{9})`),
	// Amount credited to account.
	regexp.MustCompile(`(?i)Account\s*(?P<party>\d+).*?credited.*?ETB\s*(?P<amount>[\d,]+\.?\d*)`),
	// Bare amount with a transfer verb.
	regexp.MustCompile(`(?i)ETB\s*(?P<amount>[\d,]+\.?\d*).*?(?:credited|received|transferred)`),
}

// Engine turns raw notification text into transfer candidates. It is pure
// and stateless; a single Engine is safe for concurrent use.
type Engine struct {
	now       func() time.Time
	providers []provider.Grammar
}

// NewEngine creates an extraction engine over the static provider registry.
func NewEngine() *Engine {
	return &Engine{
		now:       time.Now,
		providers: provider.Providers(),
	}
}

// Parse extracts a transfer candidate from raw notification text.
//
// The provider-specific pass runs first: grammars are gated by keyword
// containment and their patterns tried in declared order, first match wins.
// Only when no provider matches does the generic fallback pass run. A text
// that matches nothing yields ErrUnrecognizedFormat; a match without a
// resolvable amount yields ErrMissingAmount. Both are expected, recoverable
// outcomes.
func (e *Engine) Parse(rawText string) (*model.TransferCandidate, error) {
	text := Normalize(rawText)
	now := e.now()

	for _, grammar := range e.providers {
		if !grammar.MatchesKeyword(text) {
			continue
		}
		idx, ok := grammar.FirstMatch(text)
		if !ok {
			continue
		}
		candidate := extractFields(text, grammar, now)
		if candidate.Amount <= 0 {
			return nil, common.NewUserError(
				"could not find a transfer amount in the message",
				common.ErrMissingAmount,
			)
		}
		slog.Debug("provider pattern matched",
			"provider", grammar.Key,
			"pattern_index", idx,
			"reference", candidate.Reference)
		return &candidate, nil
	}

	return e.parseGeneric(text, now)
}

// parseGeneric handles notifications from unmodeled institutions using the
// ordered provider-agnostic patterns.
func (e *Engine) parseGeneric(text string, now time.Time) (*model.TransferCandidate, error) {
	for _, re := range genericPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		groups := namedGroups(re, m)
		amount, ok := parseAmount(groups["amount"])
		if !ok {
			continue
		}

		candidate := model.TransferCandidate{
			BankName:    UnknownProvider,
			Amount:      amount,
			Description: "Transfer",
			Reference:   synthesizeReference(genericRefPrefix, now),
			Date:        findDate(text, now),
			Balance:     findBalance(text),
			RawMessage:  text,
		}

		// A counterparty that looks like a phone number (international
		// prefix or local mobile length) is assigned as one; anything
		// else is an account number.
		if party := groups["party"]; party != "" {
			if strings.HasPrefix(party, "+251") || len(party) == 10 {
				candidate.PhoneNumber = party
			} else {
				candidate.AccountNumber = party
			}
		}

		slog.Debug("generic pattern matched", "reference", candidate.Reference)
		return &candidate, nil
	}

	return nil, common.NewUserError(
		"could not extract transfer details from the message",
		common.ErrUnrecognizedFormat,
	)
}

// namedGroups maps the regexp's named capture groups to their matched values.
func namedGroups(re *regexp.Regexp, match []string) map[string]string {
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(match) {
			groups[name] = match[i]
		}
	}
	return groups
}
