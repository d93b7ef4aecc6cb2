package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/birrflow/birrflow/internal/model"
	"github.com/birrflow/birrflow/internal/provider"
)

// Reference prefixes for synthesized references. Provider-matched candidates
// and generic-fallback candidates get distinct prefixes so their origin stays
// visible in stored records.
const (
	providerRefPrefix = "ET"
	genericRefPrefix  = "ETB"
)

// Field sub-patterns are applied to the whole normalized text rather than the
// substring matched by the firing provider pattern, because field position
// varies per provider.
var (
	amountRe       = regexp.MustCompile(`(?i)ETB\s*([\d,]+\.?\d*)`)
	accountRe      = regexp.MustCompile(`(?i)Acc(?:oun)?t[:\s]*(\d{13,})`)
	phoneRe        = regexp.MustCompile(`\+251\d{9}|09\d{8}`)
	referenceRe    = regexp.MustCompile(`(?i)(?:Reference|Ref|Transaction\s*ID)[:\s]*(\w+)`)
	dateRe         = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
	balanceRe      = regexp.MustCompile(`(?i)Bal(?:ance)?[:\s]*ETB\s*([\d,]+\.?\d*)`)
	mobileSenderRe = regexp.MustCompile(`(?i)from\s*(.+?)(?:\.|\s+Transaction|\s+New)`)
	bankSenderRe   = regexp.MustCompile(`(?i)from\s*(.+?)(?:\.|\s+Avail|\s+Bal)`)
)

// extractFields assembles a candidate from normalized text that matched one
// of the grammar's patterns. Every field is either populated or left absent;
// absence is not an error at this layer.
func extractFields(text string, g provider.Grammar, now time.Time) model.TransferCandidate {
	c := model.TransferCandidate{
		BankName:   g.Name,
		RawMessage: text,
	}

	if amount, ok := findAmount(text); ok {
		c.Amount = amount
	}

	// The provider's kind, not the individual pattern, decides which
	// counterparty extractor runs.
	switch g.Kind {
	case provider.KindBank:
		if m := accountRe.FindStringSubmatch(text); m != nil {
			c.AccountNumber = m[1]
		}
	case provider.KindMobileMoney:
		if m := phoneRe.FindString(text); m != "" {
			c.PhoneNumber = m
		}
	}

	c.Reference = findReference(text, providerRefPrefix, now)
	c.Date = findDate(text, now)
	c.Description = findDescription(text, g)
	c.Balance = findBalance(text)

	return c
}

// findAmount searches the whole text for the canonical "ETB <decimal>" form,
// strips digit-group separators, and converts. Returns false when no
// positive amount is present anywhere in the text.
func findAmount(text string) (float64, bool) {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return parseAmount(m[1])
}

func parseAmount(raw string) (float64, bool) {
	raw = strings.ReplaceAll(raw, ",", "")
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || amount <= 0 {
		return 0, false
	}
	return amount, true
}

// findReference returns an explicitly labeled reference when present, and
// otherwise synthesizes one. Synthesized references carry a random suffix so
// near-simultaneous extractions never collide.
func findReference(text, prefix string, now time.Time) string {
	if m := referenceRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return synthesizeReference(prefix, now)
}

func synthesizeReference(prefix string, now time.Time) string {
	return prefix + now.Format("20060102150405") + "-" + uuid.NewString()[:8]
}

// findDate returns the first D[/-]M[/-]Y token parsed to a day-precision
// time, defaulting to the processing date when the text has none.
func findDate(text string, now time.Time) time.Time {
	token := dateRe.FindString(text)
	if token == "" {
		return dateOnly(now)
	}
	parts := strings.FieldsFunc(token, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return dateOnly(now)
	}
	day, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	year, _ := strconv.Atoi(parts[2])
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return dateOnly(now)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// findDescription extracts the sender following "from". Mobile-money
// notifications end the sender at a period or a Transaction/New boundary
// word; bank notifications end it at a period or an Avail/Bal boundary.
func findDescription(text string, g provider.Grammar) string {
	senderRe := bankSenderRe
	fallback := "Bank Transfer"
	if g.Kind == provider.KindMobileMoney {
		senderRe = mobileSenderRe
		fallback = g.Name + " Transfer"
	}
	if m := senderRe.FindStringSubmatch(text); m != nil {
		if sender := strings.TrimSpace(m[1]); sender != "" {
			return "From " + sender
		}
	}
	return fallback
}

// findBalance returns the post-transfer balance when a balance label is
// present, nil otherwise.
func findBalance(text string) *float64 {
	m := balanceRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	balance, ok := parseAmount(m[1])
	if !ok {
		return nil
	}
	return &balance
}
