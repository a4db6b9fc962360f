// Package payment defines the canonical transaction record extracted from
// provider notification emails, plus the field transforms shared by the
// provider parsers.
package payment

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Transaction is one payment extracted from a single notification email.
// Amount is in yen (minor units); positive for spending, negative for a
// balance top-up so downstream ledger logic can treat both uniformly.
type Transaction struct {
	// Date in canonical YYYY/MM/DD form.
	Date string

	// Merchant display label. Parsers append a bracketed provider tag
	// (e.g. " [JAL Pay]"); top-up notifications use a fixed provider label.
	Merchant string

	// Amount in yen. Positive = spend, negative = top-up.
	Amount int64

	// Breakdown is set only by providers that settle part of a payment with
	// points. When set, Points + Cash equals Amount.
	Breakdown *Breakdown
}

// Breakdown splits a payment into its points-redeemed and cash channels.
type Breakdown struct {
	Points int64
	Cash   int64
}

// Valid reports whether the transaction carries enough information to be
// forwarded to subscribers. Records failing this check are logged and dropped.
func (t Transaction) Valid() bool {
	return t.Date != "" && t.Merchant != "" && t.Amount != 0
}

// ParseYen parses a yen amount string as it appears in notification emails,
// e.g. "12,345円". Thousands separators and the currency suffix are stripped.
func ParseYen(value string) (int64, error) {
	s := strings.TrimSpace(value)
	s = strings.TrimSuffix(s, "円")
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse yen amount %q: %w", value, err)
	}
	return n, nil
}

// NormalizeDate converts a Japanese-style datetime value such as
// "2025年05月01日 12:00" to "2025/05/01". Anything after the first space
// (the time of day) is dropped.
func NormalizeDate(value string) string {
	s := strings.TrimSpace(value)
	if i := strings.IndexAny(s, " 　"); i != -1 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "年", "/")
	s = strings.ReplaceAll(s, "月", "/")
	s = strings.ReplaceAll(s, "日", "")
	return s
}

// DateOf formats a timestamp as a canonical YYYY/MM/DD date. The original
// notifications are timestamped in UTC, so the UTC calendar day is used.
func DateOf(t time.Time) string {
	return t.UTC().Format("2006/01/02")
}
