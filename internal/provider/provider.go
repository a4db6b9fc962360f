// Package provider implements one notification-email parser per payment
// provider. Each parser scans the email body line by line for its own label
// vocabulary and produces a canonical payment.Transaction; unrecognized
// bodies yield the zero record, which the watcher's validity filter drops.
package provider

import (
	"time"

	"github.com/dvloznov/pay-watcher/internal/payment"
)

// Parser extracts a transaction candidate from one email body.
//
// received is the email's own receipt timestamp; parsers use it as the
// transaction date when the body carries none (top-up confirmations, and all
// Vpoint Pay notifications). Parse is pure: the same inputs always produce
// the same record.
//
// The only error Parse returns is a numeric-parse failure on a matched
// amount line; the caller treats the email as unprocessable and skips it.
type Parser interface {
	// Name is the provider's display name, also used as the ledger source.
	Name() string

	// Tag is the testmail.app inbox tag the provider's mail arrives under.
	Tag() string

	// Interval is the polling cadence for this provider's inbox.
	Interval() time.Duration

	// Lookback shifts the first poll's lower bound into the past to
	// tolerate the provider's delivery latency.
	Lookback() time.Duration

	Parse(body string, received time.Time) (payment.Transaction, error)
}

// All returns every supported provider parser.
func All() []Parser {
	return []Parser{
		RakutenPay{},
		ANAPay{},
		VpointPay{},
		JALPay{},
	}
}
