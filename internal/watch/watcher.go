// Package watch runs the polling loop for one payment provider: fetch new
// mail since the last successful poll, extract transactions, and fan the
// batch out to subscribers.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/pay-watcher/internal/payment"
	"github.com/dvloznov/pay-watcher/internal/provider"
	"github.com/dvloznov/pay-watcher/internal/testmail"
)

// Source fetches the emails received since the given timestamp.
type Source interface {
	Fetch(ctx context.Context, since time.Time) ([]testmail.Email, error)
}

// Subscriber receives every poll's batch of valid transactions, in
// subscription order. The batch may be empty.
type Subscriber func(ctx context.Context, batch []payment.Transaction)

// Archiver stores the body of an email the parser could not handle and
// returns a locator for operator follow-up.
type Archiver interface {
	Save(ctx context.Context, name string, body []byte) (string, error)
}

// Fallback is a second-chance extractor consulted when the deterministic
// parser produces an invalid record from a non-empty body.
type Fallback interface {
	Extract(ctx context.Context, body string) (payment.Transaction, error)
}

// Clock supplies the current time; injectable so polling and date fallbacks
// are testable.
type Clock func() time.Time

// Watcher owns the polling state for a single provider. The poll horizon is
// mutated only by the watcher's own loop goroutine, so no locking is needed.
type Watcher struct {
	source Source
	parser provider.Parser
	clock  Clock
	log    zerolog.Logger

	// Optional hooks, set before Run.
	archiver Archiver
	fallback Fallback

	// baseline bounds the first poll; the horizon is unset until the first
	// successful fetch establishes it.
	baseline time.Time
	lastSeen time.Time
	seenSet  bool

	subs []Subscriber
}

// New creates a watcher for one provider. The first poll's lower bound is
// the construction time shifted back by the provider's lookback window.
func New(source Source, parser provider.Parser, log zerolog.Logger) *Watcher {
	return NewWithClock(source, parser, log, time.Now)
}

// NewWithClock creates a watcher with an injected clock.
func NewWithClock(source Source, parser provider.Parser, log zerolog.Logger, clock Clock) *Watcher {
	return &Watcher{
		source:   source,
		parser:   parser,
		clock:    clock,
		log:      log.With().Str("provider", parser.Name()).Logger(),
		baseline: clock().Add(-parser.Lookback()),
	}
}

// SetArchiver attaches an archiver for unparseable email bodies.
func (w *Watcher) SetArchiver(a Archiver) {
	w.archiver = a
}

// SetFallback attaches a second-chance extractor.
func (w *Watcher) SetFallback(f Fallback) {
	w.fallback = f
}

// Subscribe registers a subscriber. All subscriptions must happen before Run.
func (w *Watcher) Subscribe(fn Subscriber) {
	w.subs = append(w.subs, fn)
}

// Run polls at the provider's interval until the context is cancelled.
// Ticks are consumed by this single goroutine and a poll runs to completion
// before the next tick is taken, so polls for one provider never overlap.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.parser.Interval())
	defer ticker.Stop()

	w.log.Info().
		Dur("interval", w.parser.Interval()).
		Time("baseline", w.baseline).
		Msg("Watcher started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Watcher stopped")
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll performs one fetch/parse/notify cycle.
func (w *Watcher) poll(ctx context.Context) {
	now := w.clock()

	since := w.baseline
	if w.seenSet {
		since = w.lastSeen
	}

	emails, err := w.source.Fetch(ctx, since)
	if err != nil {
		// Transport fault: keep the horizon so the next tick retries the
		// same window.
		w.log.Warn().Err(err).Time("at", now).Msg("Mail server unreachable")
		return
	}

	// Successful contact redefines the horizon, even with nothing new and
	// even on first contact.
	w.lastSeen = now
	w.seenSet = true

	batch := make([]payment.Transaction, 0, len(emails))
	for _, email := range emails {
		body := email.HTML
		if body == "" {
			body = email.Text
		}
		if body == "" {
			// Nothing to parse; not worth an operator's attention.
			continue
		}

		received := email.Timestamp
		if received.IsZero() {
			received = now
		}

		tx, err := w.parser.Parse(body, received)
		if err != nil {
			w.log.Warn().
				Err(err).
				Str("download_url", email.DownloadURL).
				Msg("Email unprocessable, skipping until operator review")
			continue
		}

		if !tx.Valid() && w.fallback != nil {
			if ftx, ferr := w.fallback.Extract(ctx, body); ferr == nil {
				tx = ftx
			} else {
				w.log.Debug().Err(ferr).Msg("Fallback extraction failed")
			}
		}

		if !tx.Valid() {
			w.discard(ctx, email, body)
			continue
		}

		batch = append(batch, tx)
	}

	w.log.Debug().
		Str("batch_id", uuid.NewString()).
		Time("poll_ts", now).
		Int("emails", len(emails)).
		Int("transactions", len(batch)).
		Msg("Poll completed")

	for _, fn := range w.subs {
		fn(ctx, batch)
	}
}

// discard logs an invalid candidate with a locator the operator can follow.
func (w *Watcher) discard(ctx context.Context, email testmail.Email, body string) {
	locator := email.DownloadURL
	if w.archiver != nil {
		name := fmt.Sprintf("%s/%s.txt", w.parser.Tag(), uuid.NewString())
		if uri, err := w.archiver.Save(ctx, name, []byte(body)); err == nil {
			locator = uri
		} else {
			w.log.Warn().Err(err).Msg("Failed to archive email body")
		}
	}
	w.log.Warn().
		Str("subject", email.Subject).
		Str("locator", locator).
		Msg("Could not extract a transaction from email")
}
