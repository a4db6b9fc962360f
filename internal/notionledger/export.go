package notionledger

import (
	"context"
	"fmt"

	"github.com/dvloznov/pay-watcher/internal/ledger"
	"github.com/dvloznov/pay-watcher/internal/logger"
)

// Exporter submits ledger entries as pages of one Notion database.
type Exporter struct {
	service    NotionService
	databaseID string
}

// NewExporter creates an exporter bound to one ledger database.
func NewExporter(service NotionService, databaseID string) *Exporter {
	return &Exporter{
		service:    service,
		databaseID: databaseID,
	}
}

// Export creates one page per entry. Individual page failures are logged and
// counted but do not stop the remaining entries; a non-nil error summarizes
// how many entries were lost.
func (e *Exporter) Export(ctx context.Context, entries []ledger.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	log := logger.FromContext(ctx)

	failed := 0
	for _, entry := range entries {
		props := EntryToNotionProperties(entry)
		if _, err := e.service.CreatePage(ctx, e.databaseID, props); err != nil {
			failed++
			log.Error().
				Err(err).
				Str("content", entry.Content).
				Str("date", entry.Date).
				Int64("amount", entry.Amount).
				Msg("Failed to export ledger entry")
			continue
		}
	}

	log.Info().
		Int("exported", len(entries)-failed).
		Int("failed", failed).
		Msg("Ledger export finished")

	if failed > 0 {
		return fmt.Errorf("export: %d of %d entries failed", failed, len(entries))
	}
	return nil
}
