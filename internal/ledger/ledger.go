// Package ledger maps extracted transactions to the entry shape accepted by
// the household-ledger export.
package ledger

import (
	"github.com/dvloznov/pay-watcher/internal/payment"
)

// Entry is one ledger line. Category classifiers are two-level; they are
// currently unclassified placeholders filled by hand in the ledger UI.
type Entry struct {
	LargeCategory  string
	MiddleCategory string
	Date           string // YYYY/MM/DD
	Amount         int64
	Source         string
	Content        string
}

// UnclassifiedCategory is the placeholder classifier for both levels.
const UnclassifiedCategory = "0"

// rakutenPaySource is the Rakuten Pay provider's display name. Its cash
// channel draws on the 楽天キャッシュ balance, so its cash lines are labeled
// with that balance; ANA Pay's cash channel has no such vocabulary and keeps
// the bare merchant.
const rakutenPaySource = "楽天ペイ"

// FromBatch maps one poll's transactions to ledger entries. source is the
// provider's display name. Transactions carrying a points/cash breakdown are
// split into one line per non-zero channel so the ledger balances against
// both the point account and the cash balance; the points line is emitted
// first. An empty batch maps to no entries.
func FromBatch(source string, batch []payment.Transaction) []Entry {
	entries := make([]Entry, 0, len(batch))

	for _, tx := range batch {
		if tx.Breakdown == nil {
			entries = append(entries, Entry{
				LargeCategory:  UnclassifiedCategory,
				MiddleCategory: UnclassifiedCategory,
				Date:           tx.Date,
				Amount:         tx.Amount,
				Source:         source,
				Content:        tx.Merchant,
			})
			continue
		}

		if tx.Breakdown.Points > 0 {
			entries = append(entries, Entry{
				LargeCategory:  UnclassifiedCategory,
				MiddleCategory: UnclassifiedCategory,
				Date:           tx.Date,
				Amount:         tx.Breakdown.Points,
				Source:         source,
				Content:        tx.Merchant + " ポイント利用",
			})
		}
		if tx.Breakdown.Cash != 0 {
			content := tx.Merchant
			if source == rakutenPaySource {
				content = tx.Merchant + " 楽天キャッシュ利用"
			}
			entries = append(entries, Entry{
				LargeCategory:  UnclassifiedCategory,
				MiddleCategory: UnclassifiedCategory,
				Date:           tx.Date,
				Amount:         tx.Breakdown.Cash,
				Source:         source,
				Content:        content,
			})
		}
	}

	return entries
}
