// Package bigquery archives extracted transactions to a BigQuery table so
// polls leave an audit trail that outlives the in-memory watcher state.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/pay-watcher/internal/payment"
)

const (
	transactionsTable = "transactions"
	dateFormat        = "2006/01/02"
)

// TransactionRow is one archived transaction in <dataset>.transactions.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	Provider string `bigquery:"provider"` // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	Merchant        string     `bigquery:"merchant"`         // REQUIRED
	Amount          int64      `bigquery:"amount"`           // REQUIRED, yen

	// Point/cash channels, set only for providers that split settlement.
	Points bigquery.NullInt64 `bigquery:"points"` // NULLABLE
	Cash   bigquery.NullInt64 `bigquery:"cash"`   // NULLABLE

	InsertedTS time.Time `bigquery:"inserted_ts"` // REQUIRED
}

// Repository holds a shared BigQuery client so each poll does not open a new
// connection.
type Repository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewRepository creates a repository against the given project and dataset.
func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: bigquery client: %w", err)
	}
	return &Repository{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertTransactions archives one poll's batch for the named provider.
// An empty batch is a no-op.
func (r *Repository) InsertTransactions(ctx context.Context, provider string, batch []payment.Transaction) error {
	if len(batch) == 0 {
		return nil
	}

	rows, err := rowsFromBatch(provider, batch)
	if err != nil {
		return fmt.Errorf("InsertTransactions: %w", err)
	}

	table := r.client.DatasetInProject(r.projectID, r.datasetID).Table(transactionsTable)
	if err := table.Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}

	return nil
}

// rowsFromBatch maps transactions to archive rows.
func rowsFromBatch(provider string, batch []payment.Transaction) ([]*TransactionRow, error) {
	now := time.Now()
	rows := make([]*TransactionRow, 0, len(batch))

	for _, tx := range batch {
		parsed, err := time.Parse(dateFormat, tx.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction date %q: %w", tx.Date, err)
		}

		row := &TransactionRow{
			TransactionID:   uuid.NewString(),
			Provider:        provider,
			TransactionDate: civil.DateOf(parsed),
			Merchant:        tx.Merchant,
			Amount:          tx.Amount,
			InsertedTS:      now,
		}
		if tx.Breakdown != nil {
			row.Points = bigquery.NullInt64{Int64: tx.Breakdown.Points, Valid: true}
			row.Cash = bigquery.NullInt64{Int64: tx.Breakdown.Cash, Valid: true}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ListRecent returns the most recently archived transactions, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*TransactionRow, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			provider,
			transaction_date,
			merchant,
			amount,
			points,
			cash,
			inserted_ts
		FROM %s.%s
		ORDER BY inserted_ts DESC
		LIMIT @limit
	`, r.datasetID, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: limit},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecent: iterating rows: %w", err)
		}
		rows = append(rows, &row)
	}

	return rows, nil
}
