package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/rs/zerolog"

	"github.com/dvloznov/pay-watcher/internal/aiparse"
	"github.com/dvloznov/pay-watcher/internal/archive"
	"github.com/dvloznov/pay-watcher/internal/config"
	infra "github.com/dvloznov/pay-watcher/internal/infra/bigquery"
	"github.com/dvloznov/pay-watcher/internal/ledger"
	"github.com/dvloznov/pay-watcher/internal/logger"
	"github.com/dvloznov/pay-watcher/internal/notionledger"
	"github.com/dvloznov/pay-watcher/internal/payment"
	"github.com/dvloznov/pay-watcher/internal/provider"
	"github.com/dvloznov/pay-watcher/internal/testmail"
	"github.com/dvloznov/pay-watcher/internal/watch"
)

const version = "0.1.0"

func main() {
	fs := ff.NewFlagSet("pay-watcher")
	var (
		testmailKey = fs.StringLong("testmail-api-key", "", "testmail.app API key")
		testmailNS  = fs.StringLong("testmail-namespace", "", "testmail.app namespace")
		notionToken = fs.StringLong("notion-token", "", "Notion API token for the ledger database")
		notionDBID  = fs.StringLong("notion-db-id", "", "Notion ledger database ID")
		bqProject   = fs.StringLong("bq-project", "", "BigQuery project for the transaction archive (optional)")
		bqDataset   = fs.StringLong("bq-dataset", "", "BigQuery dataset for the transaction archive (optional)")
		bucket      = fs.StringLong("archive-bucket", "", "GCS bucket for unparseable email bodies (optional)")
		geminiModel = fs.StringLong("gemini-model", "", "Gemini model for fallback extraction (optional; needs GEMINI_API_KEY)")
		debug       = fs.BoolLong("debug", "Enable debug logging")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("PAY_WATCHER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New()
	if !*debug {
		log = log.Level(zerolog.InfoLevel)
	}

	cfg := config.Config{
		TestmailAPIKey:    *testmailKey,
		TestmailNamespace: *testmailNS,
		NotionToken:       *notionToken,
		NotionDatabaseID:  *notionDBID,
		BigQueryProject:   *bqProject,
		BigQueryDataset:   *bqDataset,
		ArchiveBucket:     *bucket,
		GeminiModel:       *geminiModel,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Splash, as the watcher is usually left running in a terminal.
	fmt.Print("\x1bc")
	fmt.Printf("\x1b[1m\x1b[38;5;172m\n   pay-watcher %s\n\x1b[0m\n", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	exporter := notionledger.NewExporter(notionledger.NewNotionClient(cfg.NotionToken), cfg.NotionDatabaseID)

	var repo *infra.Repository
	if cfg.ArchiveEnabled() {
		var err error
		repo, err = infra.NewRepository(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize BigQuery archive")
		}
		defer repo.Close()
		log.Info().Str("project", cfg.BigQueryProject).Str("dataset", cfg.BigQueryDataset).Msg("Transaction archive enabled")
		// Query the archive up front so a misconfigured dataset surfaces at
		// startup rather than on the first poll.
		if recent, err := repo.ListRecent(ctx, 5); err != nil {
			log.Warn().Err(err).Msg("Could not read recent archive rows")
		} else {
			log.Info().Int("recent_rows", len(recent)).Msg("Transaction archive reachable")
			for _, row := range recent {
				log.Debug().
					Str("provider", row.Provider).
					Str("merchant", row.Merchant).
					Int64("amount", row.Amount).
					Msg("Recently archived transaction")
			}
		}
	}

	var uploader *archive.Uploader
	if cfg.ArchiveBucket != "" {
		var err error
		uploader, err = archive.New(ctx, cfg.ArchiveBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize mail archive bucket")
		}
		defer uploader.Close()
		log.Info().Str("bucket", cfg.ArchiveBucket).Msg("Mail archive enabled")
	}

	var extractor *aiparse.Extractor
	if cfg.GeminiModel != "" {
		var err error
		extractor, err = aiparse.New(ctx, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize fallback extractor")
		}
		log.Info().Str("model", cfg.GeminiModel).Msg("Fallback extraction enabled")
	}

	var wg sync.WaitGroup
	for _, p := range provider.All() {
		client := testmail.NewClient(cfg.TestmailAPIKey, cfg.TestmailNamespace, p.Tag())
		w := watch.New(client, p, log)
		if uploader != nil {
			w.SetArchiver(uploader)
		}
		if extractor != nil {
			w.SetFallback(extractor)
		}

		name := p.Name()

		// Console notice for each extracted transaction.
		w.Subscribe(func(_ context.Context, batch []payment.Transaction) {
			for _, tx := range batch {
				log.Info().
					Str("provider", name).
					Str("date", tx.Date).
					Str("merchant", tx.Merchant).
					Int64("amount", tx.Amount).
					Msg("New transaction")
			}
		})

		// Ledger export, detached so a slow or failing export never delays
		// the next poll.
		w.Subscribe(func(_ context.Context, batch []payment.Transaction) {
			entries := ledger.FromBatch(name, batch)
			if len(entries) == 0 {
				return
			}
			go func() {
				exportCtx, exportCancel := context.WithTimeout(context.Background(), 5*time.Minute)
				defer exportCancel()
				exportCtx = logger.WithContext(exportCtx, log)
				if err := exporter.Export(exportCtx, entries); err != nil {
					log.Error().Err(err).Str("provider", name).Msg("Ledger export failed")
				}
			}()
		})

		if repo != nil {
			// Detached like the ledger export so a slow insert never delays
			// the next poll.
			w.Subscribe(func(_ context.Context, batch []payment.Transaction) {
				if len(batch) == 0 {
					return
				}
				go func() {
					insertCtx, insertCancel := context.WithTimeout(context.Background(), 5*time.Minute)
					defer insertCancel()
					if err := repo.InsertTransactions(insertCtx, name, batch); err != nil {
						log.Error().Err(err).Str("provider", name).Msg("Failed to archive transactions")
					}
				}()
			})
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
	}

	log.Info().Int("watchers", len(provider.All())).Msg("Watching for payment notifications")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	cancel()
	wg.Wait()
}
