// Package config holds the daemon's settings. The struct is built once in
// main and passed into constructors; nothing reads the environment after
// startup.
package config

import (
	"fmt"
	"strings"
)

// Config is the full set of daemon settings.
type Config struct {
	// Required: testmail.app credentials and namespace.
	TestmailAPIKey    string
	TestmailNamespace string

	// Required: ledger database credentials.
	NotionToken      string
	NotionDatabaseID string

	// Optional: BigQuery audit archive; both must be set to enable it.
	BigQueryProject string
	BigQueryDataset string

	// Optional: GCS bucket for unparseable email bodies.
	ArchiveBucket string

	// Optional: Gemini model for second-chance extraction; empty disables it.
	// The API key comes from the GEMINI_API_KEY environment variable read by
	// the genai client.
	GeminiModel string
}

// Validate reports every missing required setting at once, so the operator
// fixes the environment in a single round trip.
func (c Config) Validate() error {
	var missing []string
	if c.TestmailAPIKey == "" {
		missing = append(missing, "testmail-api-key")
	}
	if c.TestmailNamespace == "" {
		missing = append(missing, "testmail-namespace")
	}
	if c.NotionToken == "" {
		missing = append(missing, "notion-token")
	}
	if c.NotionDatabaseID == "" {
		missing = append(missing, "notion-db-id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ArchiveEnabled reports whether the BigQuery audit archive is configured.
func (c Config) ArchiveEnabled() bool {
	return c.BigQueryProject != "" && c.BigQueryDataset != ""
}
