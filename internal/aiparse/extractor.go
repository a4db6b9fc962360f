// Package aiparse is a second-chance extractor: when a provider's
// deterministic line parser gets nothing out of a notification body, the
// body is handed to Gemini with a strict-JSON prompt. Its output goes
// through the same validity filter as any parsed record.
package aiparse

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dvloznov/pay-watcher/internal/payment"
)

// DefaultModelName is the Gemini model used for extraction.
const DefaultModelName = "gemini-2.5-flash"

const extractPrompt = "You are a parser for Japanese electronic-payment notification emails.\n\n" +
	"Task:\n" +
	"- Extract the single transaction described by the attached email body.\n" +
	"- Output STRICT JSON only (no comments, no extra text).\n" +
	"- Output one JSON object with exactly these fields:\n" +
	"- \"date\": string, format \"YYYY/MM/DD\"\n" +
	"- \"merchant\": string (the store name, or the payment service name for top-ups)\n" +
	"- \"amount\": integer yen (positive for a payment, negative for a charge/top-up)\n\n" +
	"If the body describes no transaction, output {\"date\":\"\",\"merchant\":\"\",\"amount\":0}.\n" +
	"Return ONLY valid raw JSON. Do NOT wrap the response in code fences.\n"

// Extractor holds a shared Gemini client.
type Extractor struct {
	client *genai.Client
	model  string
}

// New creates an extractor. The API key is taken from the environment by the
// genai client (GEMINI_API_KEY).
func New(ctx context.Context, model string) (*Extractor, error) {
	if model == "" {
		model = DefaultModelName
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("aiparse: create genai client: %w", err)
	}
	return &Extractor{
		client: client,
		model:  model,
	}, nil
}

// Extract asks the model for the transaction described by body.
func (e *Extractor) Extract(ctx context.Context, body string) (payment.Transaction, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractPrompt},
				{Text: body},
			},
		},
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return payment.Transaction{}, fmt.Errorf("aiparse: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return payment.Transaction{}, fmt.Errorf("aiparse: empty response from model")
	}

	return decodeResult(rawText)
}

// decodeResult parses the model output into a transaction record, tolerating
// markdown fences the model was told not to emit.
func decodeResult(raw string) (payment.Transaction, error) {
	clean := cleanModelJSON(raw)

	var out struct {
		Date     string `json:"date"`
		Merchant string `json:"merchant"`
		Amount   int64  `json:"amount"`
	}
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return payment.Transaction{}, fmt.Errorf("aiparse: unmarshal JSON: %w\nraw response: %s", err, raw)
	}

	return payment.Transaction{
		Date:     out.Date,
		Merchant: out.Merchant,
		Amount:   out.Amount,
	}, nil
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: keep only from the first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
