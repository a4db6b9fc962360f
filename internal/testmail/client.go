// Package testmail is a minimal client for the testmail.app JSON API.
// Each provider's notifications arrive under a dedicated inbox tag, so the
// daemon runs one Client per tag.
package testmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultEndpoint is the testmail.app JSON API endpoint.
const DefaultEndpoint = "https://api.testmail.app/api/json"

// Email is one received message as returned by the API.
type Email struct {
	Subject     string
	From        string
	HTML        string
	Text        string
	DownloadURL string
	Timestamp   time.Time
}

// Client fetches emails for one namespace/tag pair.
type Client struct {
	apiKey    string
	namespace string
	tag       string

	// Endpoint overrides DefaultEndpoint; used by tests.
	endpoint string
	http     *http.Client
}

// NewClient creates a client bound to one inbox tag.
func NewClient(apiKey, namespace, tag string) *Client {
	return &Client{
		apiKey:    apiKey,
		namespace: namespace,
		tag:       tag,
		endpoint:  DefaultEndpoint,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithEndpoint creates a client against a custom endpoint.
func NewClientWithEndpoint(apiKey, namespace, tag, endpoint string) *Client {
	c := NewClient(apiKey, namespace, tag)
	c.endpoint = endpoint
	return c
}

// Tag returns the inbox tag this client watches.
func (c *Client) Tag() string {
	return c.tag
}

type apiResponse struct {
	Result  string     `json:"result"`
	Message string     `json:"message"`
	Count   int        `json:"count"`
	Emails  []apiEmail `json:"emails"`
}

type apiEmail struct {
	Subject     string `json:"subject"`
	From        string `json:"from"`
	HTML        string `json:"html"`
	Text        string `json:"text"`
	DownloadURL string `json:"downloadUrl"`
	Timestamp   int64  `json:"timestamp"` // epoch milliseconds
}

// Fetch returns all emails received on the client's tag since the given
// timestamp. A transport error or a non-success API result is returned as an
// error; an empty inbox is a nil error with an empty slice.
func (c *Client) Fetch(ctx context.Context, since time.Time) ([]Email, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("namespace", c.namespace)
	q.Set("tag", c.tag)
	q.Set("timestamp_from", strconv.FormatInt(since.UnixMilli(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("testmail: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("testmail: fetch tag %q: %w", c.tag, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("testmail: fetch tag %q: unexpected status %d", c.tag, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("testmail: decode response: %w", err)
	}

	if body.Result != "success" {
		return nil, fmt.Errorf("testmail: api result %q: %s", body.Result, body.Message)
	}

	emails := make([]Email, 0, len(body.Emails))
	for _, e := range body.Emails {
		emails = append(emails, Email{
			Subject:     e.Subject,
			From:        e.From,
			HTML:        e.HTML,
			Text:        e.Text,
			DownloadURL: e.DownloadURL,
			Timestamp:   time.UnixMilli(e.Timestamp),
		})
	}

	return emails, nil
}
