package helius

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mintwatch/mint-alert-bot/internal/models"
)

// Client talks to the Helius REST API: token metadata lookups and the
// recent-transactions feed for a program address. Calls are single-shot;
// retry policy belongs to the caller because the fetch and scan paths
// treat failures differently.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.helius.xyz"
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  strings.TrimSpace(apiKey),
		HTTP: &http.Client{
			Timeout: 12 * time.Second,
		},
	}
}

type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("helius http %d", e.StatusCode)
	}
	return fmt.Sprintf("helius http %d: %s", e.StatusCode, b)
}

// IsRateLimited reports whether err is an HTTP 429 from the API.
func IsRateLimited(err error) bool {
	he, ok := err.(*HTTPError)
	return ok && he.StatusCode == http.StatusTooManyRequests
}

// TokenMetadata fetches partial token info for the given mint accounts.
func (c *Client) TokenMetadata(ctx context.Context, mints []string) ([]TokenInfo, error) {
	if len(mints) == 0 {
		return nil, fmt.Errorf("at least one mint is required")
	}

	payload, err := json.Marshal(MetadataRequest{MintAccounts: mints})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata request: %w", err)
	}

	u := fmt.Sprintf("%s/v0/token-metadata?api-key=%s", c.BaseURL, url.QueryEscape(c.APIKey))
	body, err := c.do(ctx, http.MethodPost, u, payload)
	if err != nil {
		return nil, err
	}

	var out []TokenInfo
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode metadata response: %w", err)
	}
	return out, nil
}

// RecentTransactions fetches the latest enhanced transactions involving the
// given program address. The returned events have the same shape as webhook
// deliveries.
func (c *Client) RecentTransactions(ctx context.Context, program string, limit int) ([]models.RawEvent, error) {
	if strings.TrimSpace(program) == "" {
		return nil, fmt.Errorf("program address is required")
	}
	if limit <= 0 {
		limit = 5
	}

	u := fmt.Sprintf("%s/v0/addresses/%s/transactions?api-key=%s&limit=%s",
		c.BaseURL, url.PathEscape(program), url.QueryEscape(c.APIKey), strconv.Itoa(limit))

	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var out []models.RawEvent
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode transactions response: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: res.StatusCode, Body: body}
	}
	return body, nil
}
