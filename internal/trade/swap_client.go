package trade

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
)

// WSOLMint is the wrapped-SOL mint used as the input side of every buy.
const WSOLMint = "So11111111111111111111111111111111111111112"

// SwapClient covers the two aggregator endpoints the buy path needs:
// quote and swap-transaction building.
type SwapClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewSwapClient(baseURL, apiKey string) *SwapClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.jup.ag/swap/v1"
	}
	return &SwapClient{
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
		return fmt.Sprintf("swap api http %d", e.StatusCode)
	}
	return fmt.Sprintf("swap api http %d: %s", e.StatusCode, b)
}

// Quote fetches a route for swapping amount lamports of SOL into outputMint.
// The raw quote JSON is passed back verbatim to the swap endpoint.
func (c *SwapClient) Quote(ctx context.Context, outputMint string, amountLamports uint64, slippageBps int) (json.RawMessage, error) {
	if strings.TrimSpace(outputMint) == "" {
		return nil, fmt.Errorf("outputMint is required")
	}
	if amountLamports == 0 {
		return nil, fmt.Errorf("amount is required")
	}

	q := url.Values{}
	q.Set("inputMint", WSOLMint)
	q.Set("outputMint", outputMint)
	q.Set("amount", strconv.FormatUint(amountLamports, 10))
	q.Set("slippageBps", strconv.Itoa(slippageBps))

	u := c.BaseURL + "/quote?" + q.Encode()
	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// SwapTransaction asks the aggregator to build an unsigned transaction for
// the given quote. Returns the base64-encoded transaction.
func (c *SwapClient) SwapTransaction(ctx context.Context, quote json.RawMessage, userPublicKey string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"quoteResponse": quote,
		"userPublicKey": userPublicKey,
		"wrapAndUnwrapSol": true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal swap request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.BaseURL+"/swap", payload)
	if err != nil {
		return "", err
	}

	var out struct {
		SwapTransaction string `json:"swapTransaction"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode swap response: %w", err)
	}
	if out.SwapTransaction == "" {
		return "", fmt.Errorf("swap response missing transaction")
	}
	return out.SwapTransaction, nil
}

func (c *SwapClient) do(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
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
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
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
