package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrRateLimited is returned by doRequest when the node answers 429.
var ErrRateLimited = errors.New("rate limited (429)")

// Client is an HTTP client with retry and timeout support for Solana RPC
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logrus.Logger
}

// ClientConfig holds configuration for the RPC client
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *logrus.Logger
}

// NewClient creates a new RPC client with retry support
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:      cfg.BaseURL,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       cfg.Logger,
	}
}

// Call makes a JSON-RPC call with retry logic
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": backoff,
				"method":  method,
			}).Debug("retrying RPC call")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2 // exponential backoff
		}

		resp, err := c.doRequest(ctx, data)
		if err != nil {
			lastErr = err
			continue
		}

		if err := json.Unmarshal(resp, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

// GetMintState fetches the parsed mint account for a token: total supply,
// decimals and the two authority slots. A nil authority in the account data
// means the authority has been revoked.
func (c *Client) GetMintState(ctx context.Context, mint string) (*MintState, error) {
	params := []interface{}{
		mint,
		map[string]interface{}{"encoding": "jsonParsed"},
	}

	var result AccountInfoResponse
	if err := c.Call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}

	if result.Error != nil {
		return nil, result.Error
	}
	if result.Result == nil || result.Result.Value == nil {
		return nil, fmt.Errorf("mint account not found: %s", mint)
	}

	parsed := result.Result.Value.Data.Parsed
	if parsed.Type != "mint" {
		return nil, fmt.Errorf("account %s is not a mint (type=%s)", mint, parsed.Type)
	}

	info := parsed.Info
	state := &MintState{
		Supply:            info.Supply,
		Decimals:          info.Decimals,
		MintAuthority:     info.MintAuthority,
		FreezeAuthority:   info.FreezeAuthority,
		MintAuthRevoked:   info.MintAuthority == "",
		FreezeAuthRevoked: info.FreezeAuthority == "",
	}
	return state, nil
}

// UISupply converts the raw supply string to whole-token units.
// Returns false when the supply cannot be parsed.
func (s *MintState) UISupply() (float64, bool) {
	raw, ok := new(big.Float).SetString(s.Supply)
	if !ok {
		return 0, false
	}
	div := new(big.Float).SetFloat64(1)
	for i := 0; i < s.Decimals; i++ {
		div.Mul(div, big.NewFloat(10))
	}
	out, _ := new(big.Float).Quo(raw, div).Float64()
	return out, true
}
