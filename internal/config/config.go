package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// HTTP server
	APIAddr string
	APIKey  string
	DevMode bool

	// Solana RPC
	RPCUrl       string
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// Helius (metadata + recent transactions)
	HeliusBaseURL string
	HeliusAPIKey  string

	// Telegram
	BotToken    string
	AlertChatID int64

	// Redis (operator toggles)
	RedisAddr string

	// Pipeline behaviour
	BatchRateCap  int
	BypassFilters bool
	AutoExecute   bool

	// Buy executor
	SwapBaseURL      string
	WalletPrivateKey string
	BuyAmountSOL     float64
}

func Load() *Config {
	return &Config{
		APIAddr: getEnv("API_ADDR", ":8080"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		RPCUrl:       getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 3),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 2*time.Second),

		HeliusBaseURL: getEnv("HELIUS_BASE_URL", "https://api.helius.xyz"),
		HeliusAPIKey:  getEnv("HELIUS_API_KEY", ""),

		BotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		AlertChatID: getInt64Env("TELEGRAM_ALERT_CHAT_ID", 0),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		BatchRateCap:  getIntEnv("BATCH_RATE_CAP", 5),
		BypassFilters: getBoolEnv("BYPASS_FILTERS", false),
		AutoExecute:   getBoolEnv("AUTO_EXECUTE", false),

		SwapBaseURL:      getEnv("SWAP_BASE_URL", "https://api.jup.ag/swap/v1"),
		WalletPrivateKey: getEnv("WALLET_PRIVATE_KEY", ""),
		BuyAmountSOL:     getFloatEnv("BUY_AMOUNT_SOL", 0.1),
	}
}

// Validate checks that required credentials are present.
func (c *Config) Validate() error {
	if c.HeliusAPIKey == "" {
		return fmt.Errorf("HELIUS_API_KEY is required")
	}
	if c.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.AlertChatID == 0 {
		return fmt.Errorf("TELEGRAM_ALERT_CHAT_ID is required")
	}
	if c.BatchRateCap < 1 {
		return fmt.Errorf("BATCH_RATE_CAP must be at least 1")
	}
	if c.AutoExecute && c.WalletPrivateKey == "" {
		return fmt.Errorf("WALLET_PRIVATE_KEY is required when AUTO_EXECUTE is enabled")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getInt64Env(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
