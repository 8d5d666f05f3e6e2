package constants

import "time"

// Tracked program and event type
const (
	// Pump.fun bonding curve program — every tracked token mint is created through it.
	PumpFunProgram = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"

	// Helius enhanced transaction type for token mint creation.
	EventTypeTokenMint = "TOKEN_MINT"
)

// Mint address shape
const (
	MintAddressMinLen = 32
	MintAddressMaxLen = 45
)

// Webhook batch rate limiting
const (
	MaxBatchesPerWindow = 5
	RateWindowDuration  = 60 * time.Second
)

// Fetch retry and scan cadence
const (
	FetchMaxAttempts = 3
	FetchBaseBackoff = 2 * time.Second
	ScanInterval     = 10 * time.Second
	ScanTxLimit      = 5
)

// Explorer deep links
const (
	ExplorerBaseURL = "https://dexscreener.com/solana/"
)
