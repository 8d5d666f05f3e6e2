package trade

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mintwatch/mint-alert-bot/internal/wallet"
)

const defaultSlippageBps = 300

// Executor performs best-effort buys of freshly accepted tokens: quote,
// build, sign, submit. No confirmation polling — submission is the end of
// the guarantee.
type Executor struct {
	client *SwapClient
	wallet *wallet.Wallet
	logger *logrus.Logger

	amountLamports uint64
	slippageBps    int
}

// ExecutorConfig holds construction parameters for an Executor.
type ExecutorConfig struct {
	Client       *SwapClient
	Wallet       *wallet.Wallet
	Logger       *logrus.Logger
	BuyAmountSOL float64
	SlippageBps  int
}

func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("swap client is required")
	}
	if cfg.Wallet == nil {
		return nil, fmt.Errorf("wallet is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.BuyAmountSOL <= 0 {
		return nil, fmt.Errorf("buy amount must be positive")
	}
	if cfg.SlippageBps <= 0 {
		cfg.SlippageBps = defaultSlippageBps
	}

	return &Executor{
		client:         cfg.Client,
		wallet:         cfg.Wallet,
		logger:         cfg.Logger,
		amountLamports: uint64(cfg.BuyAmountSOL * 1e9),
		slippageBps:    cfg.SlippageBps,
	}, nil
}

// Buy swaps the configured SOL amount into mint and returns the transaction
// signature.
func (e *Executor) Buy(ctx context.Context, mint string) (string, error) {
	quote, err := e.client.Quote(ctx, mint, e.amountLamports, e.slippageBps)
	if err != nil {
		return "", fmt.Errorf("quote failed: %w", err)
	}

	rawTx, err := e.client.SwapTransaction(ctx, quote, e.wallet.Address())
	if err != nil {
		return "", fmt.Errorf("swap build failed: %w", err)
	}

	sig, err := e.wallet.SignAndSendRaw(ctx, rawTx)
	if err != nil {
		return "", fmt.Errorf("submit failed: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"mint":      mint,
		"signature": sig,
		"lamports":  e.amountLamports,
	}).Info("buy submitted")
	return sig, nil
}
