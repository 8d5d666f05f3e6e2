package fetch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mintwatch/mint-alert-bot/internal/constants"
	"github.com/mintwatch/mint-alert-bot/internal/helius"
	"github.com/mintwatch/mint-alert-bot/internal/models"
	"github.com/mintwatch/mint-alert-bot/internal/rpc"
)

// MetadataAPI is the external token metadata endpoint.
type MetadataAPI interface {
	TokenMetadata(ctx context.Context, mints []string) ([]helius.TokenInfo, error)
}

// ChainQuery answers mint-state questions against the chain.
type ChainQuery interface {
	GetMintState(ctx context.Context, mint string) (*rpc.MintState, error)
}

// Fetcher builds enriched token records. Fetch is idempotent: repeated calls
// for the same mint only re-issue the two outbound reads.
type Fetcher struct {
	api      MetadataAPI
	chain    ChainQuery
	estimate EstimateStrategy
	logger   *logrus.Logger

	maxAttempts int
	baseBackoff time.Duration
}

// FetcherConfig holds construction parameters for a Fetcher.
type FetcherConfig struct {
	API         MetadataAPI
	Chain       ChainQuery
	Estimate    EstimateStrategy
	Logger      *logrus.Logger
	MaxAttempts int
	BaseBackoff time.Duration
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = constants.FetchMaxAttempts
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = constants.FetchBaseBackoff
	}
	if cfg.Estimate == nil {
		cfg.Estimate = DefaultSupplyEstimate()
	}

	return &Fetcher{
		api:         cfg.API,
		chain:       cfg.Chain,
		estimate:    cfg.Estimate,
		logger:      cfg.Logger,
		maxAttempts: cfg.MaxAttempts,
		baseBackoff: cfg.BaseBackoff,
	}
}

// Fetch resolves a mint into an enriched TokenRecord. Every upstream failure,
// 429 or otherwise, is retried with exponential backoff up to the attempt
// cap; the final failure returns nil instead of an error so callers treat it
// as "no data".
func (f *Fetcher) Fetch(ctx context.Context, mint string) *models.TokenRecord {
	if mint == "" {
		return nil
	}

	backoff := f.baseBackoff
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if attempt > 1 {
			f.logger.WithFields(logrus.Fields{
				"mint":    mint,
				"attempt": attempt,
				"backoff": backoff,
			}).Debug("retrying metadata fetch")

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		infos, err := f.api.TokenMetadata(ctx, []string{mint})
		if err != nil {
			if helius.IsRateLimited(err) {
				f.logger.WithField("mint", mint).Warn("metadata API rate limited")
			} else {
				f.logger.WithError(err).WithField("mint", mint).Warn("metadata fetch failed")
			}
			continue
		}

		var info helius.TokenInfo
		if len(infos) > 0 {
			info = infos[0]
		}
		return f.merge(ctx, mint, info)
	}

	f.logger.WithField("mint", mint).Error("metadata fetch exhausted retries")
	return nil
}

// merge combines metadata API fields with chain mint state, filling the gaps
// the API left with supply-derived estimates.
func (f *Fetcher) merge(ctx context.Context, mint string, info helius.TokenInfo) *models.TokenRecord {
	rec := &models.TokenRecord{
		Mint:        mint,
		Name:        info.Name,
		Liquidity:   info.Liquidity,
		MarketCap:   info.MarketCap,
		LaunchPrice: info.LaunchPrice,
		DevHolding:  info.DevHolding,
		PoolSupply:  info.PoolSupply,
		FetchedAt:   time.Now().UTC(),
	}
	if rec.Name == "" {
		rec.Name = info.Symbol
	}

	state, err := f.chain.GetMintState(ctx, mint)
	if err != nil {
		// Chain state is secondary: keep whatever the API gave us.
		f.logger.WithError(err).WithField("mint", mint).Warn("mint state query failed")
		return rec
	}

	rec.MintAuthRevoked = state.MintAuthRevoked
	rec.FreezeAuthRevoked = state.FreezeAuthRevoked

	if rec.Liquidity == nil || rec.MarketCap == nil || rec.LaunchPrice == nil {
		est := f.estimate.Estimate(state)
		if rec.Liquidity == nil {
			rec.Liquidity = est.Liquidity
		}
		if rec.MarketCap == nil {
			rec.MarketCap = est.MarketCap
		}
		if rec.LaunchPrice == nil {
			rec.LaunchPrice = est.LaunchPrice
		}
	}

	return rec
}
