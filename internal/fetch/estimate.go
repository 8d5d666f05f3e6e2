package fetch

import (
	"github.com/mintwatch/mint-alert-bot/internal/models"
	"github.com/mintwatch/mint-alert-bot/internal/rpc"
)

// Estimates are the values a strategy can synthesize when the metadata API
// has no market data yet for a brand-new mint.
type Estimates struct {
	Liquidity   *float64
	MarketCap   *float64
	LaunchPrice *float64
}

// EstimateStrategy derives market figures from chain mint state. The intent
// is that a real pool-data source can replace the supply heuristic without
// touching the filter engine.
type EstimateStrategy interface {
	Estimate(state *rpc.MintState) Estimates
}

// SupplyEstimate derives rough figures from total supply alone, assuming a
// standard launch pool. The numbers are approximate placeholders, not market
// data: good enough to filter out the obvious extremes, nothing more.
type SupplyEstimate struct {
	// AssumedPoolSOL is the quote-side depth assumed for a fresh launch pool.
	AssumedPoolSOL float64
	// SOLPriceUSD converts SOL figures to the USD fields on the record.
	SOLPriceUSD float64
}

// DefaultSupplyEstimate matches a typical bonding-curve launch.
func DefaultSupplyEstimate() SupplyEstimate {
	return SupplyEstimate{
		AssumedPoolSOL: 30,
		SOLPriceUSD:    150,
	}
}

func (e SupplyEstimate) Estimate(state *rpc.MintState) Estimates {
	supply, ok := state.UISupply()
	if !ok || supply <= 0 {
		return Estimates{}
	}

	launchPrice := e.AssumedPoolSOL / supply
	liquidity := 2 * e.AssumedPoolSOL * e.SOLPriceUSD
	marketCap := supply * launchPrice * e.SOLPriceUSD

	return Estimates{
		Liquidity:   models.Float(liquidity),
		MarketCap:   models.Float(marketCap),
		LaunchPrice: models.Float(launchPrice),
	}
}
