package filter

import "github.com/mintwatch/mint-alert-bot/internal/models"

// Passes evaluates a token record against the filter set. Pure function.
//
// A record missing any of the four numeric fields never passes: filter
// evaluation is only defined over fully populated records. Bounds are
// inclusive. A configured false on an authority field means the check is
// skipped, not inverted.
func Passes(rec *models.TokenRecord, cfg Config) bool {
	if rec.Liquidity == nil || rec.DevHolding == nil || rec.PoolSupply == nil || rec.LaunchPrice == nil {
		return false
	}

	if !inRange(*rec.Liquidity, cfg.Liquidity) {
		return false
	}
	if !inRange(*rec.PoolSupply, cfg.PoolSupply) {
		return false
	}
	if !inRange(*rec.DevHolding, cfg.DevHolding) {
		return false
	}
	if !inRange(*rec.LaunchPrice, cfg.LaunchPrice) {
		return false
	}

	if cfg.MintAuthRevoked && !rec.MintAuthRevoked {
		return false
	}
	if cfg.FreezeAuthRevoked && !rec.FreezeAuthRevoked {
		return false
	}

	return true
}

func inRange(v float64, r Range) bool {
	return v >= r.Min && v <= r.Max
}
