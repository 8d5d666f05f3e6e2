package models

import "time"

// TokenRecord is the enriched view of a freshly minted token. Numeric fields
// are pointers: nil means the upstream sources could not provide the value.
// Records are built once per event and never mutated afterwards.
type TokenRecord struct {
	Mint              string    `json:"mint"`
	Name              string    `json:"name"`
	Liquidity         *float64  `json:"liquidity"`    // USD estimate
	MarketCap         *float64  `json:"market_cap"`   // USD estimate
	DevHolding        *float64  `json:"dev_holding"`  // percent 0-100
	PoolSupply        *float64  `json:"pool_supply"`  // percent 0-100
	LaunchPrice       *float64  `json:"launch_price"` // quote-currency units
	MintAuthRevoked   bool      `json:"mint_auth_revoked"`
	FreezeAuthRevoked bool      `json:"freeze_auth_revoked"`
	FetchedAt         time.Time `json:"fetched_at"`
}

// Float returns a pointer to v. Convenience for building records.
func Float(v float64) *float64 { return &v }
