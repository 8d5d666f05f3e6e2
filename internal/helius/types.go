package helius

// MetadataRequest is the body of a token-metadata lookup.
type MetadataRequest struct {
	MintAccounts []string `json:"mintAccounts"`
}

// TokenInfo is the partial token information returned by the metadata API.
// Numeric fields are pointers because the API omits anything it has not
// indexed yet for a brand-new mint.
type TokenInfo struct {
	Mint        string   `json:"mint"`
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	Liquidity   *float64 `json:"liquidity"`
	MarketCap   *float64 `json:"marketCap"`
	LaunchPrice *float64 `json:"launchPrice"`
	DevHolding  *float64 `json:"devHoldingPct"`
	PoolSupply  *float64 `json:"poolSupplyPct"`
}
