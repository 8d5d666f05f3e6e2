package models

// RawEvent is one Helius-style enhanced transaction, delivered either by the
// inbound webhook or by the recent-transactions poll. Both paths share this
// shape.
type RawEvent struct {
	Type           string          `json:"type"`
	Signature      string          `json:"signature"`
	Program        string          `json:"program"`
	Accounts       []string        `json:"accounts"`
	Mint           string          `json:"mint,omitempty"`
	TokenTransfers []TokenTransfer `json:"tokenTransfers"`
}

// TokenTransfer is a token balance change attached to an event.
type TokenTransfer struct {
	Mint        string  `json:"mint"`
	FromAccount string  `json:"fromTokenAccount"`
	ToAccount   string  `json:"toTokenAccount"`
	Amount      float64 `json:"tokenAmount"`
}
