package classify

import (
	"errors"

	"github.com/mr-tron/base58"

	"github.com/mintwatch/mint-alert-bot/internal/constants"
	"github.com/mintwatch/mint-alert-bot/internal/models"
)

// Classification failures. All of them mean "skip the event silently";
// they are distinct so callers can log the reason.
var (
	ErrNotMintEvent     = errors.New("not a mint-creation event")
	ErrUntrackedProgram = errors.New("event not attributable to tracked program")
	ErrNoMint           = errors.New("no plausible mint address in event")
)

// Classify decides whether a raw event is a token mint created through the
// tracked program and extracts the candidate mint address. Extraction
// priority: the explicit mint field, then the first token transfer carrying
// a plausible mint, then the first account entry.
func Classify(ev *models.RawEvent) (string, error) {
	if ev.Type != constants.EventTypeTokenMint {
		return "", ErrNotMintEvent
	}

	if !fromTrackedProgram(ev) {
		return "", ErrUntrackedProgram
	}

	mint := ev.Mint
	if mint == "" {
		for _, tt := range ev.TokenTransfers {
			if plausibleMint(tt.Mint) {
				mint = tt.Mint
				break
			}
		}
	}
	if mint == "" && len(ev.Accounts) > 0 {
		mint = ev.Accounts[0]
	}

	if !plausibleMint(mint) {
		return "", ErrNoMint
	}
	return mint, nil
}

func fromTrackedProgram(ev *models.RawEvent) bool {
	if ev.Program == constants.PumpFunProgram {
		return true
	}
	for _, acc := range ev.Accounts {
		if acc == constants.PumpFunProgram {
			return true
		}
	}
	return false
}

// plausibleMint checks the address shape: base58 text of mint-address length.
func plausibleMint(addr string) bool {
	if len(addr) < constants.MintAddressMinLen || len(addr) > constants.MintAddressMaxLen {
		return false
	}
	if _, err := base58.Decode(addr); err != nil {
		return false
	}
	return true
}
