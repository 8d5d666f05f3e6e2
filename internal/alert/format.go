package alert

import (
	"fmt"
	"strings"

	"github.com/mintwatch/mint-alert-bot/internal/constants"
	"github.com/mintwatch/mint-alert-bot/internal/models"
)

const notAvailable = "N/A"

// Format renders a token record as the alert message. The template is fixed:
// a missing field renders as an explicit N/A marker so the message shape is
// the same regardless of data completeness.
func Format(rec *models.TokenRecord) string {
	name := rec.Name
	if name == "" {
		name = notAvailable
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚀 New Token: %s\n", name)
	fmt.Fprintf(&b, "CA: %s\n", rec.Mint)
	fmt.Fprintf(&b, "Market Cap: %s\n", usd(rec.MarketCap))
	fmt.Fprintf(&b, "Liquidity: %s\n", usd(rec.Liquidity))
	fmt.Fprintf(&b, "Dev Holding: %s\n", pct(rec.DevHolding))
	fmt.Fprintf(&b, "Pool Supply: %s\n", pct(rec.PoolSupply))
	fmt.Fprintf(&b, "Launch Price: %s\n", price(rec.LaunchPrice))
	fmt.Fprintf(&b, "Mint Authority: %s\n", revoked(rec.MintAuthRevoked))
	fmt.Fprintf(&b, "Freeze Authority: %s\n", revoked(rec.FreezeAuthRevoked))
	fmt.Fprintf(&b, "Chart: %s%s", constants.ExplorerBaseURL, rec.Mint)
	return b.String()
}

// FormatRejection is the short notice sent when a token fails the filters.
func FormatRejection(rec *models.TokenRecord) string {
	name := rec.Name
	if name == "" {
		name = rec.Mint
	}
	return fmt.Sprintf("⚠️ %s did not pass filters.", name)
}

// FormatFetchFailure is the deduped notice for an unresolvable token.
func FormatFetchFailure(mint string) string {
	return fmt.Sprintf("❌ Could not fetch token data for %s.", mint)
}

func usd(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf("$%.2f", *v)
}

func pct(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func price(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.10f SOL", *v)
}

func revoked(v bool) string {
	if v {
		return "revoked ✅"
	}
	return "not revoked ❌"
}
