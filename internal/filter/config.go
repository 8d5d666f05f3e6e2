package filter

import (
	"fmt"
	"sync"
)

// Field names editable through the chat menu and the toggle API.
type Field string

const (
	FieldLiquidity   Field = "liquidity"
	FieldPoolSupply  Field = "poolSupply"
	FieldDevHolding  Field = "devHolding"
	FieldLaunchPrice Field = "launchPrice"
	FieldMintAuth    Field = "mintAuthRevoked"
	FieldFreezeAuth  Field = "freezeAuthRevoked"
)

// RangeFields lists the numeric fields in menu order.
var RangeFields = []Field{FieldLiquidity, FieldPoolSupply, FieldDevHolding, FieldLaunchPrice}

// BoolFields lists the authority requirement fields in menu order.
var BoolFields = []Field{FieldMintAuth, FieldFreezeAuth}

// Range is an inclusive [Min, Max] bound.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Config is the active filter set. A configured true on an authority field
// means "require revocation"; false means "don't care".
type Config struct {
	Liquidity         Range `json:"liquidity"`
	PoolSupply        Range `json:"pool_supply"`
	DevHolding        Range `json:"dev_holding"`
	LaunchPrice       Range `json:"launch_price"`
	MintAuthRevoked   bool  `json:"mint_auth_revoked"`
	FreezeAuthRevoked bool  `json:"freeze_auth_revoked"`
}

// DefaultConfig returns the launch filter set used until an operator edits it.
func DefaultConfig() Config {
	return Config{
		Liquidity:         Range{Min: 4000, Max: 25000},
		PoolSupply:        Range{Min: 60, Max: 100},
		DevHolding:        Range{Min: 0, Max: 10},
		LaunchPrice:       Range{Min: 0.0000000045, Max: 0.000001},
		MintAuthRevoked:   true,
		FreezeAuthRevoked: true,
	}
}

// Store owns the process-wide filter configuration. All reads and writes go
// through it; the engine only ever sees copies.
type Store struct {
	mu  sync.RWMutex
	cfg Config
}

func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg}
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetRange atomically replaces the named numeric range. Rejected submissions
// leave the configuration untouched.
func (s *Store) SetRange(field Field, min, max float64) error {
	if min > max {
		return fmt.Errorf("invalid range: min %g is greater than max %g", min, max)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FieldLiquidity:
		s.cfg.Liquidity = Range{Min: min, Max: max}
	case FieldPoolSupply:
		s.cfg.PoolSupply = Range{Min: min, Max: max}
	case FieldDevHolding:
		s.cfg.DevHolding = Range{Min: min, Max: max}
	case FieldLaunchPrice:
		s.cfg.LaunchPrice = Range{Min: min, Max: max}
	default:
		return fmt.Errorf("unknown range field %q", field)
	}
	return nil
}

// SetBool atomically replaces the named authority requirement.
func (s *Store) SetBool(field Field, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FieldMintAuth:
		s.cfg.MintAuthRevoked = value
	case FieldFreezeAuth:
		s.cfg.FreezeAuthRevoked = value
	default:
		return fmt.Errorf("unknown boolean field %q", field)
	}
	return nil
}

// IsRangeField reports whether field takes a min-max value.
func IsRangeField(field Field) bool {
	switch field {
	case FieldLiquidity, FieldPoolSupply, FieldDevHolding, FieldLaunchPrice:
		return true
	}
	return false
}

// IsBoolField reports whether field takes a yes/no value.
func IsBoolField(field Field) bool {
	return field == FieldMintAuth || field == FieldFreezeAuth
}
