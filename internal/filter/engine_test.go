package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mintwatch/mint-alert-bot/internal/models"
)

// fullRecord returns a record that passes DefaultConfig.
func fullRecord() *models.TokenRecord {
	return &models.TokenRecord{
		Mint:              "So11111111111111111111111111111111111111112",
		Name:              "Test Token",
		Liquidity:         models.Float(10000),
		MarketCap:         models.Float(50000),
		DevHolding:        models.Float(5),
		PoolSupply:        models.Float(80),
		LaunchPrice:       models.Float(0.00000001),
		MintAuthRevoked:   true,
		FreezeAuthRevoked: true,
	}
}

func TestPasses_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, Passes(fullRecord(), cfg))
}

func TestPasses_MissingNumericFieldNeverPasses(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		name   string
		mutate func(*models.TokenRecord)
	}{
		{"nil liquidity", func(r *models.TokenRecord) { r.Liquidity = nil }},
		{"nil dev holding", func(r *models.TokenRecord) { r.DevHolding = nil }},
		{"nil pool supply", func(r *models.TokenRecord) { r.PoolSupply = nil }},
		{"nil launch price", func(r *models.TokenRecord) { r.LaunchPrice = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := fullRecord()
			tc.mutate(rec)
			assert.False(t, Passes(rec, cfg))
		})
	}
}

func TestPasses_BoundsAreInclusive(t *testing.T) {
	cfg := DefaultConfig()

	rec := fullRecord()
	rec.Liquidity = models.Float(4000) // exactly at min
	assert.True(t, Passes(rec, cfg))

	rec.Liquidity = models.Float(25000) // exactly at max
	assert.True(t, Passes(rec, cfg))

	rec.Liquidity = models.Float(3999.99)
	assert.False(t, Passes(rec, cfg))

	rec.Liquidity = models.Float(25000.01)
	assert.False(t, Passes(rec, cfg))
}

func TestPasses_AuthorityRequirements(t *testing.T) {
	cfg := DefaultConfig()

	// Required revocation missing fails.
	rec := fullRecord()
	rec.MintAuthRevoked = false
	assert.False(t, Passes(rec, cfg))

	// false config means "don't care", not "require live authority".
	cfg.MintAuthRevoked = false
	assert.True(t, Passes(rec, cfg))

	// A revoked authority still passes a don't-care config.
	rec.MintAuthRevoked = true
	assert.True(t, Passes(rec, cfg))

	cfg.FreezeAuthRevoked = true
	rec.FreezeAuthRevoked = false
	assert.False(t, Passes(rec, cfg))
}

func TestPasses_EachRangeEnforced(t *testing.T) {
	cfg := DefaultConfig()

	rec := fullRecord()
	rec.DevHolding = models.Float(15)
	assert.False(t, Passes(rec, cfg))

	rec = fullRecord()
	rec.PoolSupply = models.Float(50)
	assert.False(t, Passes(rec, cfg))

	rec = fullRecord()
	rec.LaunchPrice = models.Float(0.1)
	assert.False(t, Passes(rec, cfg))
}

func TestStore_SetRange(t *testing.T) {
	store := NewStore(DefaultConfig())

	err := store.SetRange(FieldLiquidity, 1000, 2000)
	assert.NoError(t, err)
	assert.Equal(t, Range{Min: 1000, Max: 2000}, store.Snapshot().Liquidity)

	// min > max is rejected without mutating.
	err = store.SetRange(FieldLiquidity, 5000, 100)
	assert.Error(t, err)
	assert.Equal(t, Range{Min: 1000, Max: 2000}, store.Snapshot().Liquidity)

	err = store.SetRange(Field("bogus"), 1, 2)
	assert.Error(t, err)
}

func TestStore_SetBool(t *testing.T) {
	store := NewStore(DefaultConfig())

	err := store.SetBool(FieldMintAuth, false)
	assert.NoError(t, err)
	assert.False(t, store.Snapshot().MintAuthRevoked)
	assert.True(t, store.Snapshot().FreezeAuthRevoked)

	err = store.SetBool(Field("liquidity"), true)
	assert.Error(t, err)
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	store := NewStore(DefaultConfig())

	snap := store.Snapshot()
	snap.Liquidity = Range{Min: 0, Max: 1}

	assert.Equal(t, Range{Min: 4000, Max: 25000}, store.Snapshot().Liquidity)
}

func TestFieldKinds(t *testing.T) {
	for _, f := range RangeFields {
		assert.True(t, IsRangeField(f))
		assert.False(t, IsBoolField(f))
	}
	for _, f := range BoolFields {
		assert.True(t, IsBoolField(f))
		assert.False(t, IsRangeField(f))
	}
	assert.False(t, IsRangeField(Field("nope")))
	assert.False(t, IsBoolField(Field("nope")))
}
