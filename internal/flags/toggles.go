package flags

import "context"

// Static is a fixed toggle set taken from configuration. Used when no Redis
// is configured.
type Static struct {
	Bypass bool
	Auto   bool
}

func (s Static) BypassFilters(ctx context.Context) bool { return s.Bypass }
func (s Static) AutoExecute(ctx context.Context) bool   { return s.Auto }

// StoreToggles reads the pipeline switches from the Redis store, falling
// back to config defaults for keys that were never set or cannot be read.
// Redis trouble must not stall the pipeline.
type StoreToggles struct {
	Store    *Store
	Defaults Static
}

func (t StoreToggles) BypassFilters(ctx context.Context) bool {
	return t.lookup(ctx, KeyBypassFilters, t.Defaults.Bypass)
}

func (t StoreToggles) AutoExecute(ctx context.Context) bool {
	return t.lookup(ctx, KeyAutoExecute, t.Defaults.Auto)
}

func (t StoreToggles) lookup(ctx context.Context, key string, def bool) bool {
	tog, err := t.Store.Get(ctx, key)
	if err != nil {
		return def
	}
	return tog.Value
}
