package flags

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("toggle not found")

// Toggle is one operator-controlled runtime switch.
type Toggle struct {
	Key       string    `json:"key"`
	Value     bool      `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known toggle keys read by the alert pipeline.
const (
	KeyBypassFilters = "pipeline.bypass_filters"
	KeyAutoExecute   = "pipeline.auto_execute"
)
