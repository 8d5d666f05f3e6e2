package server

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details any    `json:"details,omitempty"` // dev mode only
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"`
}

// WebhookResponse acknowledges a processed batch
type WebhookResponse struct {
	OK     bool `json:"ok"`
	Events int  `json:"events"`
}

// ToggleUpsertRequest represents a request to create or update a toggle
type ToggleUpsertRequest struct {
	Key   string `json:"key"`
	Value bool   `json:"value"`
}

// ToggleUpdateRequest represents a request to update an existing toggle
type ToggleUpdateRequest struct {
	Value bool `json:"value"`
}
