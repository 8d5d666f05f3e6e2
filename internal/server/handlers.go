package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/mintwatch/mint-alert-bot/internal/flags"
	"github.com/mintwatch/mint-alert-bot/internal/models"
)

// BatchProcessor runs one inbound webhook batch through the alert pipeline.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, events []models.RawEvent) error
}

// UpdateDispatcher forwards a raw messaging-bot update into the bot's own
// update processor.
type UpdateDispatcher interface {
	HandleRawUpdate(payload []byte) error
}

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Pipeline BatchProcessor
	Bot      UpdateDispatcher
	Toggles  *flags.Store // nil when Redis is not configured
	DevMode  bool
	Logger   *logrus.Logger
}

// err returns a standardized JSON error response.
// In dev mode, includes additional error details for debugging.
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// Webhook accepts a JSON array of mint events and runs it through the
// pipeline. Rate-limited and fully filtered batches still answer 200: the
// batch was accepted even if nothing came of it.
func (h *Handlers) Webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil || len(body) == 0 {
		return h.err(c, http.StatusBadRequest, "missing request body", nil)
	}

	var events []models.RawEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return h.err(c, http.StatusBadRequest, "body must be a JSON array of events", nil)
	}
	if len(events) == 0 {
		return h.err(c, http.StatusBadRequest, "empty event batch", nil)
	}

	if err := h.Pipeline.ProcessBatch(c.Request().Context(), events); err != nil {
		h.Logger.WithError(err).Error("webhook batch failed")
		return h.err(c, http.StatusInternalServerError, "pipeline failure", map[string]any{"err": err.Error()})
	}

	return c.JSON(http.StatusOK, WebhookResponse{OK: true, Events: len(events)})
}

// BotUpdate forwards a raw Telegram update into the bot dispatcher.
// Pure passthrough.
func (h *Handlers) BotUpdate(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil || len(body) == 0 {
		return h.err(c, http.StatusBadRequest, "missing request body", nil)
	}

	if err := h.Bot.HandleRawUpdate(body); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid update", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// TogglesUpsert creates or updates an operator toggle
func (h *Handlers) TogglesUpsert(c echo.Context) error {
	if h.Toggles == nil {
		return h.err(c, http.StatusServiceUnavailable, "toggle store not configured", nil)
	}

	var req ToggleUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := flags.ValidateKey(req.Key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Toggles.Upsert(ctx, req.Key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to upsert toggle", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// TogglesGet retrieves an operator toggle by key
func (h *Handlers) TogglesGet(c echo.Context) error {
	if h.Toggles == nil {
		return h.err(c, http.StatusServiceUnavailable, "toggle store not configured", nil)
	}

	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Toggles.Get(ctx, key)
	if err != nil {
		if errors.Is(err, flags.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "toggle not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get toggle", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// TogglesList returns all operator toggles
func (h *Handlers) TogglesList(c echo.Context) error {
	if h.Toggles == nil {
		return h.err(c, http.StatusServiceUnavailable, "toggle store not configured", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Toggles.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list toggles", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// TogglesDelete removes an operator toggle by key
func (h *Handlers) TogglesDelete(c echo.Context) error {
	if h.Toggles == nil {
		return h.err(c, http.StatusServiceUnavailable, "toggle store not configured", nil)
	}

	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Toggles.Delete(ctx, key); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to delete toggle", nil)
	}
	return c.NoContent(http.StatusNoContent)
}
