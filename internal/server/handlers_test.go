package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintwatch/mint-alert-bot/internal/models"
)

type stubPipeline struct {
	batches [][]models.RawEvent
	err     error
}

func (p *stubPipeline) ProcessBatch(_ context.Context, events []models.RawEvent) error {
	p.batches = append(p.batches, events)
	return p.err
}

type stubBot struct {
	payloads [][]byte
	err      error
}

func (b *stubBot) HandleRawUpdate(payload []byte) error {
	b.payloads = append(b.payloads, payload)
	return b.err
}

func newTestHandlers() (*Handlers, *stubPipeline, *stubBot) {
	pipe := &stubPipeline{}
	bot := &stubBot{}
	h := &Handlers{
		Pipeline: pipe,
		Bot:      bot,
		Logger:   logrus.New(),
	}
	return h, pipe, bot
}

func doRequest(h echo.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = h(c)
	return rec
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestHandlers()

	rec := doRequest(h.Health, http.MethodGet, "/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
}

func TestWebhook_ValidBatch(t *testing.T) {
	h, pipe, _ := newTestHandlers()

	body := `[{"type":"TOKEN_MINT","signature":"sig1","mint":"So11111111111111111111111111111111111111112"}]`
	rec := doRequest(h.Webhook, http.MethodPost, "/v1/webhook", body)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp WebhookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, 1, resp.Events)

	require.Len(t, pipe.batches, 1)
	assert.Equal(t, "sig1", pipe.batches[0][0].Signature)
}

func TestWebhook_MissingBody(t *testing.T) {
	h, pipe, _ := newTestHandlers()

	rec := doRequest(h.Webhook, http.MethodPost, "/v1/webhook", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, pipe.batches)
}

func TestWebhook_MalformedJSON(t *testing.T) {
	h, pipe, _ := newTestHandlers()

	for _, body := range []string{"{not json", `{"type":"TOKEN_MINT"}`, `"just a string"`} {
		rec := doRequest(h.Webhook, http.MethodPost, "/v1/webhook", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
	assert.Empty(t, pipe.batches)
}

func TestWebhook_EmptyBatch(t *testing.T) {
	h, pipe, _ := newTestHandlers()

	rec := doRequest(h.Webhook, http.MethodPost, "/v1/webhook", "[]")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, pipe.batches)
}

func TestWebhook_PipelineFailure(t *testing.T) {
	h, pipe, _ := newTestHandlers()
	pipe.err = assert.AnError

	body := `[{"type":"TOKEN_MINT","signature":"sig1"}]`
	rec := doRequest(h.Webhook, http.MethodPost, "/v1/webhook", body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhook_DevModeIncludesDetails(t *testing.T) {
	h, pipe, _ := newTestHandlers()
	h.DevMode = true
	pipe.err = assert.AnError

	body := `[{"type":"TOKEN_MINT"}]`
	rec := doRequest(h.Webhook, http.MethodPost, "/v1/webhook", body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Details)
}

func TestBotUpdate_Passthrough(t *testing.T) {
	h, _, bot := newTestHandlers()

	body := `{"update_id":1,"message":{"text":"/filters","chat":{"id":42}}}`
	rec := doRequest(h.BotUpdate, http.MethodPost, "/v1/bot", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, bot.payloads, 1)
	assert.JSONEq(t, body, string(bot.payloads[0]))
}

func TestBotUpdate_InvalidPayload(t *testing.T) {
	h, _, bot := newTestHandlers()
	bot.err = assert.AnError

	rec := doRequest(h.BotUpdate, http.MethodPost, "/v1/bot", "{}")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggles_UnavailableWithoutStore(t *testing.T) {
	h, _, _ := newTestHandlers()

	endpoints := []echo.HandlerFunc{h.TogglesUpsert, h.TogglesList}
	for _, fn := range endpoints {
		rec := doRequest(fn, http.MethodPost, "/v1/toggles", `{"key":"a","value":true}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	}
}
