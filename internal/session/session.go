package session

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/mintwatch/mint-alert-bot/internal/filter"
)

// Manager holds the per-chat edit state machines. Each chat is either idle
// or awaiting a value for exactly one field; a valid submission applies the
// edit to the shared filter store and returns the chat to idle.
type Manager struct {
	mu      sync.Mutex
	pending map[int64]filter.Field

	filters *filter.Store
	logger  *logrus.Logger
}

func NewManager(filters *filter.Store, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{
		pending: make(map[int64]filter.Field),
		filters: filters,
		logger:  logger,
	}
}

// StartEdit moves the chat into the awaiting-value state for field and
// returns the prompt to show the operator.
func (m *Manager) StartEdit(chatID int64, field filter.Field) (string, error) {
	switch {
	case filter.IsRangeField(field):
		m.setPending(chatID, field)
		return fmt.Sprintf("Editing %s. Send the new range as min-max (e.g. 4000-25000).", field), nil
	case filter.IsBoolField(field):
		m.setPending(chatID, field)
		return fmt.Sprintf("Editing %s. Send yes or no.", field), nil
	default:
		return "", fmt.Errorf("unknown filter field %q", field)
	}
}

// HandleMessage interprets a plain-text chat message as a field value.
// It returns handled=false when this chat has no pending edit or the text is
// a command; such messages belong to someone else. Invalid values keep the
// session open so the operator can resend.
func (m *Manager) HandleMessage(chatID int64, text string) (string, bool) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/") {
		return "", false
	}

	m.mu.Lock()
	field, ok := m.pending[chatID]
	m.mu.Unlock()
	if !ok {
		return "", false
	}

	if filter.IsBoolField(field) {
		return m.applyBool(chatID, field, text), true
	}
	return m.applyRange(chatID, field, text), true
}

// Pending returns the field the chat is currently editing, if any.
func (m *Manager) Pending(chatID int64) (filter.Field, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.pending[chatID]
	return f, ok
}

// Cancel drops any pending edit for the chat.
func (m *Manager) Cancel(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, chatID)
}

func (m *Manager) setPending(chatID int64, field filter.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[chatID] = field
}

func (m *Manager) clearPending(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, chatID)
}

func (m *Manager) applyRange(chatID int64, field filter.Field, text string) string {
	min, max, err := parseRange(text)
	if err != nil {
		return "Invalid range, resend as min-max (e.g. 4000-25000)."
	}

	if err := m.filters.SetRange(field, min, max); err != nil {
		return fmt.Sprintf("Invalid range: %v. Resend as min-max.", err)
	}

	m.clearPending(chatID)
	m.logger.WithFields(logrus.Fields{
		"chat":  chatID,
		"field": field,
		"min":   min,
		"max":   max,
	}).Info("filter range updated")
	return fmt.Sprintf("✅ %s set to %g - %g.", field, min, max)
}

func (m *Manager) applyBool(chatID int64, field filter.Field, text string) string {
	var value bool
	switch strings.ToLower(text) {
	case "yes":
		value = true
	case "no":
		value = false
	default:
		return "Invalid value, send yes or no."
	}

	if err := m.filters.SetBool(field, value); err != nil {
		return fmt.Sprintf("Could not update %s: %v.", field, err)
	}

	m.clearPending(chatID)
	m.logger.WithFields(logrus.Fields{
		"chat":  chatID,
		"field": field,
		"value": value,
	}).Info("filter requirement updated")
	return fmt.Sprintf("✅ %s set to %v.", field, value)
}

// parseRange accepts "min-max" or "min max" (hyphen or whitespace separator).
func parseRange(text string) (float64, float64, error) {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected two numbers")
	}

	min, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid min %q", parts[0])
	}
	max, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid max %q", parts[1])
	}
	if min > max {
		return 0, 0, fmt.Errorf("min %g is greater than max %g", min, max)
	}
	return min, max, nil
}
