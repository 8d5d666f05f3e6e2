package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mintwatch/mint-alert-bot/internal/constants"
	"github.com/mintwatch/mint-alert-bot/internal/helius"
	"github.com/mintwatch/mint-alert-bot/internal/models"
)

// TxSource is the recent-transactions feed for a program address.
type TxSource interface {
	RecentTransactions(ctx context.Context, program string, limit int) ([]models.RawEvent, error)
}

// Sink consumes polled events one at a time.
type Sink interface {
	ProcessScanned(ctx context.Context, ev *models.RawEvent)
}

// Scanner polls recent transactions for the tracked program on a fixed
// interval, independent of webhook delivery. Ticks are not queued: a failed
// tick is reported and the next one proceeds on its own.
type Scanner struct {
	source   TxSource
	sink     Sink
	program  string
	interval time.Duration
	limit    int
	logger   *logrus.Logger

	maxAttempts int
	baseBackoff time.Duration

	mu      sync.Mutex
	running bool
}

// ScannerConfig holds configuration for the scanner.
type ScannerConfig struct {
	Source      TxSource
	Sink        Sink
	Program     string
	Interval    time.Duration
	Limit       int
	MaxAttempts int
	BaseBackoff time.Duration
	Logger      *logrus.Logger
}

func New(cfg ScannerConfig) *Scanner {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Program == "" {
		cfg.Program = constants.PumpFunProgram
	}
	if cfg.Interval <= 0 {
		cfg.Interval = constants.ScanInterval
	}
	if cfg.Limit <= 0 {
		cfg.Limit = constants.ScanTxLimit
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = constants.FetchMaxAttempts
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = constants.FetchBaseBackoff
	}

	return &Scanner{
		source:      cfg.Source,
		sink:        cfg.Sink,
		program:     cfg.Program,
		interval:    cfg.Interval,
		limit:       cfg.Limit,
		maxAttempts: cfg.MaxAttempts,
		baseBackoff: cfg.BaseBackoff,
		logger:      cfg.Logger,
	}
}

// Start runs the polling loop until the context is cancelled.
func (s *Scanner) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scanner already running")
	}
	s.running = true
	s.mu.Unlock()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.WithFields(logrus.Fields{
		"interval": s.interval,
		"program":  s.program,
	}).Info("starting mint scanner")

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return ctx.Err()

		case <-ticker.C:
			if err := s.tick(ctx); err != nil {
				s.logger.WithError(err).Error("scan tick failed")
			}
		}
	}
}

// Stop marks the scanner stopped.
func (s *Scanner) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

// tick queries recent transactions, retrying only rate-limit responses.
// Any other failure aborts the tick.
func (s *Scanner) tick(ctx context.Context) error {
	events, err := s.fetchRecent(ctx)
	if err != nil {
		return err
	}

	for i := range events {
		if events[i].Type != constants.EventTypeTokenMint {
			continue
		}
		s.sink.ProcessScanned(ctx, &events[i])
	}
	return nil
}

func (s *Scanner) fetchRecent(ctx context.Context) ([]models.RawEvent, error) {
	backoff := s.baseBackoff
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			s.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": backoff,
			}).Debug("retrying recent-transactions query")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		events, err := s.source.RecentTransactions(ctx, s.program, s.limit)
		if err == nil {
			return events, nil
		}
		if !helius.IsRateLimited(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("recent transactions rate limited after %d attempts: %w", s.maxAttempts, lastErr)
}
