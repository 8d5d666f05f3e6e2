package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mintwatch/mint-alert-bot/internal/alert"
	"github.com/mintwatch/mint-alert-bot/internal/classify"
	"github.com/mintwatch/mint-alert-bot/internal/filter"
	"github.com/mintwatch/mint-alert-bot/internal/models"
	"github.com/mintwatch/mint-alert-bot/internal/rpc"
)

// Fetcher resolves a mint into an enriched record, or nil when data could
// not be obtained.
type Fetcher interface {
	Fetch(ctx context.Context, mint string) *models.TokenRecord
}

// ChainQuery is the auxiliary on-chain lookup used for the NFT-exclusion
// sanity check.
type ChainQuery interface {
	GetMintState(ctx context.Context, mint string) (*rpc.MintState, error)
}

// Buyer executes a best-effort buy of the given mint and returns the
// transaction signature.
type Buyer interface {
	Buy(ctx context.Context, mint string) (string, error)
}

// Toggles exposes the operator-controlled runtime switches.
type Toggles interface {
	BypassFilters(ctx context.Context) bool
	AutoExecute(ctx context.Context) bool
}

// Pipeline turns raw events into alerts: classify, sanity-check, fetch,
// filter, dispatch. One instance is shared by the webhook handler and the
// polling scanner.
type Pipeline struct {
	fetcher Fetcher
	chain   ChainQuery
	filters *filter.Store
	sender  alert.Sender
	buyer   Buyer
	toggles Toggles
	rate    *RateWindow
	chatID  int64
	logger  *logrus.Logger

	// Last mint a fetch-failure notice was sent for. Process-wide slot,
	// shared between webhook batches and scanner ticks.
	dedupMu  sync.Mutex
	lastFail string
}

// PipelineConfig holds construction parameters for a Pipeline.
type PipelineConfig struct {
	Fetcher     Fetcher
	Chain       ChainQuery
	Filters     *filter.Store
	Sender      alert.Sender
	Buyer       Buyer
	Toggles     Toggles
	Rate        *RateWindow
	AlertChatID int64
	Logger      *logrus.Logger
}

func New(cfg PipelineConfig) *Pipeline {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	return &Pipeline{
		fetcher: cfg.Fetcher,
		chain:   cfg.Chain,
		filters: cfg.Filters,
		sender:  cfg.Sender,
		buyer:   cfg.Buyer,
		toggles: cfg.Toggles,
		rate:    cfg.Rate,
		chatID:  cfg.AlertChatID,
		logger:  cfg.Logger,
	}
}

// Rate exposes the batch rate window for status reporting.
func (p *Pipeline) Rate() *RateWindow {
	return p.rate
}

// ProcessBatch runs one inbound webhook batch through the pipeline. Events
// are processed strictly in array order. Accepted tokens are flushed as one
// combined message. A panic anywhere inside the batch is recovered, logged
// and surfaced as a single error; messages already sent stay sent.
func (p *Pipeline) ProcessBatch(ctx context.Context, events []models.RawEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithField("panic", r).Error("pipeline batch panicked")
			err = fmt.Errorf("pipeline failure: %v", r)
		}
	}()

	if !p.rate.Allow() {
		p.logger.WithField("events", len(events)).Warn("batch dropped: rate window exhausted")
		return nil
	}

	var accepted []string
	for i := range events {
		if msg := p.processEvent(ctx, &events[i]); msg != "" {
			accepted = append(accepted, msg)
		}
	}

	if len(accepted) > 0 {
		if err := p.sender.SendMessage(ctx, p.chatID, strings.Join(accepted, "\n\n")); err != nil {
			p.logger.WithError(err).Error("failed to flush batch alert")
		}
	}
	return nil
}

// ProcessScanned runs one polled event through the pipeline and, when the
// token is accepted, sends its alert immediately instead of batching.
func (p *Pipeline) ProcessScanned(ctx context.Context, ev *models.RawEvent) {
	if msg := p.processEvent(ctx, ev); msg != "" {
		if err := p.sender.SendMessage(ctx, p.chatID, msg); err != nil {
			p.logger.WithError(err).Error("failed to send scan alert")
		}
	}
}

// processEvent runs one event through classify → sanity → fetch → filter.
// It returns the formatted alert when the token is accepted, "" otherwise.
// A panic inside one event never aborts its siblings.
func (p *Pipeline) processEvent(ctx context.Context, ev *models.RawEvent) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithFields(logrus.Fields{
				"panic":     r,
				"signature": ev.Signature,
			}).Error("event processing panicked")
			msg = ""
		}
	}()

	mint, err := classify.Classify(ev)
	if err != nil {
		p.logger.WithError(err).WithField("signature", ev.Signature).Debug("event skipped")
		return ""
	}

	if !p.fungible(ctx, mint) {
		return ""
	}

	rec := p.fetcher.Fetch(ctx, mint)
	if rec == nil {
		p.notifyFetchFailure(ctx, mint)
		return ""
	}

	if !p.toggles.BypassFilters(ctx) && !filter.Passes(rec, p.filters.Snapshot()) {
		if err := p.sender.SendMessage(ctx, p.chatID, alert.FormatRejection(rec)); err != nil {
			p.logger.WithError(err).Warn("failed to send rejection notice")
		}
		return ""
	}

	if p.toggles.AutoExecute(ctx) {
		p.executeBuy(ctx, rec)
	}

	return alert.Format(rec)
}

// fungible excludes NFT-like mints: total supply must exceed one unit.
// Query failures skip the event without retry.
func (p *Pipeline) fungible(ctx context.Context, mint string) bool {
	state, err := p.chain.GetMintState(ctx, mint)
	if err != nil {
		p.logger.WithError(err).WithField("mint", mint).Debug("mint sanity check failed")
		return false
	}
	supply, ok := state.UISupply()
	if !ok || supply <= 1 {
		p.logger.WithField("mint", mint).Debug("skipping non-fungible mint")
		return false
	}
	return true
}

// notifyFetchFailure sends a failure notice unless the previous notice was
// for the same mint.
func (p *Pipeline) notifyFetchFailure(ctx context.Context, mint string) {
	p.dedupMu.Lock()
	dup := p.lastFail == mint
	p.lastFail = mint
	p.dedupMu.Unlock()

	if dup {
		return
	}
	if err := p.sender.SendMessage(ctx, p.chatID, alert.FormatFetchFailure(mint)); err != nil {
		p.logger.WithError(err).Warn("failed to send fetch-failure notice")
	}
}

// executeBuy fires a best-effort buy. No correctness guarantees: the result
// is reported to the alert channel and otherwise forgotten.
func (p *Pipeline) executeBuy(ctx context.Context, rec *models.TokenRecord) {
	if p.buyer == nil {
		p.logger.Warn("auto-execute enabled but no buyer configured")
		return
	}

	mint := rec.Mint
	go func() {
		sig, err := p.buyer.Buy(context.WithoutCancel(ctx), mint)
		if err != nil {
			p.logger.WithError(err).WithField("mint", mint).Error("auto buy failed")
			if serr := p.sender.SendMessage(context.WithoutCancel(ctx), p.chatID,
				fmt.Sprintf("❌ Auto buy failed for %s: %v", mint, err)); serr != nil {
				p.logger.WithError(serr).Warn("failed to send buy-failure notice")
			}
			return
		}
		p.logger.WithFields(logrus.Fields{"mint": mint, "signature": sig}).Info("auto buy submitted")
	}()
}
