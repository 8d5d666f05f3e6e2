package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintwatch/mint-alert-bot/internal/constants"
	"github.com/mintwatch/mint-alert-bot/internal/filter"
	"github.com/mintwatch/mint-alert-bot/internal/models"
	"github.com/mintwatch/mint-alert-bot/internal/rpc"
)

const (
	mintA = "So11111111111111111111111111111111111111112"
	mintB = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

type stubFetcher struct {
	records   map[string]*models.TokenRecord
	panicMint string
	calls     []string
}

func (f *stubFetcher) Fetch(_ context.Context, mint string) *models.TokenRecord {
	f.calls = append(f.calls, mint)
	if mint == f.panicMint {
		panic("fetcher exploded")
	}
	return f.records[mint]
}

type stubChain struct {
	supply  string
	decs    int
	err     error
	queried []string
}

func (c *stubChain) GetMintState(_ context.Context, mint string) (*rpc.MintState, error) {
	c.queried = append(c.queried, mint)
	if c.err != nil {
		return nil, c.err
	}
	return &rpc.MintState{Supply: c.supply, Decimals: c.decs}, nil
}

type stubSender struct {
	messages []string
	chats    []int64
}

func (s *stubSender) SendMessage(_ context.Context, chatID int64, text string) error {
	s.chats = append(s.chats, chatID)
	s.messages = append(s.messages, text)
	return nil
}

type stubToggles struct {
	bypass bool
	auto   bool
}

func (t stubToggles) BypassFilters(context.Context) bool { return t.bypass }
func (t stubToggles) AutoExecute(context.Context) bool   { return t.auto }

type stubBuyer struct {
	bought chan string
	err    error
}

func (b *stubBuyer) Buy(_ context.Context, mint string) (string, error) {
	b.bought <- mint
	return "txsig", b.err
}

func passingRecord(mint string) *models.TokenRecord {
	return &models.TokenRecord{
		Mint:              mint,
		Name:              "Tok " + mint[:4],
		Liquidity:         models.Float(10000),
		MarketCap:         models.Float(50000),
		DevHolding:        models.Float(5),
		PoolSupply:        models.Float(80),
		LaunchPrice:       models.Float(0.00000001),
		MintAuthRevoked:   true,
		FreezeAuthRevoked: true,
	}
}

func failingRecord(mint string) *models.TokenRecord {
	rec := passingRecord(mint)
	rec.Liquidity = models.Float(1) // below the default floor
	return rec
}

func mintEvent(mint string) models.RawEvent {
	return models.RawEvent{
		Type:      constants.EventTypeTokenMint,
		Signature: "sig-" + mint[:4],
		Program:   constants.PumpFunProgram,
		Mint:      mint,
	}
}

type testPipeline struct {
	pipe    *Pipeline
	fetcher *stubFetcher
	chain   *stubChain
	sender  *stubSender
}

func newTestPipeline(t *testing.T, toggles Toggles, buyer Buyer) *testPipeline {
	t.Helper()

	fetcher := &stubFetcher{records: map[string]*models.TokenRecord{}}
	chain := &stubChain{supply: "1000000000000", decs: 6}
	sender := &stubSender{}

	pipe := New(PipelineConfig{
		Fetcher:     fetcher,
		Chain:       chain,
		Filters:     filter.NewStore(filter.DefaultConfig()),
		Sender:      sender,
		Buyer:       buyer,
		Toggles:     toggles,
		Rate:        NewRateWindow(5, time.Minute),
		AlertChatID: 7,
	})

	return &testPipeline{pipe: pipe, fetcher: fetcher, chain: chain, sender: sender}
}

func TestProcessBatch_FlushesOneCombinedMessage(t *testing.T) {
	tp := newTestPipeline(t, stubToggles{}, nil)
	tp.fetcher.records[mintA] = passingRecord(mintA)
	tp.fetcher.records[mintB] = passingRecord(mintB)

	err := tp.pipe.ProcessBatch(context.Background(), []models.RawEvent{
		mintEvent(mintA),
		mintEvent(mintB),
	})
	require.NoError(t, err)

	require.Len(t, tp.sender.messages, 1)
	assert.Equal(t, int64(7), tp.sender.chats[0])
	assert.Contains(t, tp.sender.messages[0], mintA)
	assert.Contains(t, tp.sender.messages[0], mintB)
	assert.Contains(t, tp.sender.messages[0], "\n\n")

	// Events were processed in array order.
	assert.Equal(t, []string{mintA, mintB}, tp.fetcher.calls)
}

func TestProcessBatch_NothingAcceptedNothingSent(t *testing.T) {
	tp := newTestPipeline(t, stubToggles{}, nil)

	// Event of another type is skipped silently.
	ev := mintEvent(mintA)
	ev.Type = "SWAP"

	err := tp.pipe.ProcessBatch(context.Background(), []models.RawEvent{ev})
	require.NoError(t, err)
	assert.Empty(t, tp.sender.messages)
	assert.Empty(t, tp.fetcher.calls)
}

func TestProcessBatch_RateWindowDropsWholeBatch(t *testing.T) {
	tp := newTestPipeline(t, stubToggles{}, nil)
	tp.fetcher.records[mintA] = passingRecord(mintA)

	for i := 0; i < 5; i++ {
		err := tp.pipe.ProcessBatch(context.Background(), []models.RawEvent{mintEvent(mintA)})
		require.NoError(t, err)
	}
	assert.Len(t, tp.sender.messages, 5)

	// The sixth batch in the window is dropped without error and without
	// touching the fetcher.
	calls := len(tp.fetcher.calls)
	err := tp.pipe.ProcessBatch(context.Background(), []models.RawEvent{mintEvent(mintA)})
	require.NoError(t, err)
	assert.Len(t, tp.sender.messages, 5)
	assert.Len(t, tp.fetcher.calls, calls)
}

func TestProcessBatch_RejectionNotice(t *testing.T) {
	tp := newTestPipeline(t, stubToggles{}, nil)
	tp.fetcher.records[mintA] = failingRecord(mintA)

	err := tp.pipe.ProcessBatch(context.Background(), []models.RawEvent{mintEvent(mintA)})
	require.NoError(t, err)

	require.Len(t, tp.sender.messages, 1)
	assert.Contains(t, tp.sender.messages[0], "did not pass filters")
}

func TestProcessBatch_BypassSkipsFilters(t *testing.T) {
	tp := newTestPipeline(t, stubToggles{bypass: true}, nil)
	tp.fetcher.records[mintA] = failingRecord(mintA)

	err := tp.pipe.ProcessBatch(context.Background(), []models.RawEvent{mintEvent(mintA)})
	require.NoError(t, err)

	require.Len(t, tp.sender.messages, 1)
	assert.Contains(t, tp.sender.messages[0], "🚀 New Token")
}

func TestProcessBatch_FetchFailureDeduplicated(t *testing.T) {
	tp := newTestPipeline(t, stubToggles{}, nil)
	// No records registered: every fetch returns nil.

	ctx := context.Background()

	// Same mint twice: one notice.
	require.NoError(t, tp.pipe.ProcessBatch(ctx, []models.RawEvent{mintEvent(mintA)}))
	require.NoError(t, tp.pipe.ProcessBatch(ctx, []models.RawEvent{mintEvent(mintA)}))
	require.Len(t, tp.sender.messages, 1)
	assert.Contains(t, tp.sender.messages[0], mintA)

	// A different failing mint gets its own notice.
	require.NoError(t, tp.pipe.ProcessBatch(ctx, []models.RawEvent{mintEvent(mintB)}))
	require.Len(t, tp.sender.messages, 2)
	assert.Contains(t, tp.sender.messages[1], mintB)

	// The first mint failing again is no longer the last failure, so it
	// notifies again.
	require.NoError(t, tp.pipe.ProcessBatch(ctx, []models.RawEvent{mintEvent(mintA)}))
	require.Len(t, tp.sender.messages, 3)
}

func TestProcessBatch_NonFungibleMintSkipped(t *testing.T) {
	tp := newTestPipeline(t, stubToggles{}, nil)
	tp.chain.supply = "1"
	tp.chain.decs = 0
	tp.fetcher.records[mintA] = passingRecord(mintA)

	err := tp.pipe.ProcessBatch(context.Background(), []models.RawEvent{mintEvent(mintA)})
	require.NoError(t, err)

	assert.Empty(t, tp.sender.messages)
	assert.Empty(t, tp.fetcher.calls)
}

func TestProcessBatch_ChainErrorSkipsEvent(t *testing.T) {
	tp := newTestPipeline(t, stubToggles{}, nil)
	tp.chain.err = assert.AnError
	tp.fetcher.records[mintA] = passingRecord(mintA)

	err := tp.pipe.ProcessBatch(context.Background(), []models.RawEvent{mintEvent(mintA)})
	require.NoError(t, err)
	assert.Empty(t, tp.sender.messages)
}

func TestProcessBatch_PanicInOneEventDoesNotAbortSiblings(t *testing.T) {
	tp := newTestPipeline(t, stubToggles{}, nil)
	tp.fetcher.panicMint = mintA
	tp.fetcher.records[mintB] = passingRecord(mintB)

	err := tp.pipe.ProcessBatch(context.Background(), []models.RawEvent{
		mintEvent(mintA),
		mintEvent(mintB),
	})
	require.NoError(t, err)

	require.Len(t, tp.sender.messages, 1)
	assert.Contains(t, tp.sender.messages[0], mintB)
}

func TestProcessBatch_AutoExecuteTriggersBuy(t *testing.T) {
	buyer := &stubBuyer{bought: make(chan string, 1)}
	tp := newTestPipeline(t, stubToggles{auto: true}, buyer)
	tp.fetcher.records[mintA] = passingRecord(mintA)

	err := tp.pipe.ProcessBatch(context.Background(), []models.RawEvent{mintEvent(mintA)})
	require.NoError(t, err)

	select {
	case mint := <-buyer.bought:
		assert.Equal(t, mintA, mint)
	case <-time.After(2 * time.Second):
		t.Fatal("buy was never executed")
	}

	// The alert still goes out alongside the buy.
	require.Len(t, tp.sender.messages, 1)
	assert.Contains(t, tp.sender.messages[0], "🚀 New Token")
}

func TestProcessScanned_SendsImmediately(t *testing.T) {
	tp := newTestPipeline(t, stubToggles{}, nil)
	tp.fetcher.records[mintA] = passingRecord(mintA)

	ev := mintEvent(mintA)
	tp.pipe.ProcessScanned(context.Background(), &ev)

	require.Len(t, tp.sender.messages, 1)
	assert.Contains(t, tp.sender.messages[0], mintA)
}

func TestProcessScanned_DoesNotConsumeRateWindow(t *testing.T) {
	tp := newTestPipeline(t, stubToggles{}, nil)
	tp.fetcher.records[mintA] = passingRecord(mintA)

	ev := mintEvent(mintA)
	tp.pipe.ProcessScanned(context.Background(), &ev)

	used, _ := tp.pipe.Rate().Usage()
	assert.Equal(t, 0, used)
}
