package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cryptoguard/walletwatch/internal/domain"
)

const testWallet = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

var (
	bitcoin  = domain.CoinQuote{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: decimal.NewFromInt(64000)}
	ethereum = domain.CoinQuote{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: decimal.NewFromInt(3100)}
	solana   = domain.CoinQuote{ID: "solana", Symbol: "sol", Name: "Solana", CurrentPrice: decimal.NewFromInt(150)}
)

type staticSession struct {
	sess domain.Session
	ok   bool
}

func (s staticSession) Current() (domain.Session, bool) {
	return s.sess, s.ok
}

func loggedIn() staticSession {
	return staticSession{sess: domain.Session{Username: "alice", Wallet: testWallet}, ok: true}
}

// fakeGateway serves canned data; history fetches for ids in release block until
// the channel is closed and ignore cancellation, like a request already on the wire.
type fakeGateway struct {
	mu           sync.Mutex
	summary      domain.DashboardSummary
	summaryErr   error
	coins        []domain.CoinQuote
	logs         []domain.Transaction
	logsErr      error
	release      map[string]chan struct{}
	started      chan string
	historyCalls []string
	wallets      []string
}

func newFakeGateway(coins ...domain.CoinQuote) *fakeGateway {
	return &fakeGateway{
		summary: domain.DashboardSummary{Wallet: testWallet, TransactionCount: 0, Transactions: []domain.Transaction{}},
		coins:   coins,
		release: map[string]chan struct{}{},
		started: make(chan string, 16),
	}
}

func (f *fakeGateway) block(coinID string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.release[coinID] = ch
	f.mu.Unlock()
	return ch
}

func (f *fakeGateway) GetDashboard(ctx context.Context, wallet string) (domain.DashboardSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallets = append(f.wallets, wallet)
	return f.summary, f.summaryErr
}

func (f *fakeGateway) GetLogs(ctx context.Context) ([]domain.Transaction, error) {
	return f.logs, f.logsErr
}

func (f *fakeGateway) GetTopCoins(ctx context.Context, count int) []domain.CoinQuote {
	if f.coins == nil {
		return []domain.CoinQuote{}
	}
	return f.coins
}

func (f *fakeGateway) GetCoinHistory(ctx context.Context, coinID string, days int) domain.PriceHistory {
	f.mu.Lock()
	f.historyCalls = append(f.historyCalls, coinID)
	rel := f.release[coinID]
	f.mu.Unlock()

	f.started <- coinID
	if rel != nil {
		<-rel
	}
	return historyOf(coinID)
}

func (f *fakeGateway) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.historyCalls...)
}

// historyOf returns a one-sample history whose value identifies the coin.
func historyOf(coinID string) domain.PriceHistory {
	h := domain.EmptyHistory()
	h.Prices = []domain.Sample{{Time: time.Unix(1700000000, 0), Value: decimal.NewFromInt(int64(len(coinID)))}}
	return h
}

func requireHistoryOf(t *testing.T, s State, coinID string) {
	t.Helper()
	require.NotNil(t, s.Selected)
	require.NotNil(t, s.History)
	assert.Equal(t, coinID, s.Selected.ID)
	assert.Equal(t, historyOf(coinID), *s.History)
}

func TestDashboard_ActivateWithoutSession(t *testing.T) {
	gw := newFakeGateway(bitcoin)
	d := NewDashboard(gw, staticSession{}, zap.NewNop())

	err := d.Activate(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Empty(t, gw.wallets)
	assert.Empty(t, gw.calls())
}

func TestDashboard_Activate(t *testing.T) {
	gw := newFakeGateway(bitcoin, ethereum)
	d := NewDashboard(gw, loggedIn(), zap.NewNop())

	require.NoError(t, d.Activate(context.Background()))

	s := d.Snapshot()
	assert.False(t, s.Loading)
	assert.False(t, s.LoadingCoin)
	assert.Empty(t, s.Error)
	require.NotNil(t, s.Summary)
	assert.Equal(t, testWallet, s.Summary.Wallet)
	assert.Len(t, s.TopCoins, 2)
	requireHistoryOf(t, s, "bitcoin")
	assert.Equal(t, []string{testWallet}, gw.wallets)
	assert.Equal(t, []string{"bitcoin"}, gw.calls())
}

func TestDashboard_ActivateWithEmptyTopCoins(t *testing.T) {
	gw := newFakeGateway()
	d := NewDashboard(gw, loggedIn(), zap.NewNop())

	require.NoError(t, d.Activate(context.Background()))

	s := d.Snapshot()
	assert.False(t, s.Loading)
	assert.Nil(t, s.Selected)
	assert.Nil(t, s.History)
	assert.Empty(t, s.TopCoins)
	assert.Empty(t, gw.calls())
}

func TestDashboard_ActivateWithSummaryFailure(t *testing.T) {
	gw := newFakeGateway(bitcoin)
	gw.summaryErr = errors.New("connection refused")
	d := NewDashboard(gw, loggedIn(), zap.NewNop())

	err := d.Activate(context.Background())
	require.Error(t, err)

	s := d.Snapshot()
	assert.False(t, s.Loading)
	assert.Nil(t, s.Summary)
	assert.Equal(t, DashboardErrorMessage, s.Error)
	requireHistoryOf(t, s, "bitcoin")
}

func TestDashboard_LoadingFlags(t *testing.T) {
	gw := newFakeGateway(bitcoin, ethereum)
	releaseBTC := gw.block("bitcoin")
	d := NewDashboard(gw, loggedIn(), zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- d.Activate(context.Background()) }()

	require.Equal(t, "bitcoin", <-gw.started)
	s := d.Snapshot()
	assert.True(t, s.Loading)
	assert.False(t, s.LoadingCoin, "initial history is covered by the page flag")
	require.NotNil(t, s.Selected)
	assert.Equal(t, "bitcoin", s.Selected.ID)
	assert.Nil(t, s.History)

	close(releaseBTC)
	require.NoError(t, <-done)
	assert.False(t, d.Snapshot().Loading)
}

func TestDashboard_LatestSelectionWins(t *testing.T) {
	tests := []struct {
		name  string
		order []string
	}{
		{name: "older fetch resolves first", order: []string{"bitcoin", "ethereum"}},
		{name: "newer fetch resolves first", order: []string{"ethereum", "bitcoin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway(bitcoin, ethereum)
			releases := map[string]chan struct{}{
				"bitcoin":  gw.block("bitcoin"),
				"ethereum": gw.block("ethereum"),
			}
			d := NewDashboard(gw, loggedIn(), zap.NewNop())
			ctx := context.Background()

			results := map[string]chan bool{"bitcoin": make(chan bool, 1), "ethereum": make(chan bool, 1)}
			go func() { results["bitcoin"] <- d.SelectCoin(ctx, bitcoin) }()
			require.Equal(t, "bitcoin", <-gw.started)
			go func() { results["ethereum"] <- d.SelectCoin(ctx, ethereum) }()
			require.Equal(t, "ethereum", <-gw.started)

			s := d.Snapshot()
			require.NotNil(t, s.Selected)
			assert.Equal(t, "ethereum", s.Selected.ID)
			assert.True(t, s.LoadingCoin)

			for _, id := range tt.order {
				close(releases[id])
				committed := <-results[id]
				assert.Equal(t, id == "ethereum", committed, id)
			}

			final := d.Snapshot()
			requireHistoryOf(t, final, "ethereum")
			assert.False(t, final.LoadingCoin)
		})
	}
}

func TestDashboard_StaleResultKeepsLoadingFlag(t *testing.T) {
	gw := newFakeGateway(bitcoin, ethereum)
	releaseBTC := gw.block("bitcoin")
	releaseETH := gw.block("ethereum")
	d := NewDashboard(gw, loggedIn(), zap.NewNop())
	ctx := context.Background()

	btcDone := make(chan bool, 1)
	go func() { btcDone <- d.SelectCoin(ctx, bitcoin) }()
	<-gw.started
	ethDone := make(chan bool, 1)
	go func() { ethDone <- d.SelectCoin(ctx, ethereum) }()
	<-gw.started

	close(releaseBTC)
	assert.False(t, <-btcDone)
	s := d.Snapshot()
	assert.True(t, s.LoadingCoin, "the pending ethereum fetch still owns the flag")
	assert.Nil(t, s.History)

	close(releaseETH)
	assert.True(t, <-ethDone)
	assert.False(t, d.Snapshot().LoadingCoin)
}

func TestDashboard_UserSelectionDuringInitialLoad(t *testing.T) {
	gw := newFakeGateway(bitcoin, ethereum)
	releaseBTC := gw.block("bitcoin")
	d := NewDashboard(gw, loggedIn(), zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- d.Activate(context.Background()) }()
	require.Equal(t, "bitcoin", <-gw.started)

	require.NoError(t, d.SelectCoinByID(context.Background(), "ethereum"))
	<-gw.started

	close(releaseBTC)
	require.NoError(t, <-done)

	s := d.Snapshot()
	assert.False(t, s.Loading)
	requireHistoryOf(t, s, "ethereum")
}

func TestDashboard_SelectCoinByIDUnknown(t *testing.T) {
	gw := newFakeGateway(bitcoin)
	d := NewDashboard(gw, loggedIn(), zap.NewNop())
	require.NoError(t, d.Activate(context.Background()))

	err := d.SelectCoinByID(context.Background(), "dogecoin")
	assert.ErrorIs(t, err, ErrUnknownCoin)
	requireHistoryOf(t, d.Snapshot(), "bitcoin")
}

func TestDashboard_DeactivateDropsPendingHistory(t *testing.T) {
	gw := newFakeGateway(bitcoin, solana)
	releaseSOL := gw.block("solana")
	d := NewDashboard(gw, loggedIn(), zap.NewNop())

	done := make(chan bool, 1)
	go func() { done <- d.SelectCoin(context.Background(), solana) }()
	<-gw.started

	d.Deactivate()
	close(releaseSOL)
	assert.False(t, <-done)

	s := d.Snapshot()
	assert.Nil(t, s.History)
	assert.False(t, s.LoadingCoin)
}

func TestDashboard_Subscribe(t *testing.T) {
	gw := newFakeGateway(bitcoin)
	d := NewDashboard(gw, loggedIn(), zap.NewNop())

	updates, stop := d.Subscribe()
	defer stop()

	require.NoError(t, d.Activate(context.Background()))

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("no state notification")
	}

	stop()
	stop()
}

func TestDashboard_SnapshotIsACopy(t *testing.T) {
	gw := newFakeGateway(bitcoin, ethereum)
	d := NewDashboard(gw, loggedIn(), zap.NewNop())
	require.NoError(t, d.Activate(context.Background()))

	s := d.Snapshot()
	s.TopCoins[0].ID = "mutated"
	s.Selected.ID = "mutated"

	again := d.Snapshot()
	assert.Equal(t, "bitcoin", again.TopCoins[0].ID)
	assert.Equal(t, "bitcoin", again.Selected.ID)
}
