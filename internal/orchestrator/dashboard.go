// Package orchestrator sequences the dashboard fetches and reconciles their results
// into one displayed state.
package orchestrator

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cryptoguard/walletwatch/internal/domain"
)

// DashboardErrorMessage is shown when the wallet summary could not be loaded.
const DashboardErrorMessage = "Failed to load dashboard data"

var (
	// ErrNoSession is returned by Activate when nobody is logged in; views redirect to login.
	ErrNoSession = errors.New("no active session")
	// ErrUnknownCoin is returned when selecting a coin that is not in the top list.
	ErrUnknownCoin = errors.New("coin is not in the top list")
)

type dataGateway interface {
	GetDashboard(ctx context.Context, wallet string) (domain.DashboardSummary, error)
	GetLogs(ctx context.Context) ([]domain.Transaction, error)
	GetTopCoins(ctx context.Context, count int) []domain.CoinQuote
	GetCoinHistory(ctx context.Context, coinID string, days int) domain.PriceHistory
}

type sessionReader interface {
	Current() (domain.Session, bool)
}

// State is the displayed triple (top coins, selected coin, its history) plus the
// wallet summary and loading flags.
type State struct {
	Session  domain.Session
	Summary  *domain.DashboardSummary
	Error    string
	TopCoins []domain.CoinQuote
	Selected *domain.CoinQuote
	// History always belongs to Selected when both are set.
	History *domain.PriceHistory
	// Loading covers the initial fetches only.
	Loading bool
	// LoadingCoin is set while a history fetch started by SelectCoin is pending.
	LoadingCoin bool
}

// Dashboard owns the dashboard state for one browser session.
type Dashboard struct {
	gw       dataGateway
	sessions sessionReader
	logger   *zap.Logger
	opts     options

	mu    sync.Mutex
	state State
	// activation and selection are bumped on every (re)load, selection and teardown.
	// Results are committed only if the value captured at dispatch is still current.
	activation    uint64
	selection     uint64
	cancelHistory context.CancelFunc
	subs          map[chan struct{}]struct{}
}

// NewDashboard creates an inactive dashboard.
func NewDashboard(gw dataGateway, sessions sessionReader, logger *zap.Logger, opts ...Option) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dashboard{
		gw:       gw,
		sessions: sessions,
		logger:   logger.Named("dashboard"),
		opts:     newOptions(opts),
		state:    State{TopCoins: []domain.CoinQuote{}},
		subs:     make(map[chan struct{}]struct{}),
	}
}

// Activate runs the initial load: wallet summary and top coins in parallel, then the
// history of the first coin. It returns ErrNoSession without fetching anything when
// nobody is logged in, and the wrapped summary error when the summary failed.
func (d *Dashboard) Activate(ctx context.Context) error {
	sess, ok := d.sessions.Current()
	if !ok {
		return ErrNoSession
	}

	d.mu.Lock()
	d.activation++
	epoch := d.activation
	d.invalidateSelectionLocked()
	d.state = State{Session: sess, TopCoins: []domain.CoinQuote{}, Loading: true}
	d.mu.Unlock()
	d.notify()

	var (
		summary    domain.DashboardSummary
		summaryErr error
		coins      []domain.CoinQuote
	)
	var g errgroup.Group
	g.Go(func() error {
		summary, summaryErr = d.gw.GetDashboard(ctx, sess.Wallet)
		return nil
	})
	g.Go(func() error {
		coins = d.gw.GetTopCoins(ctx, d.opts.topCoins)
		return nil
	})
	_ = g.Wait()

	if summaryErr != nil {
		d.logger.Error("dashboard summary failed", zap.String("wallet", sess.Wallet), zap.Error(summaryErr))
		summaryErr = errors.Wrap(summaryErr, "activate dashboard")
	}

	d.mu.Lock()
	if epoch != d.activation {
		d.mu.Unlock()
		d.logger.Debug("activation superseded", zap.Uint64("epoch", epoch))
		return summaryErr
	}
	if summaryErr != nil {
		d.state.Summary = nil
		d.state.Error = DashboardErrorMessage
	} else {
		d.state.Summary = &summary
		d.state.Error = ""
	}
	d.state.TopCoins = coins

	// the first coin is selected in the same critical section that publishes the
	// list, so a click on the fresh list always comes after it
	var (
		tag    uint64
		hctx   context.Context
		cancel context.CancelFunc
	)
	if len(coins) > 0 {
		tag, hctx, cancel = d.beginSelectionLocked(ctx, coins[0], false)
	}
	d.mu.Unlock()
	d.notify()

	if len(coins) > 0 {
		history := d.gw.GetCoinHistory(hctx, coins[0].ID, d.opts.historyDays)
		cancel()
		d.commitHistory(tag, coins[0].ID, history)
	} else {
		d.logger.Info("no top coins, skipping history")
	}

	d.mu.Lock()
	if epoch == d.activation {
		d.state.Loading = false
	}
	d.mu.Unlock()
	d.notify()

	return summaryErr
}

// SelectCoin makes coin the selection immediately and loads its history. The result
// is committed only if no later selection happened meanwhile; the return value
// reports whether it was.
func (d *Dashboard) SelectCoin(ctx context.Context, coin domain.CoinQuote) bool {
	if coin.ID == "" {
		return false
	}

	tag, hctx, cancel := d.beginSelection(ctx, coin, true)
	defer cancel()

	history := d.gw.GetCoinHistory(hctx, coin.ID, d.opts.historyDays)
	return d.commitHistory(tag, coin.ID, history)
}

// SelectCoinByID selects a coin of the current top list.
func (d *Dashboard) SelectCoinByID(ctx context.Context, coinID string) error {
	coin, ok := d.findCoin(coinID)
	if !ok {
		return errors.Wrap(ErrUnknownCoin, coinID)
	}
	d.SelectCoin(ctx, coin)
	return nil
}

// Deactivate tears the view down: pending history fetches are cancelled and their
// results dropped.
func (d *Dashboard) Deactivate() {
	d.mu.Lock()
	d.activation++
	d.invalidateSelectionLocked()
	d.state.Loading = false
	d.state.LoadingCoin = false
	d.mu.Unlock()
	d.notify()
}

// Snapshot returns a copy of the current state.
func (d *Dashboard) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.state
	s.TopCoins = append([]domain.CoinQuote(nil), d.state.TopCoins...)
	if d.state.Summary != nil {
		summary := *d.state.Summary
		summary.Transactions = append([]domain.Transaction(nil), summary.Transactions...)
		s.Summary = &summary
	}
	if d.state.Selected != nil {
		selected := *d.state.Selected
		s.Selected = &selected
	}
	if d.state.History != nil {
		history := *d.state.History
		s.History = &history
	}
	return s
}

// Subscribe returns a channel signalled after every state change and a function
// that stops the subscription. Signals coalesce; read Snapshot on each.
func (d *Dashboard) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	d.mu.Lock()
	d.subs[ch] = struct{}{}
	d.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subs, ch)
			d.mu.Unlock()
		})
	}
}

func (d *Dashboard) beginSelection(ctx context.Context, coin domain.CoinQuote, markLoading bool) (uint64, context.Context, context.CancelFunc) {
	d.mu.Lock()
	tag, hctx, cancel := d.beginSelectionLocked(ctx, coin, markLoading)
	d.mu.Unlock()
	d.notify()
	return tag, hctx, cancel
}

func (d *Dashboard) beginSelectionLocked(ctx context.Context, coin domain.CoinQuote, markLoading bool) (uint64, context.Context, context.CancelFunc) {
	hctx, cancel := context.WithCancel(ctx)

	d.invalidateSelectionLocked()
	tag := d.selection
	d.cancelHistory = cancel
	selected := coin
	d.state.Selected = &selected
	d.state.History = nil
	if markLoading {
		d.state.LoadingCoin = true
	}

	d.logger.Debug("coin selected", zap.String("coin", coin.ID), zap.Uint64("tag", tag))
	return tag, hctx, cancel
}

func (d *Dashboard) commitHistory(tag uint64, coinID string, history domain.PriceHistory) bool {
	d.mu.Lock()
	if tag != d.selection || d.state.Selected == nil || d.state.Selected.ID != coinID {
		d.mu.Unlock()
		d.logger.Debug("discarding stale history", zap.String("coin", coinID), zap.Uint64("tag", tag))
		return false
	}
	d.state.History = &history
	d.state.LoadingCoin = false
	d.cancelHistory = nil
	d.mu.Unlock()
	d.notify()
	return true
}

func (d *Dashboard) invalidateSelectionLocked() {
	d.selection++
	if d.cancelHistory != nil {
		d.cancelHistory()
		d.cancelHistory = nil
	}
}

func (d *Dashboard) findCoin(coinID string) (domain.CoinQuote, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.state.TopCoins {
		if c.ID == coinID {
			return c, true
		}
	}
	return domain.CoinQuote{}, false
}

func (d *Dashboard) notify() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for ch := range d.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
