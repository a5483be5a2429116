// Package gateway is the single point of contact with the backend and market-data
// services. Backend failures on the dashboard and logs paths are returned to the
// caller; login and market-data failures are turned into fallback values.
package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cryptoguard/walletwatch/internal/clients"
	"github.com/cryptoguard/walletwatch/internal/domain"
	"github.com/cryptoguard/walletwatch/pkg/retrier"
)

const (
	// DefaultTopCoins number of assets requested when the caller passes no count.
	DefaultTopCoins = 10
	// DefaultHistoryDays history window requested when the caller passes no window.
	DefaultHistoryDays = 7

	defaultTimeout = 10 * time.Second

	networkErrorMessage       = "Network error"
	invalidCredentialsMessage = "Invalid username or password"
)

// ErrEmptyWallet is returned by GetDashboard when no wallet address is given.
var ErrEmptyWallet = errors.New("wallet address is empty")

type backend interface {
	Login(ctx context.Context, username, password string) (domain.LoginResult, error)
	GetDashboard(ctx context.Context, wallet string) (domain.DashboardSummary, error)
	GetLogs(ctx context.Context) ([]domain.Transaction, error)
}

type marketData interface {
	Markets(ctx context.Context, count int) ([]domain.CoinQuote, error)
	MarketChart(ctx context.Context, coinID string, days int) (domain.PriceHistory, error)
}

// Gateway wraps both upstream services behind typed operations.
type Gateway struct {
	backend backend
	market  marketData
	retrier *retrier.Retrier
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout bounds every remote call, retries included.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithRetrier replaces the retrier used for market-data calls.
func WithRetrier(r *retrier.Retrier) Option {
	return func(g *Gateway) {
		g.retrier = r
	}
}

// New creates a gateway over the given backend and market-data clients.
func New(b backend, m marketData, logger *zap.Logger, opts ...Option) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		backend: b,
		market:  m,
		timeout: defaultTimeout,
		logger:  logger.Named("gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.retrier == nil {
		g.retrier = retrier.New(
			retrier.WithRetryIf(clients.IsRetryable),
			retrier.WithOnRetry(func(attempt int, err error) {
				g.logger.Debug("retrying market data request", zap.Int("attempt", attempt), zap.Error(err))
			}),
		)
	}
	return g
}

// Login posts credentials. It never returns an error: rejections and failures are
// reported through LoginResult.Success and LoginResult.Message.
func (g *Gateway) Login(ctx context.Context, username, password string) domain.LoginResult {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	res, err := g.backend.Login(ctx, username, password)
	if err != nil {
		g.logger.Warn("login request failed", zap.String("username", username), zap.Error(err))
		return domain.LoginResult{Success: false, Message: networkErrorMessage, Unreachable: true}
	}

	if !res.Success {
		if res.Message == "" {
			res.Message = invalidCredentialsMessage
		}
		res.Unreachable = false
		return res
	}

	session, err := res.Session()
	if err == nil {
		err = domain.ValidateWallet(session.Wallet)
	}
	if err != nil {
		// an incomplete identity is treated like a failed request
		g.logger.Warn("login response rejected", zap.String("username", username), zap.Error(err))
		return domain.LoginResult{Success: false, Message: networkErrorMessage, Unreachable: true}
	}

	return domain.LoginResult{Success: true, Username: session.Username, Wallet: session.Wallet, Message: res.Message}
}

// GetDashboard fetches the aggregate and transaction list of wallet.
func (g *Gateway) GetDashboard(ctx context.Context, wallet string) (domain.DashboardSummary, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return domain.DashboardSummary{}, ErrEmptyWallet
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	summary, err := g.backend.GetDashboard(ctx, wallet)
	if err != nil {
		return domain.DashboardSummary{}, errors.Wrap(err, "get dashboard")
	}
	return summary, nil
}

// GetLogs fetches the full stored transaction log.
func (g *Gateway) GetLogs(ctx context.Context) ([]domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	logs, err := g.backend.GetLogs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get logs")
	}
	return logs, nil
}

// GetTopCoins returns count assets ordered by market cap. Any failure yields an
// empty, non-nil slice.
func (g *Gateway) GetTopCoins(ctx context.Context, count int) []domain.CoinQuote {
	if count <= 0 {
		count = DefaultTopCoins
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	quotes, err := retrier.DoWithData(g.retrier, ctx, func(ctx context.Context) ([]domain.CoinQuote, error) {
		return g.market.Markets(ctx, count)
	})
	if err != nil {
		g.logger.Warn("top coins unavailable, using empty list", zap.Int("count", count), zap.Error(err))
		return []domain.CoinQuote{}
	}
	return quotes
}

// GetCoinHistory returns days of history for coinID. Any failure yields a history
// with all three series empty.
func (g *Gateway) GetCoinHistory(ctx context.Context, coinID string, days int) domain.PriceHistory {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	if strings.TrimSpace(coinID) == "" {
		return domain.EmptyHistory()
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	history, err := retrier.DoWithData(g.retrier, ctx, func(ctx context.Context) (domain.PriceHistory, error) {
		return g.market.MarketChart(ctx, coinID, days)
	})
	if err != nil {
		g.logger.Warn("coin history unavailable, using empty history",
			zap.String("coin", coinID), zap.Int("days", days), zap.Error(err))
		return domain.EmptyHistory()
	}
	return history
}
