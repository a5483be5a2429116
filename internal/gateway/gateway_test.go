package gateway

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cryptoguard/walletwatch/internal/clients"
	"github.com/cryptoguard/walletwatch/internal/domain"
	"github.com/cryptoguard/walletwatch/pkg/retrier"
)

const testWallet = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

var errNetwork = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

type stubBackend struct {
	login     domain.LoginResult
	loginErr  error
	dashboard domain.DashboardSummary
	err       error
	wallets   []string
}

func (s *stubBackend) Login(ctx context.Context, username, password string) (domain.LoginResult, error) {
	return s.login, s.loginErr
}

func (s *stubBackend) GetDashboard(ctx context.Context, wallet string) (domain.DashboardSummary, error) {
	s.wallets = append(s.wallets, wallet)
	return s.dashboard, s.err
}

func (s *stubBackend) GetLogs(ctx context.Context) ([]domain.Transaction, error) {
	return s.dashboard.Transactions, s.err
}

type stubMarket struct {
	quotes  []domain.CoinQuote
	history domain.PriceHistory
	err     error
	calls   int
	block   bool
}

func (s *stubMarket) Markets(ctx context.Context, count int) ([]domain.CoinQuote, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.quotes, s.err
}

func (s *stubMarket) MarketChart(ctx context.Context, coinID string, days int) (domain.PriceHistory, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return domain.PriceHistory{}, ctx.Err()
	}
	return s.history, s.err
}

func noRetry() Option {
	return WithRetrier(retrier.New(retrier.WithMaxRetries(0)))
}

func TestGateway_Login(t *testing.T) {
	tests := []struct {
		name            string
		backend         *stubBackend
		wantSuccess     bool
		wantMessage     string
		wantUnreachable bool
	}{
		{
			name:        "success",
			backend:     &stubBackend{login: domain.LoginResult{Success: true, Username: "alice", Wallet: testWallet}},
			wantSuccess: true,
		},
		{
			name:        "wrong credentials",
			backend:     &stubBackend{login: domain.LoginResult{Success: false, Message: "Invalid username or password"}},
			wantMessage: "Invalid username or password",
		},
		{
			name:        "rejection without message",
			backend:     &stubBackend{login: domain.LoginResult{Success: false}},
			wantMessage: invalidCredentialsMessage,
		},
		{
			name:            "network failure",
			backend:         &stubBackend{loginErr: errNetwork},
			wantMessage:     networkErrorMessage,
			wantUnreachable: true,
		},
		{
			name:            "success without username",
			backend:         &stubBackend{login: domain.LoginResult{Success: true, Wallet: testWallet}},
			wantMessage:     networkErrorMessage,
			wantUnreachable: true,
		},
		{
			name:            "success without wallet",
			backend:         &stubBackend{login: domain.LoginResult{Success: true, Username: "alice"}},
			wantMessage:     networkErrorMessage,
			wantUnreachable: true,
		},
		{
			name:            "success with malformed wallet",
			backend:         &stubBackend{login: domain.LoginResult{Success: true, Username: "alice", Wallet: "nope"}},
			wantMessage:     networkErrorMessage,
			wantUnreachable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.backend, &stubMarket{}, zap.NewNop())
			res := g.Login(context.Background(), "alice", "pw")
			assert.Equal(t, tt.wantSuccess, res.Success)
			assert.Equal(t, tt.wantMessage, res.Message)
			assert.Equal(t, tt.wantUnreachable, res.Unreachable)
			if tt.wantSuccess {
				assert.Equal(t, "alice", res.Username)
				assert.Equal(t, testWallet, res.Wallet)
			}
		})
	}
}

func TestGateway_LoginAgainstDeadServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := New(clients.NewBackendClient(url, nil), &stubMarket{}, zap.NewNop())
	res := g.Login(context.Background(), "alice", "pw")
	assert.False(t, res.Success)
	assert.Equal(t, networkErrorMessage, res.Message)
}

func TestGateway_GetDashboard(t *testing.T) {
	t.Run("empty wallet is rejected before any request", func(t *testing.T) {
		b := &stubBackend{}
		g := New(b, &stubMarket{}, zap.NewNop())
		_, err := g.GetDashboard(context.Background(), "  ")
		assert.ErrorIs(t, err, ErrEmptyWallet)
		assert.Empty(t, b.wallets)
	})

	t.Run("failure propagates", func(t *testing.T) {
		g := New(&stubBackend{err: errNetwork}, &stubMarket{}, zap.NewNop())
		_, err := g.GetDashboard(context.Background(), testWallet)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "get dashboard")
	})

	t.Run("success", func(t *testing.T) {
		b := &stubBackend{dashboard: domain.DashboardSummary{Wallet: testWallet, Transactions: []domain.Transaction{}}}
		g := New(b, &stubMarket{}, zap.NewNop())
		summary, err := g.GetDashboard(context.Background(), testWallet)
		require.NoError(t, err)
		assert.Equal(t, testWallet, summary.Wallet)
		assert.Equal(t, []string{testWallet}, b.wallets)
	})
}

func TestGateway_GetLogsPropagatesFailure(t *testing.T) {
	g := New(&stubBackend{err: errNetwork}, &stubMarket{}, zap.NewNop())
	logs, err := g.GetLogs(context.Background())
	assert.Error(t, err)
	assert.Nil(t, logs)
}

func TestGateway_MarketDataFallbacks(t *testing.T) {
	t.Run("top coins failure returns empty list", func(t *testing.T) {
		g := New(&stubBackend{}, &stubMarket{err: errNetwork}, zap.NewNop(), noRetry())
		quotes := g.GetTopCoins(context.Background(), 10)
		require.NotNil(t, quotes)
		assert.Empty(t, quotes)
	})

	t.Run("history failure returns empty series", func(t *testing.T) {
		g := New(&stubBackend{}, &stubMarket{err: errNetwork}, zap.NewNop(), noRetry())
		h := g.GetCoinHistory(context.Background(), "bitcoin", 7)
		assert.Equal(t, domain.EmptyHistory(), h)
	})

	t.Run("timeout is treated as failure", func(t *testing.T) {
		m := &stubMarket{block: true}
		g := New(&stubBackend{}, m, zap.NewNop(), noRetry(), WithTimeout(20*time.Millisecond))
		assert.Empty(t, g.GetTopCoins(context.Background(), 10))
		assert.True(t, g.GetCoinHistory(context.Background(), "bitcoin", 7).Empty())
	})

	t.Run("transient failures are retried", func(t *testing.T) {
		m := &stubMarket{err: errNetwork}
		r := retrier.New(retrier.WithMaxRetries(2), retrier.WithInitialInterval(time.Millisecond),
			retrier.WithRetryIf(clients.IsRetryable))
		g := New(&stubBackend{}, m, zap.NewNop(), WithRetrier(r))
		assert.Empty(t, g.GetTopCoins(context.Background(), 5))
		assert.Equal(t, 3, m.calls)
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		m := &stubMarket{err: &clients.StatusError{Code: http.StatusNotFound}}
		r := retrier.New(retrier.WithMaxRetries(2), retrier.WithInitialInterval(time.Millisecond),
			retrier.WithRetryIf(clients.IsRetryable))
		g := New(&stubBackend{}, m, zap.NewNop(), WithRetrier(r))
		assert.True(t, g.GetCoinHistory(context.Background(), "nope", 7).Empty())
		assert.Equal(t, 1, m.calls)
	})

	t.Run("empty coin id skips the request", func(t *testing.T) {
		m := &stubMarket{}
		g := New(&stubBackend{}, m, zap.NewNop())
		assert.True(t, g.GetCoinHistory(context.Background(), "", 7).Empty())
		assert.Zero(t, m.calls)
	})

	t.Run("success passes data through", func(t *testing.T) {
		m := &stubMarket{quotes: []domain.CoinQuote{{ID: "bitcoin", Symbol: "btc"}}}
		g := New(&stubBackend{}, m, zap.NewNop())
		quotes := g.GetTopCoins(context.Background(), 0)
		require.Len(t, quotes, 1)
		assert.Equal(t, "bitcoin", quotes[0].ID)
	})
}
