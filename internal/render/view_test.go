package render

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoguard/walletwatch/internal/domain"
	"github.com/cryptoguard/walletwatch/internal/orchestrator"
)

const wallet = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

func TestTransactions_EmptyState(t *testing.T) {
	summary := domain.DashboardSummary{Wallet: wallet, TransactionCount: 0, Transactions: []domain.Transaction{}}

	view := Dashboard(orchestrator.State{Summary: &summary}, time.UTC)
	require.NotNil(t, view.Transactions)
	assert.True(t, view.Transactions.Empty())
	assert.Equal(t, NoTransactionsMessage, view.Transactions.EmptyMessage)
	require.NotNil(t, view.Summary)
	assert.Equal(t, "0", view.Summary.TransactionCount)
	assert.Equal(t, "0x742d35Cc66...", view.Summary.Wallet)
	assert.Equal(t, wallet, view.Summary.WalletFull)

	assert.Equal(t, NoLogsMessage, Logs(nil, time.UTC).EmptyMessage)
}

func TestDashboard_NoTransactionTableWithoutSummary(t *testing.T) {
	tests := []struct {
		name  string
		state orchestrator.State
	}{
		{
			name:  "summary failed",
			state: orchestrator.State{Error: orchestrator.DashboardErrorMessage},
		},
		{
			name:  "summary loading",
			state: orchestrator.State{Loading: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.state.Session = domain.Session{Username: "alice", Wallet: wallet}
			view := Dashboard(tt.state, time.UTC)
			assert.Nil(t, view.Summary)
			assert.Nil(t, view.Transactions)
			assert.Equal(t, tt.state.Error, view.Error)
			assert.Equal(t, "0x742d35Cc66...", view.WalletShort)
		})
	}
}

func TestTransactions_Rows(t *testing.T) {
	table := Transactions([]domain.Transaction{{
		Hash:      "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060",
		From:      wallet,
		To:        "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae",
		Value:     "1000000000000000000",
		TimeStamp: "1700000000",
	}}, time.UTC)

	require.Len(t, table.Rows, 1)
	assert.False(t, table.Empty())
	row := table.Rows[0]
	assert.Equal(t, "1.0000", row.Value)
	assert.Equal(t, "0x5c504ed432...", row.HashShort)
	assert.Equal(t, "0x742d35Cc66...", row.FromShort)
	assert.Equal(t, "2023-11-14 22:13:20", row.Time)
}

func TestDashboard_View(t *testing.T) {
	btc := domain.CoinQuote{
		ID: "bitcoin", Symbol: "btc", Name: "Bitcoin",
		CurrentPrice:   decimal.NewFromInt(64000),
		PriceChange24h: decimal.RequireFromString("1.5"),
		PriceChange7d:  decimal.NewNullDecimal(decimal.RequireFromString("-3")),
	}
	eth := domain.CoinQuote{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: decimal.NewFromInt(3000)}
	history := domain.EmptyHistory()
	history.Prices = []domain.Sample{
		{Time: time.UnixMilli(1700000000000), Value: decimal.NewFromInt(63000)},
		{Time: time.UnixMilli(1700003600000), Value: decimal.NewFromInt(64000)},
	}

	state := orchestrator.State{
		Session:  domain.Session{Username: "alice", Wallet: wallet},
		TopCoins: []domain.CoinQuote{btc, eth},
		Selected: &btc,
		History:  &history,
	}

	view := Dashboard(state, time.UTC)
	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, "bitcoin", view.Selected)
	require.Len(t, view.Coins, 2)
	assert.True(t, view.Coins[0].Selected)
	assert.False(t, view.Coins[1].Selected)
	assert.Equal(t, "BTC", view.Coins[0].Symbol)
	assert.Equal(t, "+1.50%", view.Coins[0].Change24h)
	assert.Equal(t, "-3.00%", view.Coins[0].Change7d)
	assert.Empty(t, view.Coins[1].Change7d)

	require.NotNil(t, view.Chart)
	assert.Equal(t, "#F7931A", view.Chart.Color)
	assert.Equal(t, []ChartPoint{{T: 1700000000000, V: 63000}, {T: 1700003600000, V: 64000}}, view.Chart.Points)
	require.NotNil(t, view.Overlay)
	assert.Equal(t, "$64,000.00", view.Overlay.Last)
	assert.Empty(t, view.Overlay.EMA)

	assert.Nil(t, view.Summary)
	assert.Nil(t, view.Transactions)
}

func TestDashboard_NoChartWhileHistoryPending(t *testing.T) {
	btc := domain.CoinQuote{ID: "bitcoin", Symbol: "btc"}
	view := Dashboard(orchestrator.State{TopCoins: []domain.CoinQuote{btc}, Selected: &btc, LoadingCoin: true}, time.UTC)
	assert.Nil(t, view.Chart)
	assert.True(t, view.LoadingCoin)

	empty := PriceChart("bitcoin", "Bitcoin", nil)
	assert.Equal(t, NoChartDataMessage, empty.EmptyMessage)
}
