package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/cryptoguard/walletwatch/internal/domain"
	"github.com/cryptoguard/walletwatch/internal/orchestrator"
	"github.com/cryptoguard/walletwatch/pkg/indicators"
)

// Empty-state messages.
const (
	NoTransactionsMessage = "No transactions found for this wallet."
	NoLogsMessage         = "No logs found."
	NoChartDataMessage    = "No data available"
)

// TransactionRow is one table row.
type TransactionRow struct {
	Hash      string `json:"hash"`
	HashShort string `json:"hash_short"`
	From      string `json:"from"`
	FromShort string `json:"from_short"`
	To        string `json:"to"`
	ToShort   string `json:"to_short"`
	Value     string `json:"value"`
	Time      string `json:"time"`
}

// TransactionTable is a transaction list ready for display. When Rows is empty
// EmptyMessage holds the text to show instead.
type TransactionTable struct {
	Rows         []TransactionRow `json:"rows"`
	EmptyMessage string           `json:"empty_message,omitempty"`
}

// Empty reports whether the empty state should be shown.
func (t TransactionTable) Empty() bool {
	return len(t.Rows) == 0
}

// Transactions builds the wallet transaction table.
func Transactions(list []domain.Transaction, loc *time.Location) TransactionTable {
	return table(list, loc, NoTransactionsMessage)
}

// Logs builds the stored-logs table.
func Logs(list []domain.Transaction, loc *time.Location) TransactionTable {
	return table(list, loc, NoLogsMessage)
}

func table(list []domain.Transaction, loc *time.Location, emptyMessage string) TransactionTable {
	if len(list) == 0 {
		return TransactionTable{Rows: []TransactionRow{}, EmptyMessage: emptyMessage}
	}
	rows := make([]TransactionRow, len(list))
	for i, tx := range list {
		rows[i] = TransactionRow{
			Hash:      tx.Hash,
			HashShort: TruncateAddress(tx.Hash),
			From:      tx.From,
			FromShort: TruncateAddress(tx.From),
			To:        tx.To,
			ToShort:   TruncateAddress(tx.To),
			Value:     FormatValue(tx.Value),
			Time:      FormatTimestamp(tx.TimeStamp, loc),
		}
	}
	return TransactionTable{Rows: rows}
}

// SummaryCards are the three headline figures of the dashboard. Wallet is the
// truncated address; WalletFull keeps the whole one for tooltips.
type SummaryCards struct {
	Wallet           string `json:"wallet"`
	WalletFull       string `json:"wallet_full"`
	TransactionCount string `json:"transaction_count"`
	TotalEthSent     string `json:"total_eth_sent"`
}

// Summary formats the wallet summary cards.
func Summary(s domain.DashboardSummary) SummaryCards {
	return SummaryCards{
		Wallet:           TruncateAddress(s.Wallet),
		WalletFull:       s.Wallet,
		TransactionCount: strconv.Itoa(s.TransactionCount),
		TotalEthSent:     FormatEther(s.TotalEthSent),
	}
}

// CoinRow is one entry of the top-coins list.
type CoinRow struct {
	ID        string `json:"id"`
	Rank      int    `json:"rank"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Price     string `json:"price"`
	Change24h string `json:"change_24h"`
	Change7d  string `json:"change_7d,omitempty"`
	Positive  bool   `json:"positive"`
	Color     string `json:"color"`
	Selected  bool   `json:"selected"`
}

// Coins formats the top-coins list, marking the selected coin.
func Coins(coins []domain.CoinQuote, selectedID string) []CoinRow {
	rows := make([]CoinRow, len(coins))
	for i, c := range coins {
		rows[i] = CoinRow{
			ID:        c.ID,
			Rank:      c.MarketCapRank,
			Symbol:    strings.ToUpper(c.Symbol),
			Name:      c.Name,
			Image:     c.Image,
			Price:     FormatPrice(c.CurrentPrice),
			Change24h: FormatPercent(c.PriceChange24h),
			Positive:  c.PriceChange24h.IsPositive(),
			Color:     CoinColor(c.ID),
			Selected:  c.ID == selectedID,
		}
		if c.PriceChange7d.Valid {
			rows[i].Change7d = FormatPercent(c.PriceChange7d.Decimal)
		}
	}
	return rows
}

// ChartPoint is one price sample; T is unix milliseconds.
type ChartPoint struct {
	T int64   `json:"t"`
	V float64 `json:"v"`
}

// Chart is a single price series ready for plotting.
type Chart struct {
	CoinID       string       `json:"coin_id"`
	Label        string       `json:"label"`
	Color        string       `json:"color"`
	Points       []ChartPoint `json:"points"`
	EmptyMessage string       `json:"empty_message,omitempty"`
}

// PriceChart converts samples into a chart series.
func PriceChart(coinID, label string, samples []domain.Sample) Chart {
	points := make([]ChartPoint, len(samples))
	for i, s := range samples {
		v, _ := s.Value.Float64()
		points[i] = ChartPoint{T: s.Time.UnixMilli(), V: v}
	}
	c := Chart{CoinID: coinID, Label: label, Color: CoinColor(coinID), Points: points}
	if len(points) == 0 {
		c.EmptyMessage = NoChartDataMessage
	}
	return c
}

// Comparison converts comparison series into charts labelled by symbol.
func Comparison(series []orchestrator.ComparisonSeries) []Chart {
	charts := make([]Chart, len(series))
	for i, s := range series {
		charts[i] = PriceChart(s.CoinID, strings.ToUpper(s.Symbol), s.Points)
	}
	return charts
}

// OverlayView holds formatted indicator values for the selected coin.
type OverlayView struct {
	Last   string `json:"last"`
	Change string `json:"change"`
	EMA    string `json:"ema,omitempty"`
	RSI    string `json:"rsi,omitempty"`
}

// Overlay formats the indicators of a price history; nil when it has no samples.
func Overlay(h domain.PriceHistory) *OverlayView {
	if len(h.Prices) == 0 {
		return nil
	}
	o := indicators.ForHistory(h)
	v := &OverlayView{Last: FormatPrice(o.Last), Change: FormatPercent(o.Change)}
	if o.HasEMA {
		v.EMA = FormatPrice(o.EMA)
	}
	if o.HasRSI {
		v.RSI = o.RSI.StringFixed(2)
	}
	return v
}

// DashboardView is the whole dashboard page as served to front ends.
type DashboardView struct {
	Username    string        `json:"username"`
	Wallet      string        `json:"wallet"`
	WalletShort string        `json:"wallet_short"`
	Loading     bool          `json:"loading"`
	LoadingCoin bool          `json:"loading_coin"`
	Error       string        `json:"error,omitempty"`
	Summary     *SummaryCards `json:"summary,omitempty"`
	// Transactions is nil until the wallet summary has loaded.
	Transactions *TransactionTable `json:"transactions,omitempty"`
	Coins        []CoinRow         `json:"coins"`
	Selected     string            `json:"selected,omitempty"`
	Chart        *Chart            `json:"chart,omitempty"`
	Overlay      *OverlayView      `json:"overlay,omitempty"`
}

// Dashboard builds the page view model from a state snapshot. The chart is only
// present once the selected coin's history has arrived, the transaction table once
// the summary has.
func Dashboard(s orchestrator.State, loc *time.Location) DashboardView {
	v := DashboardView{
		Username:    s.Session.Username,
		Wallet:      s.Session.Wallet,
		WalletShort: TruncateAddress(s.Session.Wallet),
		Loading:     s.Loading,
		LoadingCoin: s.LoadingCoin,
		Error:       s.Error,
	}

	if s.Summary != nil {
		cards := Summary(*s.Summary)
		v.Summary = &cards
		txs := Transactions(s.Summary.Transactions, loc)
		v.Transactions = &txs
	}

	if s.Selected != nil {
		v.Selected = s.Selected.ID
	}
	v.Coins = Coins(s.TopCoins, v.Selected)

	if s.Selected != nil && s.History != nil {
		chart := PriceChart(s.Selected.ID, s.Selected.Name, s.History.Prices)
		v.Chart = &chart
		v.Overlay = Overlay(*s.History)
	}

	return v
}
