package orchestrator

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/cryptoguard/walletwatch/internal/domain"
)

const (
	syntheticPoints = 7
	// synthetic prices vary within ±3% of the current price
	syntheticLow    = 0.97
	syntheticSpread = 0.06
)

// ComparisonSeries price series of one coin in the comparison view.
type ComparisonSeries struct {
	CoinID string
	Symbol string
	Points []domain.Sample
	// Synthetic marks generated demo data.
	Synthetic bool
}

// Comparison returns price series for the first coins of the current top list. By
// default each series is the coin's fetched history; a coin whose fetch failed has
// an empty series. With WithSyntheticComparison the series are generated instead.
func (d *Dashboard) Comparison(ctx context.Context) []ComparisonSeries {
	coins := d.Snapshot().TopCoins
	if len(coins) > d.opts.comparisonSize {
		coins = coins[:d.opts.comparisonSize]
	}
	if len(coins) == 0 {
		return []ComparisonSeries{}
	}

	if d.opts.synthetic != nil {
		return SyntheticComparison(coins, d.opts.now(), d.opts.synthetic)
	}

	series := make([]ComparisonSeries, len(coins))
	g, gctx := errgroup.WithContext(ctx)
	for i, coin := range coins {
		g.Go(func() error {
			history := d.gw.GetCoinHistory(gctx, coin.ID, d.opts.historyDays)
			series[i] = ComparisonSeries{CoinID: coin.ID, Symbol: coin.Symbol, Points: history.Prices}
			return nil
		})
	}
	_ = g.Wait()

	return series
}

// SyntheticComparison generates one point per day for the last seven days around
// each coin's current price. It is demo data, not market history.
func SyntheticComparison(coins []domain.CoinQuote, now time.Time, rnd *rand.Rand) []ComparisonSeries {
	day := now.Truncate(24 * time.Hour)
	series := make([]ComparisonSeries, len(coins))
	for i, coin := range coins {
		points := make([]domain.Sample, 0, syntheticPoints)
		for back := syntheticPoints - 1; back >= 0; back-- {
			variance := decimal.NewFromFloat(syntheticLow + rnd.Float64()*syntheticSpread)
			points = append(points, domain.Sample{
				Time:  day.AddDate(0, 0, -back),
				Value: coin.CurrentPrice.Mul(variance).Round(2),
			})
		}
		series[i] = ComparisonSeries{CoinID: coin.ID, Symbol: coin.Symbol, Points: points, Synthetic: true}
	}
	return series
}
