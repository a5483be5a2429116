package orchestrator

import (
	"math/rand"
	"time"
)

const (
	defaultTopCoins       = 10
	defaultHistoryDays    = 7
	defaultComparisonSize = 5
)

type options struct {
	topCoins       int
	historyDays    int
	comparisonSize int
	synthetic      *rand.Rand
	now            func() time.Time
}

// Option configures a Dashboard.
type Option func(*options)

// WithTopCoins sets how many coins the market list shows.
func WithTopCoins(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.topCoins = n
		}
	}
}

// WithHistoryDays sets the history window requested per selection.
func WithHistoryDays(days int) Option {
	return func(o *options) {
		if days > 0 {
			o.historyDays = days
		}
	}
}

// WithComparisonSize sets how many coins the comparison view includes.
func WithComparisonSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.comparisonSize = n
		}
	}
}

// WithSyntheticComparison switches the comparison view to generated demo data
// drawn from rnd instead of fetched history.
func WithSyntheticComparison(rnd *rand.Rand) Option {
	return func(o *options) {
		o.synthetic = rnd
	}
}

// WithNow overrides the clock used for synthetic series.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{
		topCoins:       defaultTopCoins,
		historyDays:    defaultHistoryDays,
		comparisonSize: defaultComparisonSize,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
