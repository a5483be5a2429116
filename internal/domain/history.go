package domain

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidHistory is returned when a market chart response is malformed.
var ErrInvalidHistory = errors.New("invalid price history")

// Sample one point of a time series.
type Sample struct {
	Time  time.Time
	Value decimal.Decimal
}

// UnmarshalJSON decodes a [milliseconds, value] pair.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var pair []json.Number
	if err := json.Unmarshal(data, &pair); err != nil {
		return errors.Wrap(ErrInvalidHistory, err.Error())
	}
	if len(pair) != 2 {
		return errors.Wrapf(ErrInvalidHistory, "expected [timestamp, value], got %d elements", len(pair))
	}

	ms, err := decimal.NewFromString(pair[0].String())
	if err != nil {
		return errors.Wrapf(ErrInvalidHistory, "timestamp %q", pair[0])
	}
	value, err := decimal.NewFromString(pair[1].String())
	if err != nil {
		return errors.Wrapf(ErrInvalidHistory, "value %q", pair[1])
	}

	s.Time = time.UnixMilli(ms.IntPart()).UTC()
	s.Value = value
	return nil
}

// MarshalJSON encodes the sample back into the upstream pair shape.
func (s Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{s.Time.UnixMilli(), s.Value})
}

// PriceHistory price, market cap and volume series for one asset.
type PriceHistory struct {
	Prices       []Sample `json:"prices"`
	MarketCaps   []Sample `json:"market_caps"`
	TotalVolumes []Sample `json:"total_volumes"`
}

// EmptyHistory returns a history with all three series empty.
func EmptyHistory() PriceHistory {
	return PriceHistory{
		Prices:       []Sample{},
		MarketCaps:   []Sample{},
		TotalVolumes: []Sample{},
	}
}

// Validate requires all three series to be present.
func (h PriceHistory) Validate() error {
	if h.Prices == nil || h.MarketCaps == nil || h.TotalVolumes == nil {
		return errors.Wrap(ErrInvalidHistory, "missing series")
	}
	return nil
}

// Empty reports whether there is nothing to chart.
func (h PriceHistory) Empty() bool {
	return len(h.Prices) == 0
}

// Closes returns the price values in order.
func (h PriceHistory) Closes() []decimal.Decimal {
	closes := make([]decimal.Decimal, len(h.Prices))
	for i, s := range h.Prices {
		closes[i] = s.Value
	}
	return closes
}
