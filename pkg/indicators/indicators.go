// Package indicators computes chart overlays (EMA, RSI) for a coin's price history.
package indicators

import (
	"fmt"
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/shopspring/decimal"

	"github.com/cryptoguard/walletwatch/internal/domain"
)

const (
	DefaultEMAPeriod = 20
	DefaultRSIPeriod = 14
)

// Overlay holds the latest indicator values of a price series.
type Overlay struct {
	Last   decimal.Decimal
	EMA    decimal.Decimal
	RSI    decimal.Decimal
	HasEMA bool
	HasRSI bool
	// Change is the percentage move from the first to the last sample.
	Change decimal.Decimal
}

// CalculateEMA calculates the Exponential Moving Average for the given period.
func CalculateEMA(closes []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if period <= 0 {
		return nil, fmt.Errorf("invalid EMA period %d", period)
	}
	if len(closes) < period {
		return nil, fmt.Errorf("not enough data points: need %d, got %d", period, len(closes))
	}

	ema := trend.NewEmaWithPeriod[float64](period)
	outputChan := ema.Compute(helper.SliceToChan(decimalsToFloat64(closes)))

	return float64ToDecimals(helper.ChanToSlice(outputChan))
}

// CalculateRSI calculates the Relative Strength Index for the given period.
func CalculateRSI(closes []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if period <= 0 {
		return nil, fmt.Errorf("invalid RSI period %d", period)
	}
	if len(closes) < period+1 {
		return nil, fmt.Errorf("not enough data points for RSI: need %d, got %d", period+1, len(closes))
	}

	rsi := momentum.NewRsiWithPeriod[float64](period)
	outputChan := rsi.Compute(helper.SliceToChan(decimalsToFloat64(closes)))

	return float64ToDecimals(helper.ChanToSlice(outputChan))
}

// ForHistory computes the overlay of a price history with the default periods.
// Indicators that need more samples than the history has are left unset; an
// empty history yields the zero Overlay.
func ForHistory(h domain.PriceHistory) Overlay {
	closes := h.Closes()
	if len(closes) == 0 {
		return Overlay{}
	}

	o := Overlay{Last: closes[len(closes)-1]}
	if first := closes[0]; !first.IsZero() {
		o.Change = o.Last.Sub(first).Div(first).Mul(decimal.NewFromInt(100)).Round(2)
	}

	if ema, err := CalculateEMA(closes, DefaultEMAPeriod); err == nil && len(ema) > 0 {
		o.EMA = ema[len(ema)-1].Round(2)
		o.HasEMA = true
	}
	if rsi, err := CalculateRSI(closes, DefaultRSIPeriod); err == nil && len(rsi) > 0 {
		o.RSI = rsi[len(rsi)-1].Round(2)
		o.HasRSI = true
	}

	return o
}

func decimalsToFloat64(decimals []decimal.Decimal) []float64 {
	result := make([]float64, len(decimals))
	for i, d := range decimals {
		result[i], _ = d.Float64()
	}
	return result
}

// float64ToDecimals fails on NaN or Inf, which flat series produce for RSI.
func float64ToDecimals(floats []float64) ([]decimal.Decimal, error) {
	result := make([]decimal.Decimal, len(floats))
	for i, f := range floats {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("non-finite indicator value at %d", i)
		}
		result[i] = decimal.NewFromFloat(f)
	}
	return result, nil
}
