package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidQuote is returned when a market snapshot lacks required fields.
var ErrInvalidQuote = errors.New("invalid coin quote")

// CoinQuote market snapshot for one asset, as returned by /coins/markets.
type CoinQuote struct {
	// ID stable CoinGecko identifier, e.g. "bitcoin".
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	// CurrentPrice price in USD.
	CurrentPrice   decimal.Decimal `json:"current_price"`
	MarketCap      decimal.Decimal `json:"market_cap"`
	MarketCapRank  int             `json:"market_cap_rank"`
	PriceChange24h decimal.Decimal `json:"price_change_percentage_24h"`
	// PriceChange7d is only present when requested and known upstream.
	PriceChange7d decimal.NullDecimal `json:"price_change_percentage_7d_in_currency"`
}

// Validate checks the identity fields.
func (q CoinQuote) Validate() error {
	if q.ID == "" {
		return errors.Wrap(ErrInvalidQuote, "id is empty")
	}
	if q.Symbol == "" {
		return errors.Wrapf(ErrInvalidQuote, "%s: symbol is empty", q.ID)
	}
	return nil
}

// ValidateQuotes validates every quote of a list.
func ValidateQuotes(quotes []CoinQuote) error {
	for i, q := range quotes {
		if err := q.Validate(); err != nil {
			return errors.Wrapf(err, "quote %d", i)
		}
	}
	return nil
}
