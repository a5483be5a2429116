package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/cryptoguard/walletwatch/internal/domain"
)

const (
	// DefaultCoinGeckoURL public API root.
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"
	coinGeckoKeyHeader  = "x-cg-demo-api-key"
	// a dashboard load issues several calls at once
	coinGeckoBurst = 6
)

// CoinGeckoClient reads market snapshots and price history from CoinGecko.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewCoinGeckoClient creates a client. A non-empty apiKey is sent on every request;
// requestsPerMinute <= 0 disables client-side rate limiting.
func NewCoinGeckoClient(baseURL, apiKey string, requestsPerMinute int, httpClient *http.Client) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	withKey := *httpClient
	withKey.Transport = &apiKeyTransport{base: base, header: coinGeckoKeyHeader, key: apiKey}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), coinGeckoBurst)
	}

	return &CoinGeckoClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &withKey,
		limiter:    limiter,
	}
}

// Markets returns the top count assets by market cap, with 24h and 7d change.
func (c *CoinGeckoClient) Markets(ctx context.Context, count int) ([]domain.CoinQuote, error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("order", "market_cap_desc")
	q.Set("per_page", fmt.Sprint(count))
	q.Set("page", "1")
	q.Set("sparkline", "false")
	q.Set("price_change_percentage", "24h,7d")

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limit wait")
	}

	var quotes []domain.CoinQuote
	if _, err := doJSON(ctx, c.httpClient, http.MethodGet, c.baseURL+"/coins/markets?"+q.Encode(), nil, &quotes); err != nil {
		return nil, errors.Wrap(err, "coins/markets")
	}
	if quotes == nil {
		return nil, &DecodeError{Err: errors.New("coins/markets returned null")}
	}
	if err := domain.ValidateQuotes(quotes); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return quotes, nil
}

// MarketChart returns days of price, market cap and volume samples for coinID.
func (c *CoinGeckoClient) MarketChart(ctx context.Context, coinID string, days int) (domain.PriceHistory, error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("days", fmt.Sprint(days))
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?%s", c.baseURL, url.PathEscape(coinID), q.Encode())

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.PriceHistory{}, errors.Wrap(err, "rate limit wait")
	}

	var history domain.PriceHistory
	if _, err := doJSON(ctx, c.httpClient, http.MethodGet, endpoint, nil, &history); err != nil {
		return domain.PriceHistory{}, errors.Wrapf(err, "market_chart for %s", coinID)
	}
	if err := history.Validate(); err != nil {
		return domain.PriceHistory{}, &DecodeError{Err: err}
	}
	return history, nil
}
