package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceHistory_UnmarshalJSON(t *testing.T) {
	payload := `{
		"prices": [[1711929600000, 69702.31], [1711933200000, 70001.5]],
		"market_caps": [[1711929600000, 1.37e12]],
		"total_volumes": []
	}`

	var h PriceHistory
	require.NoError(t, json.Unmarshal([]byte(payload), &h))
	require.NoError(t, h.Validate())

	require.Len(t, h.Prices, 2)
	assert.Equal(t, time.UnixMilli(1711929600000).UTC(), h.Prices[0].Time)
	assert.True(t, h.Prices[0].Value.Equal(decimal.RequireFromString("69702.31")))
	assert.True(t, h.MarketCaps[0].Value.Equal(decimal.RequireFromString("1370000000000")))
	assert.Empty(t, h.TotalVolumes)
	assert.False(t, h.Empty())
	assert.Len(t, h.Closes(), 2)
}

func TestPriceHistory_RejectsMalformedPairs(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "single element", payload: `{"prices": [[1711929600000]], "market_caps": [], "total_volumes": []}`},
		{name: "three elements", payload: `{"prices": [[1, 2, 3]], "market_caps": [], "total_volumes": []}`},
		{name: "string value", payload: `{"prices": [[1, "abc"]], "market_caps": [], "total_volumes": []}`},
		{name: "null value", payload: `{"prices": [[1, null]], "market_caps": [], "total_volumes": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h PriceHistory
			err := json.Unmarshal([]byte(tt.payload), &h)
			assert.ErrorIs(t, err, ErrInvalidHistory)
		})
	}
}

func TestPriceHistory_ValidateMissingSeries(t *testing.T) {
	var h PriceHistory
	require.NoError(t, json.Unmarshal([]byte(`{"prices": []}`), &h))
	assert.ErrorIs(t, h.Validate(), ErrInvalidHistory)

	empty := EmptyHistory()
	assert.NoError(t, empty.Validate())
	assert.True(t, empty.Empty())
}
