package render

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"1000000000000000000", "1.0000"},
		{"0", "0.0000"},
		{"1500000000000000000", "1.5000"},
		{"123456789000000000000", "123.4568"},
		{"100000000000000", "0.0001"},
		{"not-a-number", Placeholder},
		{"", Placeholder},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.value))
		})
	}
}

func TestTruncateAddress(t *testing.T) {
	assert.Equal(t, "0x742d35Cc66...", TruncateAddress("0x742d35Cc6634C0532925a3b844Bc454e4438f44e"))
	assert.Equal(t, "0xabc", TruncateAddress("0xabc"))
	assert.Equal(t, Placeholder, TruncateAddress(""))
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "2023-11-14 22:13:20", FormatTimestamp("1700000000", time.UTC))
	assert.Equal(t, Placeholder, FormatTimestamp("yesterday", time.UTC))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$64,000.00", FormatPrice(decimal.NewFromInt(64000)))
	assert.Equal(t, "$0.25", FormatPrice(decimal.RequireFromString("0.2499")))
	assert.Equal(t, "$1,234,567.89", FormatPrice(decimal.RequireFromString("1234567.891")))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+2.50%", FormatPercent(decimal.RequireFromString("2.5")))
	assert.Equal(t, "-1.25%", FormatPercent(decimal.RequireFromString("-1.25")))
	assert.Equal(t, "0.00%", FormatPercent(decimal.Zero))
}

func TestCoinColor(t *testing.T) {
	assert.Equal(t, "#F7931A", CoinColor("bitcoin"))
	assert.Equal(t, FallbackColor, CoinColor("some-new-token"))
}
