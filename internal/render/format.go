// Package render turns domain values and dashboard state into display strings and
// view models shared by the web and terminal front ends.
package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/params"
	"github.com/shopspring/decimal"
)

const (
	// TimestampLayout is used for transaction times.
	TimestampLayout = "2006-01-02 15:04:05"
	// Placeholder replaces values that cannot be displayed.
	Placeholder = "-"

	addressPrefix = 12
)

var weiPerEther = decimal.NewFromInt(params.Ether)

// FormatValue converts a smallest-unit amount to ether with four decimal places.
func FormatValue(value string) string {
	wei, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return Placeholder
	}
	return wei.Div(weiPerEther).StringFixed(4)
}

// FormatEther formats an amount already expressed in ether.
func FormatEther(amount decimal.Decimal) string {
	return amount.StringFixed(4)
}

// TruncateAddress keeps the first 12 characters of a hash or address.
func TruncateAddress(s string) string {
	if s == "" {
		return Placeholder
	}
	if len(s) <= addressPrefix {
		return s
	}
	return s[:addressPrefix] + "..."
}

// FormatTimestamp renders a unix timestamp in seconds in loc (local time when nil).
func FormatTimestamp(ts string, loc *time.Location) string {
	sec, err := strconv.ParseInt(strings.TrimSpace(ts), 10, 64)
	if err != nil {
		return Placeholder
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(sec, 0).In(loc).Format(TimestampLayout)
}

// FormatPrice renders a USD price with thousands separators and two decimals.
func FormatPrice(price decimal.Decimal) string {
	f, _ := price.Round(2).Float64()
	if f < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -f)
	}
	return "$" + humanize.FormatFloat("#,###.##", f)
}

// FormatPercent renders a percentage change with an explicit plus sign for gains.
func FormatPercent(change decimal.Decimal) string {
	s := change.StringFixed(2) + "%"
	if change.Round(2).IsPositive() {
		return "+" + s
	}
	return s
}
