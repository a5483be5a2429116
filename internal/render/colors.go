package render

// FallbackColor is used for coins without a brand color.
const FallbackColor = "#7b61ff"

var coinColors = map[string]string{
	"bitcoin":     "#F7931A",
	"ethereum":    "#627EEA",
	"binancecoin": "#F3BA2F",
	"ripple":      "#0085C0",
	"cardano":     "#0033AD",
	"solana":      "#00FFA3",
	"polkadot":    "#E6007A",
	"dogecoin":    "#BA9F33",
	"litecoin":    "#345D9D",
	"avalanche":   "#E84142",
}

// CoinColor returns the chart color of a coin.
func CoinColor(coinID string) string {
	if c, ok := coinColors[coinID]; ok {
		return c
	}
	return FallbackColor
}
