package pricing

import (
	"math"

	"github.com/dustin/go-humanize"
)

const DefaultSymbol = "£"

// Formatter renders amounts in the currency's minor unit with thousands
// separators.
type Formatter struct {
	Symbol string
}

func NewFormatter(symbol string) Formatter {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return Formatter{Symbol: symbol}
}

func (f Formatter) Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return f.Symbol + "0.00"
	}
	rounded := math.Round(v*100) / 100
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	return sign + f.Symbol + humanize.FormatFloat("#,###.##", rounded)
}

// FormatPtr renders nil as an empty string.
func (f Formatter) FormatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return f.Format(*v)
}
