package texting

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

func Numberify(value int64) string {
	return humanize.Comma(value)
}

func Sizify(bytes int64) string {
	if bytes <= 0 {
		return "unknown"
	}
	return humanize.IBytes(uint64(bytes))
}

func Percentify(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

func Currencify(value decimal.Decimal) string {
	if value.IsZero() {
		return "free"
	}
	return fmt.Sprintf("$%s", humanize.CommafWithDigits(value.InexactFloat64(), 2))
}

// Limitify renders a quota where zero or less means unlimited.
func Limitify(limit int) string {
	if limit <= 0 {
		return "unlimited"
	}
	return humanize.Comma(int64(limit))
}
