package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FormatDuration renders a fulfillment duration. Under 24 hours the form is
// "HH hours MM minutes" with both fields zero padded; at 24 hours or more the
// whole days are pulled out front as "D days HH hours MM minutes" with D
// unpadded.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	minutes := int64(d / time.Minute)
	days := minutes / (24 * 60)
	minutes -= days * 24 * 60
	hours := minutes / 60
	minutes -= hours * 60

	if days > 0 {
		return fmt.Sprintf("%d days %02d hours %02d minutes", days, hours, minutes)
	}
	return fmt.Sprintf("%02d hours %02d minutes", hours, minutes)
}

// FormatOrderCount pluralizes an order tally: "1 order", otherwise "N orders".
func FormatOrderCount(n int) string {
	if n == 1 {
		return "1 order"
	}
	return fmt.Sprintf("%d orders", n)
}

// FormatItemCount pluralizes an item tally the same way.
func FormatItemCount(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

// FormatCurrency renders a money amount as a dollar string, "$X.YY".
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
