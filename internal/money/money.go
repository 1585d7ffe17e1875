// Package money formats Tanzanian Shilling amounts for user-facing
// messages. Amounts are whole shillings; fractions are rounded away.
package money

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format renders an amount with a thousand-separated value and the TSh
// symbol, e.g. 37950 -> "TSh 37,950".
func Format(amount float64) string {
	return printer.Sprintf("TSh %d", int64(math.Round(amount)))
}
