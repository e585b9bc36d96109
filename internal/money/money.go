package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format renders cents as dollars with thousands separators: "$1,490",
// "$12.50". Whole amounts drop the cents, as the landing page shows them.
func Format(cents int) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	if cents%100 == 0 {
		return printer.Sprintf("%s$%d", sign, cents/100)
	}
	return printer.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
