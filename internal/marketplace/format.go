package marketplace

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var pricePrinter = message.NewPrinter(language.MustParse("es-CO"))

// FormatPrice renders a peso amount the way buyers read it, e.g. "$1.500.000".
func FormatPrice(price float64) string {
	return pricePrinter.Sprintf("$%v", number.Decimal(price, number.MaxFractionDigits(2)))
}
