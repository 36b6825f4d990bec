// Package currency formats money amounts for display in the user's chosen
// currency. Unknown codes fall back to USD instead of failing.
package currency

import (
	"strings"

	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"pocketledger/internal/core"
)

// Default is used when no currency has been chosen or the code is invalid.
const Default = "USD"

// Option is a selectable currency.
type Option struct {
	Code string
	Name string
}

// Supported lists the currencies offered in the selector.
var Supported = []Option{
	{"USD", "United States Dollar"},
	{"EUR", "Euro"},
	{"JPY", "Japanese Yen"},
	{"GBP", "British Pound Sterling"},
	{"INR", "Indian Rupee"},
	{"ZAR", "South African Rand"},
}

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"JPY": "¥",
	"GBP": "£",
	"INR": "₹",
	"ZAR": "R",
}

type Formatter struct {
	unit    xcurrency.Unit
	scale   int
	printer *message.Printer
}

// New returns a formatter for code. The second result is false when code
// was not a valid ISO 4217 code and USD is used instead.
func New(code string) (*Formatter, bool) {
	ok := true
	unit, err := xcurrency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		unit, ok = xcurrency.USD, false
	}
	scale, _ := xcurrency.Standard.Rounding(unit)
	return &Formatter{
		unit:    unit,
		scale:   scale,
		printer: message.NewPrinter(language.English),
	}, ok
}

// Normalize returns the canonical upper-case code, or Default if invalid.
func Normalize(code string) string {
	f, _ := New(code)
	return f.Code()
}

func (f *Formatter) Code() string {
	return f.unit.String()
}

// Symbol returns the display symbol, e.g. "$" or "R" for ZAR.
func (f *Formatter) Symbol() string {
	if s, ok := symbols[f.Code()]; ok {
		return s
	}
	return f.Code() + " "
}

// Format renders m with symbol, grouping and the currency's minor units,
// e.g. "-$1,234.50" or "¥1,235".
func (f *Formatter) Format(m core.Money) string {
	d := m.Decimal()
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	v := d.Round(int32(f.scale)).InexactFloat64()
	return sign + f.Symbol() + f.printer.Sprint(number.Decimal(v, number.Scale(f.scale)))
}

// FormatSigned prefixes "+" for income and "-" for expense.
func (f *Formatter) FormatSigned(t core.TransactionType, m core.Money) string {
	return t.Sign() + f.Format(m)
}
