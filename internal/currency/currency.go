// Package currency converts canonical INR prices into the display currency
// of the viewer's country.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BaseCurrency is the currency every stored price is denominated in.
const BaseCurrency = "INR"

// Currency is a display currency and the symbol prefixed to its amounts.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
}

var byCountry = map[string]Currency{
	"IN": {Code: "INR", Symbol: "₹"},
	"AE": {Code: "AED", Symbol: "AED "},
	"US": {Code: "USD", Symbol: "$"},
}

// ForCountry returns the currency used in country. Unmapped countries get
// the currency of fallbackCountry.
func ForCountry(country, fallbackCountry string) Currency {
	if c, ok := byCountry[strings.ToUpper(country)]; ok {
		return c
	}
	return byCountry[strings.ToUpper(fallbackCountry)]
}

// Quote converts prices for one viewer. A quote that could not be
// converted formats the raw stored number behind the fallback symbol.
type Quote struct {
	Country   string          `json:"country"`
	Currency  string          `json:"currency"`
	Symbol    string          `json:"symbol"`
	Rate      decimal.Decimal `json:"rate"`
	Converted bool            `json:"converted"`
}

// Format renders price, given in the base currency, for display.
func (q Quote) Format(price decimal.Decimal) string {
	if !q.Converted {
		return q.Symbol + price.String()
	}
	return q.Symbol + price.Mul(q.Rate).StringFixed(2)
}

// Rates maps currency codes to the amount of that currency one unit of
// BaseCurrency buys.
type Rates map[string]decimal.Decimal
