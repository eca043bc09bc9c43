package afip

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// BackOutVAT splits a tax-inclusive total into net and VAT amounts for the
// given rate (percent, e.g. 21 or 10.5). Net and VAT are each rounded to two
// decimals independently of one another, matching the cent-level figures the
// authority validates. Net + VAT may therefore differ from the total by at
// most one cent.
func BackOutVAT(total, ratePercent decimal.Decimal) (net, vat decimal.Decimal) {
	divisor := one.Add(ratePercent.Div(hundred))
	net = total.Div(divisor).Round(2)
	vat = total.Sub(total.Div(divisor)).Round(2)
	return net, vat
}

// VATRateID maps a VAT percentage to the authority's AlicIva identifier.
// Unknown rates fall back to the 21% id.
func VATRateID(ratePercent decimal.Decimal) int {
	switch {
	case ratePercent.Equal(decimal.NewFromFloat(10.5)):
		return 4
	case ratePercent.Equal(decimal.NewFromInt(27)):
		return 6
	case ratePercent.IsZero():
		return 3
	default:
		return 5 // 21%
	}
}
