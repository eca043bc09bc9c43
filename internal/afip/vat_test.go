package afip

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBackOutVAT21(t *testing.T) {
	net, vat := BackOutVAT(d("12100"), d("21"))
	assert.True(t, net.Equal(d("10000")), "net = %s", net)
	assert.True(t, vat.Equal(d("2100")), "vat = %s", vat)
}

func TestBackOutVAT105(t *testing.T) {
	net, vat := BackOutVAT(d("2210"), d("10.5"))
	assert.True(t, net.Equal(d("2000")), "net = %s", net)
	assert.True(t, vat.Equal(d("210")), "vat = %s", vat)
}

func TestBackOutVATRoundsEachFigure(t *testing.T) {
	// 100 / 1.21 = 82.6446..., VAT 17.3553...: both round independently and
	// the pair may miss the total by a cent.
	net, vat := BackOutVAT(d("100"), d("21"))
	assert.True(t, net.Equal(d("82.64")), "net = %s", net)
	assert.True(t, vat.Equal(d("17.36")), "vat = %s", vat)
	assert.True(t, net.Add(vat).Sub(d("100")).Abs().LessThanOrEqual(d("0.01")))
}

func TestVATRateID(t *testing.T) {
	assert.Equal(t, 5, VATRateID(d("21")))
	assert.Equal(t, 4, VATRateID(d("10.5")))
	assert.Equal(t, 6, VATRateID(d("27")))
	assert.Equal(t, 3, VATRateID(d("0")))
	assert.Equal(t, 5, VATRateID(d("13")), "unknown rates fall back to 21%%")
}
