package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "expected %s, got %s %v", want, got.String(), msgAndArgs)
}

func mustTax(t *testing.T, amount string, typ TaxType) *TaxModifier {
	t.Helper()
	tax, err := NewTaxModifier(dec(amount), typ, false)
	require.NoError(t, err)
	return tax
}

func mustDiscount(t *testing.T, amount string, typ DiscountType) *DiscountModifier {
	t.Helper()
	d, err := NewDiscountModifier(dec(amount), typ)
	require.NoError(t, err)
	return d
}

func newItem(price, qty string) *ItemPrice {
	return NewItemPrice(dec(price), dec(qty), "")
}
