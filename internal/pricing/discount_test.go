package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDiscountModifierRejectsNegativeAmount(t *testing.T) {
	_, err := NewDiscountModifier(dec("-0.01"), DiscountAmount)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewDiscountModifier(dec("5"), DiscountType("exclusive"))
	require.ErrorIs(t, err, ErrInvalidModifierType)

	d, err := NewDiscountModifier(dec("0"), DiscountPercent)
	require.NoError(t, err)
	requireDecimal(t, "0", d.On(dec("10")))
}

func TestDiscountPercentAboveHundredTakesFullPrice(t *testing.T) {
	for _, amount := range []string{"100.01", "150", "1000"} {
		d := mustDiscount(t, amount, DiscountPercent)
		for _, price := range []string{"10", "-10", "0", "3.33"} {
			requireDecimal(t, price, d.On(dec(price)), amount)
			requireDecimal(t, "0", d.Off(dec(price)), amount)
		}
	}
}

func TestDiscountPercentHasNoState(t *testing.T) {
	d := mustDiscount(t, "25", DiscountPercent)
	requireDecimal(t, "7.5", d.On(dec("30")))
	requireDecimal(t, "22.5", d.Off(dec("30")))
	requireDecimal(t, "22.5", d.Off(dec("30")))
	requireDecimal(t, "-7.5", d.On(dec("-30")))
}

func TestDiscountAmountConsumesBalance(t *testing.T) {
	d := mustDiscount(t, "10", DiscountAmount)

	requireDecimal(t, "6", d.On(dec("6")))
	requireDecimal(t, "0", d.Off(dec("6")))
	requireDecimal(t, "4", d.Remaining())

	requireDecimal(t, "4", d.On(dec("6")))
	requireDecimal(t, "2", d.Off(dec("6")))
	requireDecimal(t, "0", d.Remaining())

	requireDecimal(t, "0", d.On(dec("5")))
	requireDecimal(t, "5", d.Off(dec("5")))
	requireDecimal(t, "0", d.Remaining())

	d.Reset()
	requireDecimal(t, "10", d.Remaining())
	requireDecimal(t, "6", d.On(dec("6")))
}

func TestDiscountAmountFollowsPriceSign(t *testing.T) {
	d := mustDiscount(t, "10", DiscountAmount)
	requireDecimal(t, "-4", d.On(dec("-4")))
	requireDecimal(t, "0", d.Off(dec("-4")))
	requireDecimal(t, "6", d.Remaining())
	requireDecimal(t, "-6", d.On(dec("-20")))
	requireDecimal(t, "-14", d.Off(dec("-20")))
	requireDecimal(t, "0", d.Remaining())
}

func TestDiscountAmountNeverExceedsBudget(t *testing.T) {
	d := mustDiscount(t, "25", DiscountAmount)
	consumed := dec("0")
	for _, price := range []string{"7", "7", "7", "7", "7"} {
		before := dec(price)
		after := d.Off(before)
		consumed = consumed.Add(before.Sub(after))
	}
	requireDecimal(t, "25", consumed)
}
