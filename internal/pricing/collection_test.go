package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestItemCollectionSharedDiscountTotals(t *testing.T) {
	first := mustDiscount(t, "5", DiscountAmount)
	second := mustDiscount(t, "10", DiscountAmount)

	item1 := newItem("10", "2")
	item1.SetDiscount(first)
	item1.SetDiscount(second)
	item2 := newItem("100", "1")

	c := NewItemCollection().Append(item1).Append(item2)
	requireDecimal(t, "0", c.TaxAmount())
	requireDecimal(t, "15", c.DiscountAmount())
	requireDecimal(t, "105", c.TotalAfterDiscount())
	requireDecimal(t, "120", c.TotalAfterTax())
	requireDecimal(t, "105", c.Total())

	c.Remove(item1).Remove(item2)
	require.Zero(t, c.Count())

	coupon := mustDiscount(t, "50", DiscountAmount)
	tax := mustTax(t, "20", TaxExclusive)

	item3 := newItem("10", "1")
	item3.SetDiscount(mustDiscount(t, "10", DiscountPercent))
	item3.SetDiscount(coupon)
	require.NoError(t, item3.SetTax(mustTax(t, "10", TaxExclusive)))
	require.NoError(t, item3.SetTax(tax))

	item4 := newItem("1000", "2")
	item4.SetDiscount(coupon)
	require.NoError(t, item4.SetTax(tax))

	c.Append(item3).Append(item4)
	requireDecimal(t, "391.8", c.TaxAmount())
	requireDecimal(t, "51", c.DiscountAmount())
	requireDecimal(t, "1959", c.TotalAfterDiscount())
	requireDecimal(t, "2401.8", c.TotalAfterTax())
	requireDecimal(t, "2350.8", c.Total())
	requireDecimal(t, "50", coupon.Remaining())
}

func TestItemCollectionTotalReadTwice(t *testing.T) {
	coupon := mustDiscount(t, "30", DiscountAmount)
	item := newItem("100", "1")
	item.SetDiscount(coupon)
	c := NewItemCollection(item)

	requireDecimal(t, "70", c.Total())
	requireDecimal(t, "70", c.Total())
	requireDecimal(t, "100", c.Subtotal())
}

func TestItemCollectionAggregatesResetVisibility(t *testing.T) {
	item := newItem("100", "1")
	require.NoError(t, item.SetTax(mustTax(t, "10", TaxExclusive)))
	c := NewItemCollection(item)

	c.ExcludeTax(TaxExclusive)
	requireDecimal(t, "0", c.TaxAmount())
	requireDecimal(t, "10", c.TaxAmount())

	c.ExcludeTax(TaxExclusive)
	requireDecimal(t, "0", c.TaxAmountOfType(TaxExclusive))
	c.ExcludeTax(TaxExclusive).ResetTaxVisibility()
	requireDecimal(t, "110", c.Total())
}

func TestItemCollectionAggregatesForModifier(t *testing.T) {
	tax := mustTax(t, "10", TaxExclusive)
	coupon := mustDiscount(t, "15", DiscountAmount)
	a := newItem("10", "1")
	b := newItem("20", "1")
	for _, item := range []*ItemPrice{a, b} {
		item.SetDiscount(coupon)
		require.NoError(t, item.SetTax(tax))
	}
	c := NewItemCollection(a, b)

	requireDecimal(t, "15", c.DiscountAmountFor(coupon))
	requireDecimal(t, "15", coupon.Remaining())
	// 10% of (0 + 15)
	requireDecimal(t, "1.5", c.TaxAmountFor(tax))
	requireDecimal(t, "1.5", c.TaxAmountOfType(TaxExclusive))
}

func TestItemCollectionTaxesAndDiscountsAreDistinct(t *testing.T) {
	shared := mustTax(t, "10", TaxExclusive)
	own := mustTax(t, "5", TaxInclusive)
	coupon := mustDiscount(t, "10", DiscountAmount)

	a := newItem("10", "1")
	require.NoError(t, a.SetTax(shared))
	a.SetDiscount(coupon)
	b := newItem("10", "1")
	require.NoError(t, b.SetTax(shared, own))
	b.SetDiscount(coupon)

	c := NewItemCollection(a, b)
	require.Equal(t, []*TaxModifier{shared, own}, c.Taxes())
	require.Equal(t, []*DiscountModifier{coupon}, c.Discounts())
}

func TestItemCollectionIteration(t *testing.T) {
	c := NewItemCollection()
	require.Nil(t, c.Current())
	require.Zero(t, c.Key())
	require.False(t, c.Valid())

	c.Next()
	c.Next()
	c.Next()
	require.Equal(t, 3, c.Key())
	c.Rewind()
	require.Zero(t, c.Key())

	first := newItem("10", "1")
	second := newItem("30", "2")
	third := newItem("5", "1")
	c.Append(first).Append(second).Append(third)
	require.Same(t, first, c.Current())

	c.Remove(second)
	require.Equal(t, 2, c.Count())
	c.Next()
	require.Equal(t, 2, c.Key())
	require.Same(t, third, c.Current())
	c.Next()
	require.False(t, c.Valid())
	require.Nil(t, c.Current())

	c.Remove(first)
	c.Rewind()
	require.Equal(t, 2, c.Key())
	require.Same(t, third, c.Current())

	var slots []int
	for slot, item := range c.All() {
		slots = append(slots, slot)
		require.Same(t, third, item)
	}
	require.Equal(t, []int{2}, slots)
	require.Equal(t, []*ItemPrice{third}, c.Items())
}

func TestItemCollectionRemoveAllMatches(t *testing.T) {
	item := newItem("10", "1")
	other := newItem("10", "1")
	c := NewItemCollection(item, other, item)
	require.Equal(t, 3, c.Count())

	c.Remove(item)
	require.Equal(t, 1, c.Count())
	c.Rewind()
	require.Equal(t, 1, c.Key())
	require.Same(t, other, c.Current())

	c.Remove(other)
	c.Rewind()
	require.Zero(t, c.Key())
	require.False(t, c.Valid())
}

type returnTo struct{}

func (returnTo) Merge(_, to *ItemPrice) (*ItemPrice, error) { return to, nil }

type skipAll struct{}

func (skipAll) Merge(_, _ *ItemPrice) (*ItemPrice, error) { return nil, nil }

type failing struct{ err error }

func (f failing) Merge(_, _ *ItemPrice) (*ItemPrice, error) { return nil, f.err }

func TestItemCollectionMerge(t *testing.T) {
	item1 := NewItemPrice(dec("10"), dec("1"), "id")
	item2 := NewItemPrice(dec("20"), dec("2"), "test")
	item3 := NewItemPrice(dec("15"), dec("1"), "id")

	c1 := NewItemCollection(item1, item2)
	c2 := NewItemCollection(item2, item3)
	c3 := NewItemCollection(item3)
	c4 := NewItemCollection(item2)

	cases := []struct {
		name  string
		from  *ItemCollection
		to    *ItemCollection
		count int
	}{
		{"both keys match", c1, c2, 2},
		{"one id", c1, c3, 1},
		{"id from second", c2, c3, 1},
		{"reversed", c3, c1, 1},
		{"no match", c3, c4, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			merged, err := tc.from.Merge(tc.to, returnTo{})
			require.NoError(t, err)
			require.Equal(t, tc.count, merged.Count())
		})
	}
}

func TestItemCollectionMergeCrossProduct(t *testing.T) {
	a := NewItemPrice(dec("1"), dec("1"), "k")
	b := NewItemPrice(dec("2"), dec("1"), "k")
	unkeyed := NewItemPrice(dec("3"), dec("1"), "")

	merged, err := NewItemCollection(a, b, unkeyed).Merge(NewItemCollection(a, b, unkeyed), returnTo{})
	require.NoError(t, err)
	require.Equal(t, 4, merged.Count())

	merged, err = NewItemCollection(a).Merge(NewItemCollection(b), skipAll{})
	require.NoError(t, err)
	require.Zero(t, merged.Count())

	boom := errors.New("boom")
	_, err = NewItemCollection(a).Merge(NewItemCollection(b), failing{err: boom})
	require.ErrorIs(t, err, boom)
}
