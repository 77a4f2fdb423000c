package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func difference(fromTotal, toAmount decimal.Decimal, _, _ *Meta) decimal.Decimal {
	return toAmount.Sub(fromTotal)
}

func names(fromMeta, toMeta *Meta) string {
	from, _ := fromMeta.Value("name")
	to, _ := toMeta.Value("name")
	return from + " to " + to
}

func TestServiceComparatorMerge(t *testing.T) {
	from := NewItemPrice(dec("10"), dec("1"), "svc")
	require.NoError(t, from.SetTax(mustTax(t, "10", TaxExclusive)))
	from.Meta().Attach(NewMetaItem("package", map[string]string{"name": "Basic"}))

	coupon := mustDiscount(t, "5", DiscountAmount)
	t1 := mustTax(t, "10", TaxExclusive)
	t2 := mustTax(t, "5", TaxExclusive)
	t3 := mustTax(t, "2", TaxInclusive)
	to := NewItemPrice(dec("20"), dec("2"), "svc")
	to.SetDiscount(coupon)
	require.NoError(t, to.SetTax(t1, t2))
	require.NoError(t, to.SetTax(t3))
	to.Meta().Attach(NewMetaItem("package", map[string]string{"name": "Pro"}))

	merged, err := NewServiceComparator(difference, names).Merge(from, to)
	require.NoError(t, err)
	requireDecimal(t, "29", merged.Price())
	requireDecimal(t, "1", merged.Qty())
	require.Equal(t, "svc", merged.Key())
	require.Equal(t, "Basic to Pro", merged.Description())
	require.Equal(t, []*DiscountModifier{coupon}, merged.Discounts())

	groups := merged.TaxGroups()
	require.Len(t, groups, 2)
	require.Same(t, t1, groups[0][0])
	require.Same(t, t2, groups[0][1])
	require.Same(t, t3, groups[1][0])
	require.Empty(t, merged.Meta().Items())
}

func TestServiceComparatorDowngrade(t *testing.T) {
	from := NewItemPrice(dec("50"), dec("1"), "svc")
	to := NewItemPrice(dec("35.15"), dec("1"), "svc")

	cmp := NewServiceComparator(nil, nil)
	cmp.SetPriceFunc(difference)
	cmp.SetDescriptionFunc(func(_, _ *Meta) string { return "downgrade" })

	merged, err := cmp.Merge(from, to)
	require.NoError(t, err)
	requireDecimal(t, "-14.85", merged.Price())
	require.Equal(t, "downgrade", merged.Description())

	upgrade, err := NewItemCollection(to).Merge(NewItemCollection(from), cmp)
	require.NoError(t, err)
	require.Equal(t, 1, upgrade.Count())
	upgrade.Rewind()
	requireDecimal(t, "14.85", upgrade.Current().Price())
}

func TestServiceComparatorWithoutPriceFuncUsesReplacementAmount(t *testing.T) {
	from := NewItemPrice(dec("5"), dec("1"), "svc")
	to := NewItemPrice(dec("15"), dec("2"), "svc")

	merged, err := NewServiceComparator(nil, nil).Merge(from, to)
	require.NoError(t, err)
	requireDecimal(t, "30", merged.Price())
	requireDecimal(t, "30", merged.Total())
}

func TestServiceComparatorNilSkipsPairs(t *testing.T) {
	var cmp *ServiceComparator
	item, err := cmp.Merge(newItem("10", "1"), newItem("20", "1"))
	require.NoError(t, err)
	require.Nil(t, item)

	current := NewItemCollection(NewItemPrice(dec("10"), dec("1"), "svc"))
	next := NewItemCollection(NewItemPrice(dec("20"), dec("1"), "svc"))
	merged, err := current.Merge(next, cmp)
	require.NoError(t, err)
	require.Zero(t, merged.Count())
}
