package pricing

import "github.com/shopspring/decimal"

// Line holds the computed amounts of one item.
type Line struct {
	Slot               int
	Key                string
	Description        string
	Qty                decimal.Decimal
	UnitPrice          decimal.Decimal
	Subtotal           decimal.Decimal
	Discount           decimal.Decimal
	Tax                decimal.Decimal
	TotalAfterDiscount decimal.Decimal
	TotalAfterTax      decimal.Decimal
	Total              decimal.Decimal
}

// Summary aggregates computed pricing components of a collection.
type Summary struct {
	Lines              []Line
	Subtotal           decimal.Decimal
	Discount           decimal.Decimal
	Tax                decimal.Decimal
	TotalAfterDiscount decimal.Decimal
	TotalAfterTax      decimal.Decimal
	Total              decimal.Decimal
}

// Summarize evaluates c once and returns per-line and collection amounts.
// Each amount is computed in its own pass over the members in slot order,
// with discounts restored between passes, so the collection figures equal
// what the matching ItemCollection aggregate would return. Tax visibility
// set on the members applies to every pass and is reset at the end.
func Summarize(c *ItemCollection) Summary {
	c.ResetDiscounts()
	var lines []Line
	for slot, item := range c.All() {
		lines = append(lines, Line{
			Slot:        slot,
			Key:         item.Key(),
			Description: item.Description(),
			Qty:         item.Qty(),
			UnitPrice:   item.Price(),
			Subtotal:    item.Subtotal(),
		})
	}

	pass := func(set func(*Line, *ItemPrice)) {
		i := 0
		for _, item := range c.All() {
			set(&lines[i], item)
			i++
		}
		c.ResetDiscounts()
	}
	pass(func(l *Line, item *ItemPrice) { l.Discount = item.DiscountAmount() })
	pass(func(l *Line, item *ItemPrice) { l.Tax = item.TaxAmount() })
	pass(func(l *Line, item *ItemPrice) { l.TotalAfterDiscount = item.TotalAfterDiscount() })
	pass(func(l *Line, item *ItemPrice) { l.TotalAfterTax = item.TotalAfterTax() })
	pass(func(l *Line, item *ItemPrice) { l.Total = item.Total() })
	c.ResetTaxVisibility()

	summary := Summary{
		Lines:              lines,
		Subtotal:           decimal.Zero,
		Discount:           decimal.Zero,
		Tax:                decimal.Zero,
		TotalAfterDiscount: decimal.Zero,
		TotalAfterTax:      decimal.Zero,
		Total:              decimal.Zero,
	}
	for _, l := range lines {
		summary.Subtotal = summary.Subtotal.Add(l.Subtotal)
		summary.Discount = summary.Discount.Add(l.Discount)
		summary.Tax = summary.Tax.Add(l.Tax)
		summary.TotalAfterDiscount = summary.TotalAfterDiscount.Add(l.TotalAfterDiscount)
		summary.TotalAfterTax = summary.TotalAfterTax.Add(l.TotalAfterTax)
		summary.Total = summary.Total.Add(l.Total)
	}
	return summary
}
