package pricing

import (
	"slices"

	"github.com/shopspring/decimal"
)

// DiscountAmount applies every discount in attach order, each against the
// subtotal left by the ones before it. The result never exceeds the subtotal
// in magnitude.
//
// Each call spends the balance of amount discounts, so TotalAfterDiscount,
// TaxAmount and a second DiscountAmount read see less unless ResetDiscounts
// runs in between. Total keeps its own reads consistent.
func (p *ItemPrice) DiscountAmount() decimal.Decimal {
	subtotal := p.Subtotal()
	running := subtotal
	total := decimal.Zero
	for _, d := range p.discounts {
		amount := p.applyDiscount(d, running)
		running = running.Sub(amount)
		total = total.Add(amount)
	}
	if subtotal.IsNegative() {
		return decimal.Max(subtotal, total)
	}
	return decimal.Min(subtotal, total)
}

// DiscountAmountFor applies d to the item's discounted subtotal cursor and
// advances it. Successive calls see what earlier calls left until
// ResetDiscounts. Returns zero when d is not attached.
func (p *ItemPrice) DiscountAmountFor(d *DiscountModifier) decimal.Decimal {
	if d == nil || !slices.Contains(p.discounts, d) {
		return decimal.Zero
	}
	if !p.cursorSet {
		p.cursor = p.Subtotal()
		p.cursorSet = true
	}
	amount := p.applyDiscount(d, p.cursor)
	p.cursor = p.cursor.Sub(amount)
	return amount
}

func (p *ItemPrice) applyDiscount(d *DiscountModifier, price decimal.Decimal) decimal.Decimal {
	if p.mode == discountsReplay {
		if amount, ok := p.cache[d]; ok {
			return amount
		}
	}
	amount := d.On(price)
	d.Off(price)
	if p.mode == discountsRecord {
		p.cache[d] = amount
	}
	return amount
}
