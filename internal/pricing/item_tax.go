package pricing

import "github.com/shopspring/decimal"

// TaxAmount returns the sum of every visible tax. Inclusive-calculated taxes
// are left out unless IncludeCalculatedTaxes(true) was set.
func (p *ItemPrice) TaxAmount() decimal.Decimal {
	return p.sumTaxes(func(tax *TaxModifier) bool {
		if tax.Type() == TaxInclusiveCalculated {
			return p.includeCalculated
		}
		return true
	})
}

// TaxAmountOfType returns the sum of the visible taxes of type t. Taxes of
// other types still compound within their groups.
func (p *ItemPrice) TaxAmountOfType(t TaxType) decimal.Decimal {
	return p.sumTaxes(func(tax *TaxModifier) bool { return tax.Type() == t })
}

// TaxAmountFor returns the amount of one tax, compounded on the taxes before
// it in its group. It is zero when the tax is not attached or its type has
// been excluded.
func (p *ItemPrice) TaxAmountFor(tax *TaxModifier) decimal.Decimal {
	if tax == nil || !p.hasTax(tax) {
		return decimal.Zero
	}
	taxable := p.taxablePrice()
	for _, group := range p.taxGroups {
		compound := decimal.Zero
		for _, t := range group {
			amount := t.On(taxable.Add(compound))
			if t == tax {
				if !p.taxVisible(t.Type()) {
					return decimal.Zero
				}
				return reported(t, amount)
			}
			compound = compoundWith(t, compound, amount)
		}
	}
	return decimal.Zero
}

func (p *ItemPrice) sumTaxes(counts func(*TaxModifier) bool) decimal.Decimal {
	taxable := p.taxablePrice()
	total := decimal.Zero
	for _, group := range p.taxGroups {
		compound := decimal.Zero
		for _, t := range group {
			amount := t.On(taxable.Add(compound))
			compound = compoundWith(t, compound, amount)
			if p.taxVisible(t.Type()) && counts(t) {
				total = total.Add(reported(t, amount))
			}
		}
	}
	return total
}

// taxablePrice is the gross price taxes are evaluated on: qty * price with
// any embedded tax still in it. When discounts affect taxes the gross is
// scaled by the share of the subtotal left after discounts.
func (p *ItemPrice) taxablePrice() decimal.Decimal {
	gross := p.UnitPrice.Total()
	if !p.discountsAffectTaxes {
		return gross
	}
	afterDiscount := p.TotalAfterDiscount()
	if !p.hasEmbeddedTax() {
		return afterDiscount
	}
	subtotal := p.Subtotal()
	if subtotal.IsZero() {
		return afterDiscount
	}
	return afterDiscount.Mul(gross).Div(subtotal)
}

func compoundWith(t *TaxModifier, compound, amount decimal.Decimal) decimal.Decimal {
	if t.reduces() {
		return compound.Sub(amount)
	}
	return compound.Add(amount)
}

// reported is the signed contribution of a tax: subtracting taxes reduce the
// total, inclusive-calculated taxes are reported as the tax they back out.
func reported(t *TaxModifier, amount decimal.Decimal) decimal.Decimal {
	if t.Subtract() {
		return amount.Neg()
	}
	return amount
}
