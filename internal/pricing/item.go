package pricing

import (
	"slices"

	"github.com/shopspring/decimal"
)

type discountMode int

const (
	discountsLive discountMode = iota
	discountsRecord
	discountsReplay
)

// ItemPrice is a priced line with discounts and independent groups of
// compounding taxes. Discounts and taxes are held by pointer so several
// items can share one coupon budget or one tax.
type ItemPrice struct {
	UnitPrice

	discounts            []*DiscountModifier
	taxGroups            [][]*TaxModifier
	hiddenTaxTypes       map[TaxType]bool
	discountsAffectTaxes bool
	includeCalculated    bool
	meta                 Meta

	// cursor is the discounted subtotal left by DiscountAmountFor calls.
	cursor    decimal.Decimal
	cursorSet bool

	// mode and cache keep Total from consuming a discount twice.
	mode  discountMode
	cache map[*DiscountModifier]decimal.Decimal
}

// NewItemPrice returns an item with no discounts or taxes.
func NewItemPrice(price, qty decimal.Decimal, key string) *ItemPrice {
	return &ItemPrice{
		UnitPrice:            UnitPrice{price: price, qty: qty, key: key},
		hiddenTaxTypes:       map[TaxType]bool{},
		discountsAffectTaxes: true,
	}
}

// Meta returns the caller-owned metadata attached to the item.
func (p *ItemPrice) Meta() *Meta { return &p.meta }

// SetDiscount attaches d unless it is nil or already attached.
func (p *ItemPrice) SetDiscount(d *DiscountModifier) {
	if d == nil || slices.Contains(p.discounts, d) {
		return
	}
	p.discounts = append(p.discounts, d)
}

// Discounts returns the attached discounts in the order they apply.
func (p *ItemPrice) Discounts() []*DiscountModifier {
	return slices.Clone(p.discounts)
}

// SetTax attaches taxes as one compounding group. Taxes already attached to
// the item are left out of the new group. Nothing is attached on error.
func (p *ItemPrice) SetTax(taxes ...*TaxModifier) error {
	group := make([]*TaxModifier, 0, len(taxes))
	for i, tax := range taxes {
		if tax == nil {
			return ErrInvalidModifierArgument
		}
		if slices.Contains(taxes[:i], tax) {
			return ErrDuplicateModifierInCall
		}
		if p.hasTax(tax) {
			continue
		}
		group = append(group, tax)
	}
	p.taxGroups = append(p.taxGroups, group)
	return nil
}

// Taxes returns every attached tax once, group by group.
func (p *ItemPrice) Taxes() []*TaxModifier {
	var taxes []*TaxModifier
	for _, group := range p.taxGroups {
		taxes = append(taxes, group...)
	}
	return taxes
}

// TaxGroups returns a copy of the compounding groups.
func (p *ItemPrice) TaxGroups() [][]*TaxModifier {
	groups := make([][]*TaxModifier, 0, len(p.taxGroups))
	for _, group := range p.taxGroups {
		groups = append(groups, slices.Clone(group))
	}
	return groups
}

func (p *ItemPrice) hasTax(tax *TaxModifier) bool {
	for _, group := range p.taxGroups {
		if slices.Contains(group, tax) {
			return true
		}
	}
	return false
}

// SetDiscountsAffectTaxes selects whether taxes are computed on the
// discounted subtotal (the default) or on the undiscounted one.
func (p *ItemPrice) SetDiscountsAffectTaxes(affect bool) {
	p.discountsAffectTaxes = affect
}

// IncludeCalculatedTaxes selects whether inclusive-calculated taxes count
// towards TaxAmount. They are always reported by TaxAmountOfType.
func (p *ItemPrice) IncludeCalculatedTaxes(include bool) {
	p.includeCalculated = include
}

// ExcludeTax hides taxes of type t from aggregate amounts. Unknown types are ignored.
func (p *ItemPrice) ExcludeTax(t TaxType) *ItemPrice {
	if !t.Valid() {
		return p
	}
	if p.hiddenTaxTypes == nil {
		p.hiddenTaxTypes = map[TaxType]bool{}
	}
	p.hiddenTaxTypes[t] = true
	return p
}

// ResetTaxVisibility makes every tax type visible again.
func (p *ItemPrice) ResetTaxVisibility() *ItemPrice {
	clear(p.hiddenTaxTypes)
	return p
}

func (p *ItemPrice) taxVisible(t TaxType) bool {
	return !p.hiddenTaxTypes[t]
}

// Subtotal returns qty * price less the inclusive-calculated tax embedded in
// it. The amount backed out is the one TaxAmountFor reports for those taxes
// when no discount applies.
func (p *ItemPrice) Subtotal() decimal.Decimal {
	gross := p.UnitPrice.Total()
	return gross.Sub(p.embeddedTax(gross))
}

// embeddedTax walks every group on gross and sums the inclusive-calculated
// amounts, compounded the same way the tax queries compound them.
func (p *ItemPrice) embeddedTax(gross decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, group := range p.taxGroups {
		compound := decimal.Zero
		for _, t := range group {
			amount := t.On(gross.Add(compound))
			compound = compoundWith(t, compound, amount)
			if t.Type() == TaxInclusiveCalculated {
				total = total.Add(amount)
			}
		}
	}
	return total
}

func (p *ItemPrice) hasEmbeddedTax() bool {
	for _, group := range p.taxGroups {
		for _, t := range group {
			if t.Type() == TaxInclusiveCalculated {
				return true
			}
		}
	}
	return false
}

// TotalAfterDiscount returns the subtotal less all discounts.
func (p *ItemPrice) TotalAfterDiscount() decimal.Decimal {
	return p.Subtotal().Sub(p.DiscountAmount())
}

// TotalAfterTax returns the subtotal plus all visible taxes.
func (p *ItemPrice) TotalAfterTax() decimal.Decimal {
	return p.Subtotal().Add(p.TaxAmount())
}

// Total returns the discounted subtotal plus tax. Each discount is consumed
// once even though the tax phase needs the discounted subtotal again.
func (p *ItemPrice) Total() decimal.Decimal {
	p.mode = discountsRecord
	p.cache = map[*DiscountModifier]decimal.Decimal{}
	defer func() {
		p.mode = discountsLive
		p.cache = nil
	}()

	afterDiscount := p.TotalAfterDiscount()
	p.mode = discountsReplay
	return afterDiscount.Add(p.TaxAmount())
}

// ResetDiscounts rewinds the discount cursor and restores every attached
// discount's balance. Shared discounts are restored for every item using them.
func (p *ItemPrice) ResetDiscounts() {
	p.cursorSet = false
	p.cursor = decimal.Zero
	for _, d := range p.discounts {
		d.Reset()
	}
}
