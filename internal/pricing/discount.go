package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a discount amount is interpreted.
type DiscountType string

const (
	// DiscountPercent removes a percentage of the price.
	DiscountPercent DiscountType = "percent"
	// DiscountAmount removes a fixed amount drawn from a depletable balance.
	DiscountAmount DiscountType = "amount"
)

// Valid reports whether d is a known discount type.
func (d DiscountType) Valid() bool {
	return d == DiscountPercent || d == DiscountAmount
}

// DiscountModifier is a discount attached to one or more items by pointer.
// Amount discounts keep a remaining balance that every item sharing the
// instance draws from until Reset is called.
type DiscountModifier struct {
	amount    decimal.Decimal
	typ       DiscountType
	remaining decimal.Decimal
}

// NewDiscountModifier builds a discount. amount is a percentage for
// DiscountPercent and a fixed budget for DiscountAmount.
func NewDiscountModifier(amount decimal.Decimal, typ DiscountType) (*DiscountModifier, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("discount %s: %w", amount, ErrInvalidAmount)
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("discount type %q: %w", typ, ErrInvalidModifierType)
	}
	return &DiscountModifier{amount: amount, typ: typ, remaining: amount}, nil
}

// Amount returns the configured percentage or budget.
func (d *DiscountModifier) Amount() decimal.Decimal { return d.amount }

// Type returns the discount type.
func (d *DiscountModifier) Type() DiscountType { return d.typ }

// Remaining returns the unspent balance of an amount discount. Percent
// discounts always report their full amount.
func (d *DiscountModifier) Remaining() decimal.Decimal { return d.remaining }

// On returns the discount for price without consuming any balance.
func (d *DiscountModifier) On(price decimal.Decimal) decimal.Decimal {
	if d.typ == DiscountPercent {
		if d.amount.GreaterThan(hundred) {
			return price
		}
		return price.Mul(d.amount).Div(hundred)
	}
	discount := decimal.Min(price.Abs(), d.remaining)
	if price.IsNegative() {
		return discount.Neg()
	}
	return discount
}

// Off returns price after the discount. For amount discounts the applied
// discount is deducted from the remaining balance.
func (d *DiscountModifier) Off(price decimal.Decimal) decimal.Decimal {
	discount := d.On(price)
	if d.typ == DiscountAmount {
		d.remaining = d.remaining.Sub(discount.Abs())
	}
	return price.Sub(discount)
}

// Reset restores the full balance of an amount discount.
func (d *DiscountModifier) Reset() {
	if d.typ == DiscountAmount {
		d.remaining = d.amount
	}
}
