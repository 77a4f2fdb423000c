package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxType controls how a tax relates to the price it is applied to.
type TaxType string

const (
	// TaxExclusive is added on top of the price.
	TaxExclusive TaxType = "exclusive"
	// TaxInclusive is already part of the price.
	TaxInclusive TaxType = "inclusive"
	// TaxInclusiveCalculated is embedded in the price and backed out as price/(100+rate)*rate.
	TaxInclusiveCalculated TaxType = "inclusive_calculated"
)

var hundred = decimal.NewFromInt(100)

// Valid reports whether t is a known tax type.
func (t TaxType) Valid() bool {
	switch t {
	case TaxExclusive, TaxInclusive, TaxInclusiveCalculated:
		return true
	default:
		return false
	}
}

// TaxModifier is a percentage tax. It holds no state, so one instance can be
// shared by many items. Instances are compared by pointer.
type TaxModifier struct {
	amount   decimal.Decimal
	typ      TaxType
	subtract bool
}

// NewTaxModifier builds a tax of the given percentage. When subtract is set the
// tax reduces its compounding group instead of adding to it.
func NewTaxModifier(amount decimal.Decimal, typ TaxType, subtract bool) (*TaxModifier, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("tax %s: %w", amount, ErrInvalidAmount)
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("tax type %q: %w", typ, ErrInvalidModifierType)
	}
	return &TaxModifier{amount: amount, typ: typ, subtract: subtract}, nil
}

// Amount returns the tax percentage.
func (t *TaxModifier) Amount() decimal.Decimal { return t.amount }

// Type returns the tax type.
func (t *TaxModifier) Type() TaxType { return t.typ }

// Subtract reports whether the tax reduces its compounding group.
func (t *TaxModifier) Subtract() bool { return t.subtract }

// On returns the tax amount for price.
func (t *TaxModifier) On(price decimal.Decimal) decimal.Decimal {
	if t.typ == TaxInclusiveCalculated {
		return price.Div(hundred.Add(t.amount)).Mul(t.amount)
	}
	rate := decimal.Max(decimal.Zero, t.amount.Div(hundred))
	return rate.Mul(price)
}

// Off returns price without the tax. Exclusive taxes were never part of the price.
func (t *TaxModifier) Off(price decimal.Decimal) decimal.Decimal {
	if t.typ == TaxExclusive {
		return price
	}
	return price.Sub(t.On(price))
}

// Including returns price with the tax added. Only exclusive taxes change the price.
func (t *TaxModifier) Including(price decimal.Decimal) decimal.Decimal {
	if t.typ != TaxExclusive {
		return price
	}
	return price.Add(t.On(price))
}

// reduces reports whether the tax is taken out of a compounding group.
func (t *TaxModifier) reduces() bool {
	return t.subtract || t.typ == TaxInclusiveCalculated
}
