package pricing

import "github.com/shopspring/decimal"

// UnitPrice is a unit amount multiplied by a quantity.
type UnitPrice struct {
	price       decimal.Decimal
	qty         decimal.Decimal
	key         string
	description string
}

// NewUnitPrice returns a unit price. An empty key means the price takes no part in merges.
func NewUnitPrice(price, qty decimal.Decimal, key string) *UnitPrice {
	return &UnitPrice{price: price, qty: qty, key: key}
}

// Price returns the unit amount.
func (u *UnitPrice) Price() decimal.Decimal { return u.price }

// SetPrice replaces the unit amount.
func (u *UnitPrice) SetPrice(price decimal.Decimal) { u.price = price }

// Qty returns the quantity.
func (u *UnitPrice) Qty() decimal.Decimal { return u.qty }

// SetQty replaces the quantity.
func (u *UnitPrice) SetQty(qty decimal.Decimal) { u.qty = qty }

// Key returns the merge key.
func (u *UnitPrice) Key() string { return u.key }

// SetKey replaces the merge key.
func (u *UnitPrice) SetKey(key string) { u.key = key }

// Description returns the free-form description.
func (u *UnitPrice) Description() string { return u.description }

// SetDescription replaces the free-form description.
func (u *UnitPrice) SetDescription(description string) { u.description = description }

// Total returns qty * price.
func (u *UnitPrice) Total() decimal.Decimal {
	return u.qty.Mul(u.price)
}
