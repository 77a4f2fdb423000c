package pricing

import (
	"iter"
	"slices"

	"github.com/shopspring/decimal"
)

// ItemCollection is an ordered set of items. Removing an item vacates its
// slot without renumbering the others.
//
// Total, TotalAfterTax, TotalAfterDiscount, TaxAmount and DiscountAmount
// reset the discounts and tax visibility of every member after computing, so
// each of them reads the collection from a clean state. A collection is
// evaluated once per checkout pass: read Total once, or accept that the
// first read has already spent the amount discounts.
type ItemCollection struct {
	slots    []*ItemPrice
	position int
}

// NewItemCollection returns a collection holding items in order.
func NewItemCollection(items ...*ItemPrice) *ItemCollection {
	c := &ItemCollection{}
	for _, item := range items {
		c.Append(item)
	}
	return c
}

// Append adds item to the end of the collection.
func (c *ItemCollection) Append(item *ItemPrice) *ItemCollection {
	if item != nil {
		c.slots = append(c.slots, item)
	}
	return c
}

// Remove vacates every slot holding item.
func (c *ItemCollection) Remove(item *ItemPrice) *ItemCollection {
	for i, existing := range c.slots {
		if existing != nil && existing == item {
			c.slots[i] = nil
		}
	}
	return c
}

// Count returns the number of occupied slots.
func (c *ItemCollection) Count() int {
	n := 0
	for _, item := range c.slots {
		if item != nil {
			n++
		}
	}
	return n
}

// All yields the occupied slots in ascending order. It does not move the cursor.
func (c *ItemCollection) All() iter.Seq2[int, *ItemPrice] {
	return func(yield func(int, *ItemPrice) bool) {
		for i, item := range c.slots {
			if item == nil {
				continue
			}
			if !yield(i, item) {
				return
			}
		}
	}
}

// Items returns the members in slot order.
func (c *ItemCollection) Items() []*ItemPrice {
	items := make([]*ItemPrice, 0, len(c.slots))
	for _, item := range c.All() {
		items = append(items, item)
	}
	return items
}

// Current returns the item under the cursor, or nil.
func (c *ItemCollection) Current() *ItemPrice {
	if !c.Valid() {
		return nil
	}
	return c.slots[c.position]
}

// Key returns the cursor position.
func (c *ItemCollection) Key() int { return c.position }

// Next moves the cursor to the next occupied slot, or one step forward when
// there is none.
func (c *ItemCollection) Next() {
	for i := c.position + 1; i < len(c.slots); i++ {
		if c.slots[i] != nil {
			c.position = i
			return
		}
	}
	c.position++
}

// Rewind moves the cursor to the first occupied slot, or 0 when there is none.
func (c *ItemCollection) Rewind() {
	c.position = 0
	for i, item := range c.slots {
		if item != nil {
			c.position = i
			return
		}
	}
}

// Valid reports whether the cursor points at an occupied slot.
func (c *ItemCollection) Valid() bool {
	return c.position >= 0 && c.position < len(c.slots) && c.slots[c.position] != nil
}

// Subtotal sums the members' subtotals. It does not reset anything.
func (c *ItemCollection) Subtotal() decimal.Decimal {
	return c.sum((*ItemPrice).Subtotal)
}

// Total sums the members' totals, then resets them.
func (c *ItemCollection) Total() decimal.Decimal {
	defer c.reset()
	return c.sum((*ItemPrice).Total)
}

// TotalAfterTax sums the members' totals after tax, then resets them.
func (c *ItemCollection) TotalAfterTax() decimal.Decimal {
	defer c.reset()
	return c.sum((*ItemPrice).TotalAfterTax)
}

// TotalAfterDiscount sums the members' discounted totals, then resets them.
func (c *ItemCollection) TotalAfterDiscount() decimal.Decimal {
	defer c.reset()
	return c.sum((*ItemPrice).TotalAfterDiscount)
}

// TaxAmount sums the members' visible taxes, then resets them.
func (c *ItemCollection) TaxAmount() decimal.Decimal {
	defer c.reset()
	return c.sum((*ItemPrice).TaxAmount)
}

// TaxAmountOfType sums the members' taxes of type t, then resets them.
func (c *ItemCollection) TaxAmountOfType(t TaxType) decimal.Decimal {
	defer c.reset()
	return c.sum(func(item *ItemPrice) decimal.Decimal { return item.TaxAmountOfType(t) })
}

// TaxAmountFor sums the amount of tax across the members, then resets them.
func (c *ItemCollection) TaxAmountFor(tax *TaxModifier) decimal.Decimal {
	defer c.reset()
	return c.sum(func(item *ItemPrice) decimal.Decimal { return item.TaxAmountFor(tax) })
}

// DiscountAmount sums the members' discounts, then resets them.
func (c *ItemCollection) DiscountAmount() decimal.Decimal {
	defer c.reset()
	return c.sum((*ItemPrice).DiscountAmount)
}

// DiscountAmountFor sums what d removes across the members, then resets them.
func (c *ItemCollection) DiscountAmountFor(d *DiscountModifier) decimal.Decimal {
	defer c.reset()
	return c.sum(func(item *ItemPrice) decimal.Decimal { return item.DiscountAmountFor(d) })
}

// Taxes returns every distinct tax attached to any member.
func (c *ItemCollection) Taxes() []*TaxModifier {
	var taxes []*TaxModifier
	for _, item := range c.All() {
		for _, tax := range item.Taxes() {
			if !slices.Contains(taxes, tax) {
				taxes = append(taxes, tax)
			}
		}
	}
	return taxes
}

// Discounts returns every distinct discount attached to any member.
func (c *ItemCollection) Discounts() []*DiscountModifier {
	var discounts []*DiscountModifier
	for _, item := range c.All() {
		for _, d := range item.Discounts() {
			if !slices.Contains(discounts, d) {
				discounts = append(discounts, d)
			}
		}
	}
	return discounts
}

// ExcludeTax hides taxes of type t on every member.
func (c *ItemCollection) ExcludeTax(t TaxType) *ItemCollection {
	for _, item := range c.All() {
		item.ExcludeTax(t)
	}
	return c
}

// ResetTaxVisibility makes every tax type visible on every member.
func (c *ItemCollection) ResetTaxVisibility() *ItemCollection {
	for _, item := range c.All() {
		item.ResetTaxVisibility()
	}
	return c
}

// ResetDiscounts restores the discounts of every member.
func (c *ItemCollection) ResetDiscounts() *ItemCollection {
	for _, item := range c.All() {
		item.ResetDiscounts()
	}
	return c
}

// Merge combines the items of other with the items of c that carry the same
// non-empty key. Every matching pair is merged, so an item that matches
// several counterparts is merged once per counterpart. cmp may return nil to
// skip a pair.
func (c *ItemCollection) Merge(other *ItemCollection, cmp ItemComparator) (*ItemCollection, error) {
	merged := NewItemCollection()
	if other == nil || cmp == nil {
		return merged, nil
	}
	for _, to := range other.All() {
		for _, from := range c.All() {
			if from.Key() == "" || to.Key() == "" || from.Key() != to.Key() {
				continue
			}
			item, err := cmp.Merge(from, to)
			if err != nil {
				return nil, err
			}
			merged.Append(item)
		}
	}
	return merged, nil
}

func (c *ItemCollection) sum(value func(*ItemPrice) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.All() {
		total = total.Add(value(item))
	}
	return total
}

func (c *ItemCollection) reset() {
	for _, item := range c.All() {
		item.ResetDiscounts()
		item.ResetTaxVisibility()
	}
}
