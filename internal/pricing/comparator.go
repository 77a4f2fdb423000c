package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ItemComparator combines two items into one. Returning a nil item skips the pair.
type ItemComparator interface {
	Merge(from, to *ItemPrice) (*ItemPrice, error)
}

// PriceFunc computes the unit price of a merged item from the total of the
// item being replaced and the undiscounted, untaxed amount of its replacement.
type PriceFunc func(fromTotal, toAmount decimal.Decimal, fromMeta, toMeta *Meta) decimal.Decimal

// DescriptionFunc computes the description of a merged item.
type DescriptionFunc func(fromMeta, toMeta *Meta) string

// ServiceComparator merges a service being replaced (from) into its
// replacement (to), as in an upgrade or downgrade. The result is a single
// unit priced by PriceFunc that keeps to's key, discounts and tax groups.
type ServiceComparator struct {
	price       PriceFunc
	description DescriptionFunc
}

// NewServiceComparator returns a comparator using the given callbacks.
func NewServiceComparator(price PriceFunc, description DescriptionFunc) *ServiceComparator {
	return &ServiceComparator{price: price, description: description}
}

// SetPriceFunc replaces the price callback.
func (s *ServiceComparator) SetPriceFunc(fn PriceFunc) { s.price = fn }

// SetDescriptionFunc replaces the description callback.
func (s *ServiceComparator) SetDescriptionFunc(fn DescriptionFunc) { s.description = fn }

// Merge implements ItemComparator. Reading from's total consumes its discounts.
// A nil comparator skips every pair.
func (s *ServiceComparator) Merge(from, to *ItemPrice) (*ItemPrice, error) {
	if s == nil || from == nil || to == nil {
		return nil, nil
	}
	amount := to.Qty().Mul(to.Price())
	price := amount
	if s.price != nil {
		price = s.price(from.Total(), amount, from.Meta(), to.Meta())
	}

	item := NewItemPrice(price, decimal.NewFromInt(1), to.Key())
	if s.description != nil {
		item.SetDescription(s.description(from.Meta(), to.Meta()))
	}
	for _, d := range to.Discounts() {
		item.SetDiscount(d)
	}
	for _, group := range to.TaxGroups() {
		if err := item.SetTax(group...); err != nil {
			return nil, fmt.Errorf("copy tax group: %w", err)
		}
	}
	return item, nil
}
