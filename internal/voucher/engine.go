package voucher

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pricing/internal/pricing"
)

var (
	// ErrNotEligible is returned when no item in the quote falls inside the voucher scope.
	ErrNotEligible = errors.New("voucher not eligible")
	// ErrUsageLimitReached indicates the voucher has exhausted the global usage quota.
	ErrUsageLimitReached = errors.New("voucher usage limit reached")
	// ErrVoucherInactive is returned when attempting to use a voucher before its active window.
	ErrVoucherInactive = errors.New("voucher not active")
	// ErrVoucherExpired is returned when the voucher has already expired.
	ErrVoucherExpired = errors.New("voucher expired")
	// ErrMinimumSpendUnmet indicates the quote subtotal did not meet the voucher requirement.
	ErrMinimumSpendUnmet = errors.New("voucher minimum spend not met")
	// ErrDuplicateCode is returned for a second voucher with a code already applied.
	ErrDuplicateCode = errors.New("voucher code given more than once")
	// ErrUnknownKind is returned for a voucher kind other than percent or amount.
	ErrUnknownKind = errors.New("unknown voucher kind")
)

// Rule captures the runtime constraints of a voucher.
type Rule struct {
	Code       string
	Kind       string
	Value      decimal.Decimal
	MinSpend   decimal.Decimal
	UsageLimit *int32
	UsedCount  int32
	ValidFrom  *time.Time
	ValidTo    *time.Time
	ProductIDs []uuid.UUID
}

// Item is a priced line the voucher may be attached to.
type Item struct {
	ProductID *uuid.UUID
	Price     *pricing.ItemPrice
}

// Rejection records why a voucher was not applied.
type Rejection struct {
	Code   string
	Reason error
}

// Outcome lists the vouchers attached to a quote and the ones turned down.
type Outcome struct {
	Applied  []string
	Rejected []Rejection
}

// Validate ensures the rule can be applied at the provided instant and quote subtotal.
func (r Rule) Validate(now time.Time, cartTotal decimal.Decimal) error {
	if cartTotal.LessThan(r.MinSpend) {
		return ErrMinimumSpendUnmet
	}
	if r.ValidFrom != nil && now.Before(*r.ValidFrom) {
		return ErrVoucherInactive
	}
	if r.ValidTo != nil && now.After(*r.ValidTo) {
		return ErrVoucherExpired
	}
	if r.UsageLimit != nil && *r.UsageLimit >= 0 && r.UsedCount >= *r.UsageLimit {
		return ErrUsageLimitReached
	}
	return nil
}

// Modifier builds the discount a voucher stands for. One modifier is shared by
// every item the voucher covers, so an amount voucher is a single budget.
func (r Rule) Modifier() (*pricing.DiscountModifier, error) {
	var typ pricing.DiscountType
	switch strings.ToLower(strings.TrimSpace(r.Kind)) {
	case "percent":
		typ = pricing.DiscountPercent
	case "amount", "fixed_amount":
		typ = pricing.DiscountAmount
	default:
		return nil, fmt.Errorf("voucher %s: %w", r.Code, ErrUnknownKind)
	}
	d, err := pricing.NewDiscountModifier(r.Value, typ)
	if err != nil {
		return nil, fmt.Errorf("voucher %s: %w", r.Code, err)
	}
	return d, nil
}

// Applies reports whether the item falls inside the voucher scope.
func (r Rule) Applies(it Item) bool {
	if len(r.ProductIDs) == 0 {
		return true
	}
	if it.ProductID == nil {
		return false
	}
	for _, id := range r.ProductIDs {
		if id == *it.ProductID {
			return true
		}
	}
	return false
}

// EligibleSubtotal sums the positive subtotals of the items in scope.
func EligibleSubtotal(items []Item, r Rule) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.Price == nil {
			continue
		}
		subtotal := it.Price.Subtotal()
		if !subtotal.IsPositive() {
			continue
		}
		if r.Applies(it) {
			total = total.Add(subtotal)
		}
	}
	return total
}

// Apply checks every rule against the quote subtotal and attaches the
// discount of each valid rule to all items in its scope, in rule order.
// A malformed rule fails the whole call; an ineligible one is reported in
// the outcome.
func Apply(rules []Rule, items []Item, now time.Time) (Outcome, error) {
	cartTotal := decimal.Zero
	for _, it := range items {
		if it.Price != nil {
			cartTotal = cartTotal.Add(it.Price.Subtotal())
		}
	}

	var out Outcome
	seen := map[string]struct{}{}
	for _, r := range rules {
		code := strings.ToUpper(strings.TrimSpace(r.Code))
		if _, dup := seen[code]; dup {
			out.Rejected = append(out.Rejected, Rejection{Code: r.Code, Reason: ErrDuplicateCode})
			continue
		}
		seen[code] = struct{}{}

		modifier, err := r.Modifier()
		if err != nil {
			return Outcome{}, err
		}
		if err := r.Validate(now, cartTotal); err != nil {
			out.Rejected = append(out.Rejected, Rejection{Code: r.Code, Reason: err})
			continue
		}
		if !EligibleSubtotal(items, r).IsPositive() {
			out.Rejected = append(out.Rejected, Rejection{Code: r.Code, Reason: ErrNotEligible})
			continue
		}
		for _, it := range items {
			if it.Price != nil && r.Applies(it) {
				it.Price.SetDiscount(modifier)
			}
		}
		out.Applied = append(out.Applied, r.Code)
	}
	return out, nil
}
