package quote

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxInput declares a tax that items reference by ID. Items referencing the
// same ID share one tax instance.
type TaxInput struct {
	ID       string          `json:"id" yaml:"id" validate:"required"`
	Rate     decimal.Decimal `json:"rate" yaml:"rate"`
	Type     string          `json:"type" yaml:"type" validate:"required,oneof=exclusive inclusive inclusive_calculated"`
	Subtract bool            `json:"subtract,omitempty" yaml:"subtract"`
}

// DiscountInput is a discount owned by a single line.
type DiscountInput struct {
	Kind  string          `json:"kind" yaml:"kind" validate:"required,oneof=percent amount"`
	Value decimal.Decimal `json:"value" yaml:"value"`
}

// CouponInput is a voucher shared by every line in its scope.
type CouponInput struct {
	Code       string          `json:"code" yaml:"code" validate:"required,max=64"`
	Kind       string          `json:"kind" yaml:"kind" validate:"required,oneof=percent amount fixed_amount"`
	Value      decimal.Decimal `json:"value" yaml:"value"`
	MinSpend   decimal.Decimal `json:"minSpend" yaml:"minSpend"`
	UsageLimit *int32          `json:"usageLimit,omitempty" yaml:"usageLimit" validate:"omitempty,gte=0"`
	UsedCount  int32           `json:"usedCount,omitempty" yaml:"usedCount" validate:"gte=0"`
	ValidFrom  *time.Time      `json:"validFrom,omitempty" yaml:"validFrom"`
	ValidTo    *time.Time      `json:"validTo,omitempty" yaml:"validTo"`
	ProductIDs []string        `json:"productIds,omitempty" yaml:"productIds" validate:"omitempty,dive,uuid"`
}

// ItemInput is one priced line.
type ItemInput struct {
	Key         string            `json:"key,omitempty" yaml:"key" validate:"max=128"`
	ProductID   string            `json:"productId,omitempty" yaml:"productId" validate:"omitempty,uuid"`
	Description string            `json:"description,omitempty" yaml:"description" validate:"max=512"`
	Price       decimal.Decimal   `json:"price" yaml:"price"`
	Qty         decimal.Decimal   `json:"qty" yaml:"qty"`
	TaxGroups   [][]string        `json:"taxGroups,omitempty" yaml:"taxGroups" validate:"omitempty,dive,dive,required"`
	Discounts   []DiscountInput   `json:"discounts,omitempty" yaml:"discounts" validate:"omitempty,dive"`
	Meta        map[string]string `json:"meta,omitempty" yaml:"meta"`
}

// QuoteRequest describes the lines to price together.
type QuoteRequest struct {
	Currency             string        `json:"currency,omitempty" yaml:"currency" validate:"omitempty,len=3,alpha"`
	DiscountsAffectTaxes *bool         `json:"discountsAffectTaxes,omitempty" yaml:"discountsAffectTaxes"`
	ExcludeTaxTypes      []string      `json:"excludeTaxTypes,omitempty" yaml:"excludeTaxTypes" validate:"omitempty,dive,oneof=exclusive inclusive inclusive_calculated"`
	Taxes                []TaxInput    `json:"taxes,omitempty" yaml:"taxes" validate:"omitempty,dive"`
	Coupons              []CouponInput `json:"coupons,omitempty" yaml:"coupons" validate:"omitempty,dive"`
	Items                []ItemInput   `json:"items" yaml:"items" validate:"required,min=1,dive"`
}

// MergeRequest replaces the lines of Current with the lines of Next that
// share their key, as in a plan upgrade or downgrade.
type MergeRequest struct {
	Current  QuoteRequest     `json:"current" yaml:"current"`
	Next     QuoteRequest     `json:"next" yaml:"next"`
	Strategy string           `json:"strategy,omitempty" yaml:"strategy" validate:"omitempty,oneof=difference sum replace"`
	Ratio    *decimal.Decimal `json:"ratio,omitempty" yaml:"ratio"`
}

// Line is the computed breakdown of one item.
type Line struct {
	Key                string          `json:"key,omitempty"`
	Description        string          `json:"description,omitempty"`
	Qty                decimal.Decimal `json:"qty"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Discount           decimal.Decimal `json:"discount"`
	Tax                decimal.Decimal `json:"tax"`
	TotalAfterDiscount decimal.Decimal `json:"totalAfterDiscount"`
	TotalAfterTax      decimal.Decimal `json:"totalAfterTax"`
	Total              decimal.Decimal `json:"total"`
}

// CouponRejection explains why a coupon was not applied.
type CouponRejection struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// CouponOutcome lists applied and rejected coupons.
type CouponOutcome struct {
	Applied  []string          `json:"applied"`
	Rejected []CouponRejection `json:"rejected"`
}

// Quote is an evaluated snapshot.
type Quote struct {
	ID                 string          `json:"id"`
	CreatedAt          time.Time       `json:"createdAt"`
	Currency           string          `json:"currency,omitempty"`
	Lines              []Line          `json:"lines"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Discount           decimal.Decimal `json:"discount"`
	Tax                decimal.Decimal `json:"tax"`
	TotalAfterDiscount decimal.Decimal `json:"totalAfterDiscount"`
	TotalAfterTax      decimal.Decimal `json:"totalAfterTax"`
	Total              decimal.Decimal `json:"total"`
	Coupons            CouponOutcome   `json:"coupons"`
}
