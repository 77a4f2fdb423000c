package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/noah-isme/backend-pricing/internal/obs"
	"github.com/noah-isme/backend-pricing/internal/pricing"
	"github.com/noah-isme/backend-pricing/internal/voucher"
)

const (
	// StrategyDifference charges the prorated difference between the next and current line.
	StrategyDifference = "difference"
	// StrategySum charges the current total plus the next amount.
	StrategySum = "sum"
	// StrategyReplace charges the next amount as is.
	StrategyReplace = "replace"
)

const defaultMaxItems = 200

var (
	linesOnce    sync.Once
	linesCounter metric.Int64Counter
)

var defaultValidator = sync.OnceValue(NewValidator)

func evaluatedLines() metric.Int64Counter {
	linesOnce.Do(func() {
		c, err := otel.Meter("quote.Service").Int64Counter("quote.lines.evaluated",
			metric.WithDescription("Number of quote lines priced."))
		if err == nil {
			linesCounter = c
		}
	})
	return linesCounter
}

// Service evaluates quotes on top of the pricing engine.
type Service struct {
	Logger               zerolog.Logger
	Validate             *validator.Validate
	Store                Store
	Now                  func() time.Time
	NewID                func() string
	DiscountsAffectTaxes bool
	IncludeCalculatedTax bool
	MaxItems             int
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) validate(v any) error {
	validate := s.Validate
	if validate == nil {
		validate = defaultValidator()
	}
	if err := validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

func (s *Service) checkSize(req QuoteRequest) error {
	limit := s.MaxItems
	if limit <= 0 {
		limit = defaultMaxItems
	}
	if len(req.Items) > limit {
		return badRequest(fmt.Sprintf("at most %d items are allowed", limit), ErrTooManyItems)
	}
	return nil
}

// Quote prices the request and stores the result when a store is configured.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (Quote, error) {
	ctx, span := otel.Tracer("quote.Service").Start(ctx, "QuoteService.Quote")
	defer span.End()

	start := time.Now()
	result := "error"
	lines := len(req.Items)
	defer func() {
		obs.ObserveQuote("quote", result, lines, obs.DurationMillis(time.Since(start)))
		span.SetAttributes(
			attribute.Int("quote.lines", lines),
			attribute.String("quote.result", result),
		)
	}()

	if err := s.validate(req); err != nil {
		result = "invalid"
		return Quote{}, err
	}
	if err := s.checkSize(req); err != nil {
		result = "invalid"
		return Quote{}, err
	}
	collection, coupons, err := s.build(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Quote{}, unprocessable(err)
	}
	q := s.snapshot(collection, coupons, req.Currency)
	if err := s.save(ctx, q); err != nil {
		span.RecordError(err)
		return Quote{}, err
	}
	s.countLines(ctx, "quote", lines)
	result = "ok"
	span.SetAttributes(attribute.String("quote.id", q.ID))
	return q, nil
}

// Merge prices both sides and replaces every current line with the next
// line sharing its key, pricing the replacement with the strategy.
func (s *Service) Merge(ctx context.Context, req MergeRequest) (Quote, error) {
	ctx, span := otel.Tracer("quote.Service").Start(ctx, "QuoteService.Merge")
	defer span.End()

	strategy := strings.ToLower(strings.TrimSpace(req.Strategy))
	if strategy == "" {
		strategy = StrategyDifference
	}
	start := time.Now()
	result := "error"
	lines := len(req.Current.Items) * len(req.Next.Items)
	defer func() {
		obs.ObserveQuote("merge", result, lines, obs.DurationMillis(time.Since(start)))
		obs.ObserveMerge(strategy, result)
		span.SetAttributes(
			attribute.String("quote.merge.strategy", strategy),
			attribute.String("quote.result", result),
		)
	}()

	if err := s.validate(req); err != nil {
		result = "invalid"
		return Quote{}, err
	}
	for _, side := range []QuoteRequest{req.Current, req.Next} {
		if err := s.checkSize(side); err != nil {
			result = "invalid"
			return Quote{}, err
		}
	}
	ratio := decimal.NewFromInt(1)
	if req.Ratio != nil {
		ratio = *req.Ratio
		if ratio.IsNegative() || ratio.GreaterThan(decimal.NewFromInt(1)) {
			result = "invalid"
			return Quote{}, badRequest("ratio must be between 0 and 1", pricing.ErrInvalidModifierArgument)
		}
	}
	price, err := strategyPrice(strategy, ratio)
	if err != nil {
		result = "invalid"
		return Quote{}, unprocessable(err)
	}

	current, _, err := s.build(req.Current)
	if err != nil {
		return Quote{}, unprocessable(fmt.Errorf("current: %w", err))
	}
	next, coupons, err := s.build(req.Next)
	if err != nil {
		return Quote{}, unprocessable(fmt.Errorf("next: %w", err))
	}

	cmp := pricing.NewServiceComparator(price, describeChange)
	merged, err := current.Merge(next, cmp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Quote{}, unprocessable(err)
	}
	affect := s.affectsTaxes(req.Next)
	for _, item := range merged.All() {
		item.SetDiscountsAffectTaxes(affect)
		item.IncludeCalculatedTaxes(s.IncludeCalculatedTax)
	}
	excludeTaxTypes(merged, req.Next.ExcludeTaxTypes)

	q := s.snapshot(merged, coupons, req.Next.Currency)
	if err := s.save(ctx, q); err != nil {
		span.RecordError(err)
		return Quote{}, err
	}
	lines = merged.Count()
	s.countLines(ctx, "merge", lines)
	result = "ok"
	s.Logger.Debug().Str("quote_id", q.ID).Str("strategy", strategy).Int("lines", lines).Msg("quote merged")
	return q, nil
}

// Get loads a stored quote.
func (s *Service) Get(ctx context.Context, id string) (Quote, error) {
	if s.Store == nil {
		return Quote{}, ErrNotFound
	}
	ctx, span := otel.Tracer("quote.Service").Start(ctx, "QuoteService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("quote.id", id))
	return s.Store.Get(ctx, id)
}

func (s *Service) save(ctx context.Context, q Quote) error {
	if s.Store == nil {
		return nil
	}
	if err := s.Store.Save(ctx, q); err != nil {
		s.Logger.Warn().Err(err).Str("quote_id", q.ID).Msg("store quote")
		return fmt.Errorf("store quote: %w", err)
	}
	return nil
}

func (s *Service) countLines(ctx context.Context, op string, n int) {
	if c := evaluatedLines(); c != nil {
		c.Add(ctx, int64(n), metric.WithAttributes(attribute.String("op", op)))
	}
}

func (s *Service) affectsTaxes(req QuoteRequest) bool {
	if req.DiscountsAffectTaxes != nil {
		return *req.DiscountsAffectTaxes
	}
	return s.DiscountsAffectTaxes
}

// build turns a request into a collection. Items referencing the same tax
// ID share one modifier; coupons are attached after each line's own discounts.
func (s *Service) build(req QuoteRequest) (*pricing.ItemCollection, voucher.Outcome, error) {
	taxes := make(map[string]*pricing.TaxModifier, len(req.Taxes))
	for _, in := range req.Taxes {
		if _, dup := taxes[in.ID]; dup {
			return nil, voucher.Outcome{}, fmt.Errorf("%w: %s", ErrDuplicateTax, in.ID)
		}
		tax, err := pricing.NewTaxModifier(in.Rate, pricing.TaxType(in.Type), in.Subtract)
		if err != nil {
			return nil, voucher.Outcome{}, fmt.Errorf("tax %s: %w", in.ID, err)
		}
		taxes[in.ID] = tax
	}

	affect := s.affectsTaxes(req)
	collection := pricing.NewItemCollection()
	targets := make([]voucher.Item, 0, len(req.Items))
	for i, in := range req.Items {
		item := pricing.NewItemPrice(in.Price, in.Qty, in.Key)
		item.SetDescription(in.Description)
		item.SetDiscountsAffectTaxes(affect)
		item.IncludeCalculatedTaxes(s.IncludeCalculatedTax)
		if len(in.Meta) > 0 {
			item.Meta().Attach(pricing.NewMetaItem("line", in.Meta))
		}
		for _, group := range in.TaxGroups {
			mods := make([]*pricing.TaxModifier, 0, len(group))
			for _, id := range group {
				tax, ok := taxes[id]
				if !ok {
					return nil, voucher.Outcome{}, fmt.Errorf("item %d: %w: %s", i, ErrUnknownTax, id)
				}
				mods = append(mods, tax)
			}
			if err := item.SetTax(mods...); err != nil {
				return nil, voucher.Outcome{}, fmt.Errorf("item %d: %w", i, err)
			}
		}
		for _, d := range in.Discounts {
			mod, err := pricing.NewDiscountModifier(d.Value, pricing.DiscountType(d.Kind))
			if err != nil {
				return nil, voucher.Outcome{}, fmt.Errorf("item %d: %w", i, err)
			}
			item.SetDiscount(mod)
		}
		target := voucher.Item{Price: item}
		if in.ProductID != "" {
			id, err := uuid.Parse(in.ProductID)
			if err != nil {
				return nil, voucher.Outcome{}, fmt.Errorf("item %d: %w: product id", i, pricing.ErrInvalidModifierArgument)
			}
			target.ProductID = &id
		}
		collection.Append(item)
		targets = append(targets, target)
	}

	rules, err := couponRules(req.Coupons)
	if err != nil {
		return nil, voucher.Outcome{}, err
	}
	outcome, err := voucher.Apply(rules, targets, s.now())
	if err != nil {
		return nil, voucher.Outcome{}, err
	}
	excludeTaxTypes(collection, req.ExcludeTaxTypes)
	return collection, outcome, nil
}

func couponRules(in []CouponInput) ([]voucher.Rule, error) {
	rules := make([]voucher.Rule, 0, len(in))
	for _, c := range in {
		rule := voucher.Rule{
			Code:       c.Code,
			Kind:       c.Kind,
			Value:      c.Value,
			MinSpend:   c.MinSpend,
			UsageLimit: c.UsageLimit,
			UsedCount:  c.UsedCount,
			ValidFrom:  c.ValidFrom,
			ValidTo:    c.ValidTo,
		}
		for _, raw := range c.ProductIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("coupon %s: %w: product id", c.Code, pricing.ErrInvalidModifierArgument)
			}
			rule.ProductIDs = append(rule.ProductIDs, id)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func excludeTaxTypes(c *pricing.ItemCollection, types []string) {
	for _, t := range types {
		c.ExcludeTax(pricing.TaxType(t))
	}
}

func (s *Service) snapshot(c *pricing.ItemCollection, coupons voucher.Outcome, currency string) Quote {
	summary := pricing.Summarize(c)
	q := Quote{
		ID:                 s.newID(),
		CreatedAt:          s.now(),
		Currency:           strings.ToUpper(currency),
		Lines:              make([]Line, 0, len(summary.Lines)),
		Subtotal:           summary.Subtotal,
		Discount:           summary.Discount,
		Tax:                summary.Tax,
		TotalAfterDiscount: summary.TotalAfterDiscount,
		TotalAfterTax:      summary.TotalAfterTax,
		Total:              summary.Total,
		Coupons:            CouponOutcome{Applied: []string{}, Rejected: []CouponRejection{}},
	}
	for _, l := range summary.Lines {
		q.Lines = append(q.Lines, Line{
			Key:                l.Key,
			Description:        l.Description,
			Qty:                l.Qty,
			UnitPrice:          l.UnitPrice,
			Subtotal:           l.Subtotal,
			Discount:           l.Discount,
			Tax:                l.Tax,
			TotalAfterDiscount: l.TotalAfterDiscount,
			TotalAfterTax:      l.TotalAfterTax,
			Total:              l.Total,
		})
	}
	q.Coupons.Applied = append(q.Coupons.Applied, coupons.Applied...)
	for _, r := range coupons.Rejected {
		q.Coupons.Rejected = append(q.Coupons.Rejected, CouponRejection{Code: r.Code, Reason: r.Reason.Error()})
	}
	return q
}

func strategyPrice(strategy string, ratio decimal.Decimal) (pricing.PriceFunc, error) {
	switch strategy {
	case StrategyDifference:
		return func(fromTotal, toAmount decimal.Decimal, _, _ *pricing.Meta) decimal.Decimal {
			return toAmount.Sub(fromTotal).Mul(ratio)
		}, nil
	case StrategySum:
		return func(fromTotal, toAmount decimal.Decimal, _, _ *pricing.Meta) decimal.Decimal {
			return fromTotal.Add(toAmount.Mul(ratio))
		}, nil
	case StrategyReplace:
		return func(_, toAmount decimal.Decimal, _, _ *pricing.Meta) decimal.Decimal {
			return toAmount.Mul(ratio)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
}

func describeChange(fromMeta, toMeta *pricing.Meta) string {
	from, ok := fromMeta.Value("name")
	if !ok {
		from = "current"
	}
	to, ok := toMeta.Value("name")
	if !ok {
		to = "next"
	}
	return from + " to " + to
}

// IsNotFound reports whether err means the quote does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
