package discount

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"lokonnect/internal/api"
	"lokonnect/internal/models"
)

// transientErrorTTL is how long a promo validation error stays visible
// before it auto-clears.
const transientErrorTTL = 5 * time.Second

// DiscountAPI is the slice of the API client the resolver needs.
type DiscountAPI interface {
	ApplicableDiscounts(ctx context.Context, dctx api.DiscountContext) (*api.DiscountBuckets, error)
	ValidateDiscountCode(ctx context.Context, dctx api.DiscountContext) (*api.ValidateDiscountResult, error)
}

// Buckets are the time-window-filtered discount lists for a cart.
type Buckets struct {
	Applicable     []models.Discount
	NearApplicable []models.Discount
	Summary        api.DiscountSummary
}

// Resolver fetches and validates discounts for a cart and owns the
// single applied-discount slot. Both the auto-applicable list and the
// manual promo code path go through the same setter, so applying a
// second discount always replaces the first.
type Resolver struct {
	mu     sync.Mutex
	api    DiscountAPI
	logger *zap.Logger
	now    func() time.Time

	applied *models.AppliedDiscount
	errMsg  string
	errAt   time.Time
}

// NewResolver creates a discount resolver.
func NewResolver(dapi DiscountAPI, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		api:    dapi,
		logger: logger,
		now:    time.Now,
	}
}

// FetchApplicable returns the discounts usable now and those near
// usability for the cart, with both buckets filtered by each discount's
// time-of-day window against the current wall clock.
func (r *Resolver) FetchApplicable(ctx context.Context, dctx api.DiscountContext) (*Buckets, error) {
	buckets, err := r.api.ApplicableDiscounts(ctx, dctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discounts: %w", err)
	}

	now := r.now()
	return &Buckets{
		Applicable:     filterActive(buckets.Applicable, now),
		NearApplicable: filterActive(buckets.NearApplicable, now),
		Summary:        buckets.Summary,
	}, nil
}

func filterActive(discounts []models.Discount, now time.Time) []models.Discount {
	var out []models.Discount
	for _, d := range discounts {
		if d.ActiveAt(now) {
			out = append(out, d)
		}
	}
	return out
}

// Validate submits a user-entered promo code with the cart context. On
// success the discount becomes the single applied discount with savings
// computed as original minus final amount. On failure a transient error
// is surfaced (auto-clearing after five seconds) and any prior
// selection stands.
func (r *Resolver) Validate(ctx context.Context, dctx api.DiscountContext) (*models.AppliedDiscount, error) {
	if dctx.DiscountCode == "" {
		return nil, models.ErrInvalidInput
	}

	result, err := r.api.ValidateDiscountCode(ctx, dctx)
	if err != nil {
		// No discount is applied on failure; any prior selection stands.
		r.setTransientError(messageOf(err))
		return nil, fmt.Errorf("failed to validate promo code: %w", err)
	}

	applied := &models.AppliedDiscount{
		ID:             result.Discount.ID,
		Code:           result.Discount.Code,
		Name:           result.Discount.Name,
		Cities:         dctx.Cities,
		Type:           result.Discount.DiscountType,
		Value:          result.Discount.DiscountValue,
		DiscountAmount: result.DiscountAmount,
		OriginalAmount: dctx.BookingAmount,
		FinalAmount:    result.FinalAmount,
		Savings:        dctx.BookingAmount - result.FinalAmount,
		MinOrderAmount: result.MinOrderAmount,
		MaxDiscount:    result.Discount.MaxDiscountAmount,
	}

	r.mu.Lock()
	r.applied = applied
	r.errMsg = ""
	r.mu.Unlock()

	r.logger.Info("promo code applied",
		zap.String("code", applied.Code),
		zap.Float64("savings", applied.Savings))
	return applied, nil
}

// Select toggles a discount from the applicable list as the sole
// applied discount; selecting the already-applied discount clears it.
func (r *Resolver) Select(d models.Discount, dctx api.DiscountContext) *models.AppliedDiscount {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.applied != nil && r.applied.ID == d.ID {
		r.applied = nil
		return nil
	}

	savings := d.Savings
	finalAmount := d.FinalAmount
	discountAmount := d.DiscountAmount
	if discountAmount == 0 {
		// The list endpoint precomputes amounts; fall back to local math
		// when it did not.
		discountAmount = d.SavingsFor(dctx.BookingAmount)
		finalAmount = dctx.BookingAmount - discountAmount
		savings = discountAmount
	}

	r.applied = &models.AppliedDiscount{
		ID:             d.ID,
		Code:           d.Code,
		Name:           d.Name,
		Cities:         dctx.Cities,
		Type:           d.DiscountType,
		Value:          d.DiscountValue,
		DiscountAmount: discountAmount,
		OriginalAmount: dctx.BookingAmount,
		FinalAmount:    finalAmount,
		Savings:        savings,
		MinOrderAmount: d.MinOrderAmount,
		MaxDiscount:    d.MaxDiscountAmount,
	}
	return r.applied
}

// Applied returns the currently applied discount, or nil.
func (r *Resolver) Applied() *models.AppliedDiscount {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applied == nil {
		return nil
	}
	a := *r.applied
	return &a
}

// Remove clears the applied discount if it matches id.
func (r *Resolver) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applied != nil && r.applied.ID == id {
		r.applied = nil
	}
}

// Clear drops any applied discount.
func (r *Resolver) Clear() {
	r.clearApplied()
}

func (r *Resolver) clearApplied() {
	r.mu.Lock()
	r.applied = nil
	r.mu.Unlock()
}

// TransientError returns the last validation error message, or empty
// once it has aged out.
func (r *Resolver) TransientError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errMsg == "" || r.now().Sub(r.errAt) > transientErrorTTL {
		return ""
	}
	return r.errMsg
}

func (r *Resolver) setTransientError(msg string) {
	r.mu.Lock()
	r.errMsg = msg
	r.errAt = r.now()
	r.mu.Unlock()
}

func messageOf(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Invalid or non-applicable coupon code"
}
