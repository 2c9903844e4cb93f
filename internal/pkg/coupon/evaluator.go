package coupon

import (
	"fmt"
	"strings"
	"time"

	"github.com/onlypremiums/onlypremiums/app/models"
	"github.com/onlypremiums/onlypremiums/app/repository"
)

// Result is the structured outcome of a coupon application attempt.
// Failures are results, not errors: the storefront shows Message verbatim.
type Result struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Discount int            `json:"discount,omitempty"`
	Coupon   *models.Coupon `json:"coupon,omitempty"`
}

const (
	msgInvalidCode       = "Invalid coupon code"
	msgNotYetActive      = "Coupon is not yet active"
	msgExpired           = "Coupon has expired"
	msgUsageLimitReached = "Coupon usage limit reached"
)

// Evaluator loads coupons and evaluates applications against them.
type Evaluator struct {
	repo repository.CouponRepository
}

// NewEvaluator creates a coupon evaluator from an injected repository.
func NewEvaluator(repo repository.CouponRepository) *Evaluator {
	return &Evaluator{repo: repo}
}

// LoadActive fetches coupons flagged active (most recently created first)
// and filters out those outside their validity window or exhausted.
func (e *Evaluator) LoadActive(now time.Time) ([]models.Coupon, error) {
	coupons, err := e.repo.GetActive()
	if err != nil {
		return nil, err
	}

	valid := coupons[:0]
	for _, c := range coupons {
		if c.IsUsableAt(now) {
			valid = append(valid, c)
		}
	}
	return valid, nil
}

// Apply matches code case-insensitively among the available coupons and
// returns a structured result. Applying a second code replaces the first;
// the caller owns the applied-coupon state (session-scoped, never global).
func Apply(available []models.Coupon, code string, now time.Time) Result {
	var coupon *models.Coupon
	for i := range available {
		if strings.EqualFold(available[i].Code, code) {
			coupon = &available[i]
			break
		}
	}

	if coupon == nil {
		return Result{Success: false, Message: msgInvalidCode}
	}
	if now.Before(coupon.ValidFrom) {
		return Result{Success: false, Message: msgNotYetActive}
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return Result{Success: false, Message: msgExpired}
	}
	if !coupon.HasUsesLeft() {
		return Result{Success: false, Message: msgUsageLimitReached}
	}

	return Result{
		Success:  true,
		Message:  applySuccessMessage(coupon.DiscountPercentage),
		Discount: coupon.DiscountPercentage,
		Coupon:   coupon,
	}
}

func applySuccessMessage(discount int) string {
	return fmt.Sprintf("Coupon applied! %d%% discount", discount)
}

// CalculateDiscount returns the discount for a subtotal in minor currency
// units. Pure integer arithmetic, round half up: (subtotal*pct + 50) / 100.
// No floating point so the same subtotal always yields the same total.
func CalculateDiscount(subtotal int64, discountPercentage int) int64 {
	if discountPercentage <= 0 || subtotal <= 0 {
		return 0
	}
	return (subtotal*int64(discountPercentage) + 50) / 100
}
