package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/onlypremiums/onlypremiums/internal/pkg/coupon"
	"github.com/onlypremiums/onlypremiums/internal/pkg/session"
	"github.com/onlypremiums/onlypremiums/internal/pkg/usercontext"
)

type applyCouponRequest struct {
	Code string `json:"code"`
}

// HandleCouponsIndex lists the coupons currently available for use.
func HandleCouponsIndex(c *fiber.Ctx) error {
	coupons, err := couponEvaluator.LoadActive(time.Now())
	if err != nil {
		log.Printf("coupon: failed to load active coupons: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load coupons")
	}
	return c.JSON(coupons)
}

// HandleCouponApply evaluates a code and, on success, stores it as the
// session's applied coupon. Applying another code replaces the previous
// one; a failed application leaves the previous one in place.
func HandleCouponApply(c *fiber.Ctx) error {
	var req applyCouponRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "code is required")
	}

	available, err := couponEvaluator.LoadActive(time.Now())
	if err != nil {
		log.Printf("coupon: failed to load active coupons: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load coupons")
	}

	result := coupon.Apply(available, req.Code, time.Now())
	if result.Success {
		if err := session.SetSessionValue(c, usercontext.KeyAppliedCoupon, result.Coupon.Code); err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not save applied coupon")
		}
	}

	return c.JSON(result)
}

// HandleCouponRemove clears the session's applied coupon. No remote effect.
func HandleCouponRemove(c *fiber.Ctx) error {
	if err := session.DeleteSessionValue(c, usercontext.KeyAppliedCoupon); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not remove applied coupon")
	}
	return c.JSON(fiber.Map{"message": "coupon removed"})
}
