package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/onlypremiums/onlypremiums/app/models"
	"github.com/onlypremiums/onlypremiums/app/repository"
	"github.com/onlypremiums/onlypremiums/internal/pkg/checkout"
	"github.com/onlypremiums/onlypremiums/internal/pkg/metrics/counter"
	"github.com/onlypremiums/onlypremiums/internal/pkg/session"
	"github.com/onlypremiums/onlypremiums/internal/pkg/usercontext"
)

type beginCheckoutRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
}

type cancelCheckoutRequest struct {
	OrderID string `json:"order_id"`
}

// HandleCheckoutBegin creates the order and the gateway order for the
// browser payment widget. The applied coupon is read from the session and
// re-validated here; a coupon that went stale since it was applied is
// dropped silently rather than blocking the purchase.
func HandleCheckoutBegin(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	user, err := repos.User.GetByID(userID)
	if err != nil {
		return notFoundOrInternal(c, err, "user")
	}

	loaded, err := cartService.Load(userID)
	if err != nil {
		return cartError(c, err)
	}

	var req beginCheckoutRequest
	_ = c.BodyParser(&req)

	chk := &checkout.Checkout{
		User:           *user,
		Items:          loaded.Items,
		AppliedCoupon:  appliedCouponFromSession(c),
		IdempotencyKey: req.IdempotencyKey,
	}

	result, err := orchestrator.Begin(c.Context(), chk)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			return jsonError(c, fiber.StatusBadRequest, "empty_cart", "cart is empty")
		}
		log.Printf("checkout: begin failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not start checkout")
	}

	if err := counter.AddCheckoutStarted(); err != nil {
		log.Printf("checkout: failed to count checkout start: %v", err)
	}

	return c.JSON(result)
}

// HandleCheckoutConfirm processes the widget's success callback. The
// signature is verified against the gateway order we created, never against
// identifiers the client picked.
func HandleCheckoutConfirm(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	var conf checkout.Confirmation
	if err := c.BodyParser(&conf); err != nil || conf.OrderID == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "order_id is required")
	}

	success, err := orchestrator.Confirm(c.Context(), userID, &conf)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "order not found")
		case errors.Is(err, checkout.ErrNotOwner):
			return jsonError(c, fiber.StatusForbidden, "forbidden", "order does not belong to this user")
		case errors.Is(err, checkout.ErrInvalidSignature):
			return jsonError(c, fiber.StatusBadRequest, "invalid_signature", "payment verification failed")
		case errors.Is(err, repository.ErrInvalidStatusTransition):
			return jsonError(c, fiber.StatusConflict, "conflict", "order is not awaiting payment")
		}
		log.Printf("checkout: confirm failed for order %s: %v", conf.OrderID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not confirm payment")
	}

	if err := session.DeleteSessionValue(c, usercontext.KeyAppliedCoupon); err != nil {
		log.Printf("checkout: failed to clear applied coupon: %v", err)
	}
	if err := counter.AddCheckoutCompleted(); err != nil {
		log.Printf("checkout: failed to count checkout completion: %v", err)
	}

	return c.JSON(success)
}

// HandleCheckoutCancel marks the order failed after the widget was
// dismissed. The cart stays intact so the buyer can retry.
func HandleCheckoutCancel(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	var req cancelCheckoutRequest
	if err := c.BodyParser(&req); err != nil || req.OrderID == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "order_id is required")
	}

	if err := orchestrator.Cancel(c.Context(), userID, req.OrderID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "order not found")
		case errors.Is(err, checkout.ErrNotOwner):
			return jsonError(c, fiber.StatusForbidden, "forbidden", "order does not belong to this user")
		case errors.Is(err, repository.ErrInvalidStatusTransition):
			return jsonError(c, fiber.StatusConflict, "conflict", "order is not awaiting payment")
		}
		log.Printf("checkout: cancel failed for order %s: %v", req.OrderID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not cancel checkout")
	}

	return c.JSON(fiber.Map{"message": "checkout cancelled"})
}

// appliedCouponFromSession resolves the session's applied coupon code to a
// fresh database row and re-checks it is still usable right now.
func appliedCouponFromSession(c *fiber.Ctx) *models.Coupon {
	code := session.GetSessionValue(c, usercontext.KeyAppliedCoupon)
	if code == "" {
		return nil
	}

	cp, err := repos.Coupon.GetByCode(code)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("checkout: failed to load applied coupon %q: %v", code, err)
		}
		return nil
	}
	if !cp.IsUsableAt(time.Now()) {
		return nil
	}
	return cp
}
