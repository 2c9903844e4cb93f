package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/onlypremiums/onlypremiums/internal/pkg/cart"
	"github.com/onlypremiums/onlypremiums/internal/pkg/usercontext"
)

type cartItemRequest struct {
	PlanID   string `json:"plan_id"`
	Quantity int    `json:"quantity"`
}

func cartResponse(c *fiber.Ctx, userID uint) error {
	loaded, err := cartService.Load(userID)
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(fiber.Map{
		"items":      loaded.Items,
		"total":      loaded.Total(),
		"item_count": loaded.ItemCount(),
	})
}

func cartError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, cart.ErrUnauthenticated):
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "login required")
	case errors.Is(err, cart.ErrPlanNotFound):
		return jsonError(c, fiber.StatusNotFound, "not_found", "plan not found or inactive")
	default:
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "something went wrong")
	}
}

// HandleCartIndex returns the current user's cart with derived totals.
func HandleCartIndex(c *fiber.Ctx) error {
	return cartResponse(c, usercontext.GetUserID(c))
}

// HandleCartAdd adds one unit of a plan to the cart.
func HandleCartAdd(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil || req.PlanID == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "plan_id is required")
	}

	userID := usercontext.GetUserID(c)
	if err := cartService.AddItem(userID, req.PlanID); err != nil {
		return cartError(c, err)
	}
	return cartResponse(c, userID)
}

// HandleCartUpdateQuantity sets the quantity for a plan's cart row.
// Quantity zero or below removes the row.
func HandleCartUpdateQuantity(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid quantity payload")
	}

	userID := usercontext.GetUserID(c)
	if err := cartService.UpdateQuantity(userID, c.Params("planId"), req.Quantity); err != nil {
		return cartError(c, err)
	}
	return cartResponse(c, userID)
}

// HandleCartRemove removes a plan's row from the cart.
func HandleCartRemove(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	if err := cartService.RemoveItem(userID, c.Params("planId")); err != nil {
		return cartError(c, err)
	}
	return cartResponse(c, userID)
}

// HandleCartClear empties the cart.
func HandleCartClear(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	if err := cartService.Clear(userID); err != nil {
		return cartError(c, err)
	}
	return cartResponse(c, userID)
}
