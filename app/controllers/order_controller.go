package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/onlypremiums/onlypremiums/internal/pkg/usercontext"
)

// HandleOrdersIndex returns the current user's order history, newest first.
func HandleOrdersIndex(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	orders, err := repos.Order.GetByUser(userID)
	if err != nil {
		log.Printf("orders: failed to load orders for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load orders")
	}

	return c.JSON(fiber.Map{
		"orders": orders,
		"count":  len(orders),
	})
}

// HandleOrderShow returns one of the current user's orders with its payment
// record. Other users' orders come back as 404, not 403, so order ids are
// not probeable.
func HandleOrderShow(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	orderID := c.Params("id")

	order, err := repos.Order.GetByID(orderID)
	if err != nil {
		return notFoundOrInternal(c, err, "order")
	}
	if order.UserID != userID {
		return jsonError(c, fiber.StatusNotFound, "not_found", "order not found")
	}

	resp := fiber.Map{"order": order}
	if pay, err := repos.Payment.GetByOrderID(order.ID); err == nil {
		resp["payment"] = pay
	}
	return c.JSON(resp)
}
