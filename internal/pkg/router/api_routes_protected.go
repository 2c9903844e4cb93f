package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/onlypremiums/onlypremiums/app/controllers"
	"github.com/onlypremiums/onlypremiums/internal/pkg/middleware"
)

func (h ApiRouter) registerProtectedRoutes(v1 fiber.Router) {
	// Cart
	cart := v1.Group("/cart", middleware.RequireAuth)
	cart.Get("/", controllers.HandleCartIndex)
	cart.Post("/items", controllers.HandleCartAdd)
	cart.Put("/items/:planId", controllers.HandleCartUpdateQuantity)
	cart.Delete("/items/:planId", controllers.HandleCartRemove)
	cart.Delete("/", controllers.HandleCartClear)

	// Checkout
	checkout := v1.Group("/checkout", middleware.RequireAuth)
	checkout.Post("/begin", controllers.HandleCheckoutBegin)
	checkout.Post("/confirm", controllers.HandleCheckoutConfirm)
	checkout.Post("/cancel", controllers.HandleCheckoutCancel)

	// Orders
	orders := v1.Group("/orders", middleware.RequireAuth)
	orders.Get("/", controllers.HandleOrdersIndex)
	orders.Get("/:id", controllers.HandleOrderShow)

	// Post-purchase redemption steps
	v1.Get("/plans/:id/claiming-instructions", middleware.RequireAuth, controllers.HandleClaimingInstructions)
}
