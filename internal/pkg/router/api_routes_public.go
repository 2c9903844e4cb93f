package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/onlypremiums/onlypremiums/app/controllers"
)

func (h ApiRouter) registerPublicRoutes(v1 fiber.Router) {
	// Auth
	v1.Post("/auth/register", controllers.HandleAuthRegister)
	v1.Post("/auth/login", controllers.HandleAuthLogin)
	v1.Post("/auth/logout", controllers.HandleAuthLogout)
	v1.Get("/auth/me", controllers.HandleAuthMe)

	// Catalog
	v1.Get("/plans", controllers.HandlePlansIndex)
	v1.Get("/plans/:id", controllers.HandlePlanShow)
	v1.Get("/products", controllers.HandleProductsIndex)
	v1.Get("/products/:id", controllers.HandleProductInfo)

	// Coupons
	v1.Get("/coupons", controllers.HandleCouponsIndex)
	v1.Post("/coupons/apply", controllers.HandleCouponApply)
	v1.Delete("/coupons/applied", controllers.HandleCouponRemove)
}
