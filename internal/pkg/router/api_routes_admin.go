package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/onlypremiums/onlypremiums/app/controllers"
	"github.com/onlypremiums/onlypremiums/internal/pkg/middleware"
)

func (h ApiRouter) registerAdminRoutes(v1 fiber.Router) {
	admin := v1.Group("/admin", middleware.RequireAdmin)

	// Plan management
	admin.Get("/plans", controllers.HandleAdminPlansIndex)
	admin.Post("/plans", controllers.HandleAdminPlanCreate)
	admin.Put("/plans/:id", controllers.HandleAdminPlanUpdate)
	admin.Delete("/plans/:id", controllers.HandleAdminPlanDelete)
	admin.Post("/plans/:id/toggle", controllers.HandleAdminPlanToggle)
	admin.Post("/plans/:id/image", controllers.HandleAdminPlanImageUpload)

	// Product management
	admin.Get("/products", controllers.HandleAdminProductsIndex)
	admin.Post("/products", controllers.HandleAdminProductCreate)
	admin.Put("/products/:id", controllers.HandleAdminProductUpdate)
	admin.Delete("/products/:id", controllers.HandleAdminProductDelete)

	// Coupon management
	admin.Get("/coupons", controllers.HandleAdminCouponsIndex)
	admin.Post("/coupons", controllers.HandleAdminCouponCreate)
	admin.Put("/coupons/:id", controllers.HandleAdminCouponUpdate)
	admin.Delete("/coupons/:id", controllers.HandleAdminCouponDelete)

	// Orders
	admin.Get("/orders", controllers.HandleAdminOrdersIndex)
	admin.Post("/orders/:id/refund", controllers.HandleAdminOrderRefund)

	// Redemption steps
	admin.Put("/plans/:planId/claiming-instructions", controllers.HandleAdminClaimingInstructionUpsert)
	admin.Delete("/plans/:planId/claiming-instructions", controllers.HandleAdminClaimingInstructionDelete)

	// Dashboard
	admin.Get("/stats", controllers.HandleAdminStats)
}
