package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/onlypremiums/onlypremiums/app/models"
	"github.com/onlypremiums/onlypremiums/internal/pkg/metrics/counter"
	"github.com/onlypremiums/onlypremiums/internal/pkg/usercontext"
)

// HandlePlansIndex lists active plans, optionally filtered by category or
// product.
func HandlePlansIndex(c *fiber.Ctx) error {
	if category := c.Query("category"); category != "" {
		return c.JSON(catalogMirror.PlansByCategory(category))
	}
	if productID := c.Query("product"); productID != "" {
		return c.JSON(catalogMirror.PlansByProduct(productID))
	}
	return c.JSON(catalogMirror.ActivePlans())
}

// HandlePlanShow returns a single plan with its product info.
func HandlePlanShow(c *fiber.Ctx) error {
	id := c.Params("id")
	plan, ok := catalogMirror.PlanByID(id)
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "not_found", "plan not found")
	}

	if err := counter.AddPlanView(plan.ID); err != nil {
		log.Printf("catalog: failed to count plan view for %s: %v", plan.ID, err)
	}

	return c.JSON(fiber.Map{
		"plan":    plan,
		"product": catalogMirror.ProductInfo(plan.ProductID),
	})
}

// HandleProductsIndex returns the product presentation map.
func HandleProductsIndex(c *fiber.Ctx) error {
	return c.JSON(catalogMirror.Products())
}

// HandleProductInfo resolves presentation info for one product id. Unknown
// ids return the placeholder record, never an error.
func HandleProductInfo(c *fiber.Ctx) error {
	return c.JSON(catalogMirror.ProductInfo(c.Params("id")))
}

// HandleClaimingInstructions returns the redemption steps for a plan. Only
// buyers with a completed order containing the plan may read them.
func HandleClaimingInstructions(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	planID := c.Params("id")

	orders, err := repos.Order.GetByUser(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "something went wrong")
	}

	if !hasCompletedOrderForPlan(orders, planID) {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "claiming instructions are available after purchase")
	}

	instruction, err := repos.ClaimingInstruction.GetByPlanID(planID)
	if err != nil {
		return notFoundOrInternal(c, err, "claiming instructions")
	}

	return c.JSON(instruction)
}

func hasCompletedOrderForPlan(orders []models.Order, planID string) bool {
	for _, order := range orders {
		if order.Status != models.ORDER_STATUS_COMPLETED {
			continue
		}
		for _, item := range order.Items {
			if item.Plan.ID == planID {
				return true
			}
		}
	}
	return false
}
