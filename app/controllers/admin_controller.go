package controllers

import (
	"log"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/onlypremiums/onlypremiums/app/models"
	"github.com/onlypremiums/onlypremiums/internal/pkg/metrics/counter"
	"github.com/onlypremiums/onlypremiums/internal/pkg/usercontext"
)

// -- Plans --------------------------------------------------------------

// HandleAdminPlansIndex lists every plan, active or not.
func HandleAdminPlansIndex(c *fiber.Ctx) error {
	return c.JSON(catalogMirror.Plans())
}

// HandleAdminPlanCreate adds a plan to the catalog. A missing id gets a
// generated one.
func HandleAdminPlanCreate(c *fiber.Ctx) error {
	var plan models.Plan
	if err := c.BodyParser(&plan); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid plan payload")
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if err := plan.Validate(); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	if err := catalogMirror.AddPlan(&plan); err != nil {
		log.Printf("admin: failed to create plan %s: %v", plan.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not create plan")
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// HandleAdminPlanUpdate replaces a plan's fields. The path id wins over
// any id in the body.
func HandleAdminPlanUpdate(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, ok := catalogMirror.PlanByID(id); !ok {
		return jsonError(c, fiber.StatusNotFound, "not_found", "plan not found")
	}

	var plan models.Plan
	if err := c.BodyParser(&plan); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid plan payload")
	}
	plan.ID = id
	if err := plan.Validate(); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	if err := catalogMirror.UpdatePlan(&plan); err != nil {
		log.Printf("admin: failed to update plan %s: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not update plan")
	}
	return c.JSON(plan)
}

// HandleAdminPlanDelete removes a plan from the catalog. Existing orders
// keep their embedded plan snapshots.
func HandleAdminPlanDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, ok := catalogMirror.PlanByID(id); !ok {
		return jsonError(c, fiber.StatusNotFound, "not_found", "plan not found")
	}

	if err := catalogMirror.DeletePlan(id); err != nil {
		log.Printf("admin: failed to delete plan %s: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not delete plan")
	}
	return c.JSON(fiber.Map{"message": "plan deleted"})
}

// HandleAdminPlanToggle flips a plan's active flag.
func HandleAdminPlanToggle(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, ok := catalogMirror.PlanByID(id); !ok {
		return jsonError(c, fiber.StatusNotFound, "not_found", "plan not found")
	}

	if err := catalogMirror.TogglePlanActive(id); err != nil {
		log.Printf("admin: failed to toggle plan %s: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not toggle plan")
	}

	plan, _ := catalogMirror.PlanByID(id)
	return c.JSON(plan)
}

// HandleAdminPlanImageUpload stores a plan image in object storage and
// writes the public URL back onto the plan.
func HandleAdminPlanImageUpload(c *fiber.Ctx) error {
	if planImageClient == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "uploads_disabled", "plan image upload is not configured")
	}

	id := c.Params("id")
	plan, ok := catalogMirror.PlanByID(id)
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "not_found", "plan not found")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "image file is required")
	}

	url, err := uploadPlanImage(c, id, fileHeader)
	if err != nil {
		log.Printf("admin: failed to upload image for plan %s: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not upload image")
	}

	plan.ImageURL = url
	if err := catalogMirror.UpdatePlan(&plan); err != nil {
		log.Printf("admin: failed to save image url for plan %s: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not save image url")
	}

	return c.JSON(fiber.Map{"image_url": url})
}

func uploadPlanImage(c *fiber.Ctx, planID string, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return planImageClient.Upload(c.Context(), planID, fileHeader.Filename, contentType, file)
}

// -- Products -----------------------------------------------------------

// HandleAdminProductsIndex lists every product, active or not.
func HandleAdminProductsIndex(c *fiber.Ctx) error {
	products, err := repos.Product.GetAll()
	if err != nil {
		log.Printf("admin: failed to load products: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load products")
	}
	return c.JSON(products)
}

// HandleAdminProductCreate adds a product to the catalog.
func HandleAdminProductCreate(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid product payload")
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if err := product.Validate(); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	if err := catalogMirror.AddProduct(&product); err != nil {
		log.Printf("admin: failed to create product %s: %v", product.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleAdminProductUpdate replaces a product's fields.
func HandleAdminProductUpdate(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := repos.Product.GetByID(id); err != nil {
		return notFoundOrInternal(c, err, "product")
	}

	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid product payload")
	}
	product.ID = id
	if err := product.Validate(); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	if err := catalogMirror.UpdateProduct(&product); err != nil {
		log.Printf("admin: failed to update product %s: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not update product")
	}
	return c.JSON(product)
}

// HandleAdminProductDelete removes a product. Its plans stay and fall back
// to placeholder product info until they are cleaned up or reassigned.
func HandleAdminProductDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := repos.Product.GetByID(id); err != nil {
		return notFoundOrInternal(c, err, "product")
	}

	if err := catalogMirror.DeleteProduct(id); err != nil {
		log.Printf("admin: failed to delete product %s: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not delete product")
	}
	return c.JSON(fiber.Map{"message": "product deleted"})
}

// -- Coupons ------------------------------------------------------------

// HandleAdminCouponsIndex lists every coupon with its usage counts.
func HandleAdminCouponsIndex(c *fiber.Ctx) error {
	coupons, err := repos.Coupon.GetActive()
	if err != nil {
		log.Printf("admin: failed to load coupons: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load coupons")
	}
	return c.JSON(coupons)
}

// HandleAdminCouponCreate adds a coupon. Codes are unique; a duplicate
// comes back as a conflict.
func HandleAdminCouponCreate(c *fiber.Ctx) error {
	var coupon models.Coupon
	if err := c.BodyParser(&coupon); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid coupon payload")
	}
	if coupon.ID == "" {
		coupon.ID = uuid.NewString()
	}
	if coupon.ValidFrom.IsZero() {
		coupon.ValidFrom = time.Now()
	}
	if err := coupon.Validate(); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	if existing, err := repos.Coupon.GetByCode(coupon.Code); err == nil && existing != nil {
		return jsonError(c, fiber.StatusConflict, "code_taken", "a coupon with this code already exists")
	}

	if err := repos.Coupon.Create(&coupon); err != nil {
		log.Printf("admin: failed to create coupon %s: %v", coupon.Code, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not create coupon")
	}
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

// HandleAdminCouponUpdate replaces a coupon's fields. CurrentUses is kept
// from the stored row so edits cannot reset redemption counts.
func HandleAdminCouponUpdate(c *fiber.Ctx) error {
	id := c.Params("id")
	stored, err := repos.Coupon.GetByID(id)
	if err != nil {
		return notFoundOrInternal(c, err, "coupon")
	}

	var coupon models.Coupon
	if err := c.BodyParser(&coupon); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid coupon payload")
	}
	coupon.ID = id
	coupon.CurrentUses = stored.CurrentUses
	if err := coupon.Validate(); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	if err := repos.Coupon.Update(&coupon); err != nil {
		log.Printf("admin: failed to update coupon %s: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not update coupon")
	}
	return c.JSON(coupon)
}

// HandleAdminCouponDelete removes a coupon. Orders that already used it
// keep their coupon id for bookkeeping.
func HandleAdminCouponDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := repos.Coupon.GetByID(id); err != nil {
		return notFoundOrInternal(c, err, "coupon")
	}

	if err := repos.Coupon.Delete(id); err != nil {
		log.Printf("admin: failed to delete coupon %s: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not delete coupon")
	}
	return c.JSON(fiber.Map{"message": "coupon deleted"})
}

// -- Orders -------------------------------------------------------------

// HandleAdminOrdersIndex lists all orders, newest first, paginated with
// ?page= and ?limit=.
func HandleAdminOrdersIndex(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	orders, err := repos.Order.GetAll((page-1)*limit, limit)
	if err != nil {
		log.Printf("admin: failed to load orders: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load orders")
	}
	total, err := repos.Order.Count()
	if err != nil {
		log.Printf("admin: failed to count orders: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load orders")
	}

	return c.JSON(fiber.Map{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// HandleAdminOrderRefund marks a completed order refunded, along with its
// payment record. The money movement itself happens in the gateway
// dashboard; this records the outcome.
func HandleAdminOrderRefund(c *fiber.Ctx) error {
	id := c.Params("id")

	order, err := repos.Order.GetByID(id)
	if err != nil {
		return notFoundOrInternal(c, err, "order")
	}
	if order.Status != models.ORDER_STATUS_COMPLETED {
		return jsonError(c, fiber.StatusConflict, "conflict", "only completed orders can be refunded")
	}

	if err := repos.Order.SetStatus(id, models.ORDER_STATUS_REFUNDED); err != nil {
		log.Printf("admin: failed to refund order %s: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not refund order")
	}

	if pay, err := repos.Payment.GetByOrderID(id); err == nil {
		pay.Status = models.PAYMENT_STATUS_REFUNDED
		if err := repos.Payment.Update(pay); err != nil {
			log.Printf("admin: failed to update payment record for order %s: %v", id, err)
		}
	}

	admin := usercontext.GetUserContext(c)
	log.Printf("admin: order %s refunded by %s", id, admin.Email)

	return c.JSON(fiber.Map{"message": "order refunded"})
}

// -- Claiming instructions ----------------------------------------------

// HandleAdminClaimingInstructionUpsert creates or replaces the redemption
// steps for a plan.
func HandleAdminClaimingInstructionUpsert(c *fiber.Ctx) error {
	planID := c.Params("planId")
	if _, ok := catalogMirror.PlanByID(planID); !ok {
		return jsonError(c, fiber.StatusNotFound, "not_found", "plan not found")
	}

	var instruction models.ClaimingInstruction
	if err := c.BodyParser(&instruction); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid instruction payload")
	}
	instruction.PlanID = planID

	if err := repos.ClaimingInstruction.Upsert(&instruction); err != nil {
		log.Printf("admin: failed to save claiming instructions for plan %s: %v", planID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not save instructions")
	}
	return c.JSON(instruction)
}

// HandleAdminClaimingInstructionDelete removes a plan's redemption steps.
func HandleAdminClaimingInstructionDelete(c *fiber.Ctx) error {
	planID := c.Params("planId")
	if err := repos.ClaimingInstruction.Delete(planID); err != nil {
		log.Printf("admin: failed to delete claiming instructions for plan %s: %v", planID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not delete instructions")
	}
	return c.JSON(fiber.Map{"message": "instructions deleted"})
}

// -- Stats --------------------------------------------------------------

// HandleAdminStats returns the back office dashboard numbers: totals from
// the database plus the live checkout counters from Redis.
func HandleAdminStats(c *fiber.Ctx) error {
	users, err := repos.User.Count()
	if err != nil {
		log.Printf("admin: failed to count users: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load stats")
	}
	orders, err := repos.Order.Count()
	if err != nil {
		log.Printf("admin: failed to count orders: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load stats")
	}

	revenueTotal, err := repos.Order.SumCompletedAmount(time.Unix(0, 0))
	if err != nil {
		log.Printf("admin: failed to sum revenue: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load stats")
	}
	revenue30d, err := repos.Order.SumCompletedAmount(time.Now().AddDate(0, 0, -30))
	if err != nil {
		log.Printf("admin: failed to sum recent revenue: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "could not load stats")
	}

	started, completed := counter.CheckoutCounters()

	return c.JSON(fiber.Map{
		"users":               users,
		"orders":              orders,
		"revenue_total":       revenueTotal,
		"revenue_30d":         revenue30d,
		"checkouts_started":   started,
		"checkouts_completed": completed,
	})
}
