package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/onlypremiums/onlypremiums/app/repository"
	"github.com/onlypremiums/onlypremiums/internal/pkg/cart"
	"github.com/onlypremiums/onlypremiums/internal/pkg/catalog"
	"github.com/onlypremiums/onlypremiums/internal/pkg/checkout"
	"github.com/onlypremiums/onlypremiums/internal/pkg/coupon"
	"github.com/onlypremiums/onlypremiums/internal/pkg/mail"
	"github.com/onlypremiums/onlypremiums/internal/pkg/payment"
	"github.com/onlypremiums/onlypremiums/internal/pkg/planimages"
)

// Shared service instances wired once at router install time.
var (
	repos           *repository.Repositories
	catalogMirror   *catalog.Mirror
	cartService     *cart.Service
	couponEvaluator *coupon.Evaluator
	orchestrator    *checkout.Orchestrator
	planImageClient *planimages.Client
)

// InitializeControllers wires the controllers' shared services against the
// global repositories and the payment gateway.
func InitializeControllers(r *repository.Repositories, gateway payment.Gateway) {
	repos = r
	catalogMirror = catalog.NewMirror(r.Plan, r.Product)
	cartService = cart.NewService(r.Cart, r.Plan)
	couponEvaluator = coupon.NewEvaluator(r.Coupon)
	orchestrator = checkout.NewOrchestrator(r.Order, r.Payment, r.Coupon, r.User, cartService, gateway)
	orchestrator.SendMail = mail.SendMail

	if cfg, err := planimages.LoadConfig(); err != nil {
		log.Printf("plan image storage misconfigured: %v", err)
	} else if cfg.IsEnabled() {
		client, err := planimages.NewClient(cfg)
		if err != nil {
			log.Printf("plan image storage unavailable: %v", err)
		} else {
			planImageClient = client
		}
	}
}

// GetCatalogMirror exposes the mirror for startup warm-up.
func GetCatalogMirror() *catalog.Mirror {
	return catalogMirror
}

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

// notFoundOrInternal maps gorm.ErrRecordNotFound to 404 and everything else
// to a generic 500.
func notFoundOrInternal(c *fiber.Ctx, err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusNotFound, "not_found", what+" not found")
	}
	return jsonError(c, fiber.StatusInternalServerError, "internal_error", "something went wrong")
}
