package router

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/onlypremiums/onlypremiums/app/controllers"
	"github.com/onlypremiums/onlypremiums/app/repository"
	"github.com/onlypremiums/onlypremiums/internal/pkg/middleware"
	"github.com/onlypremiums/onlypremiums/internal/pkg/payment"
	"github.com/onlypremiums/onlypremiums/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Wire the controller services against the global repositories and the
	// payment gateway
	controllers.InitializeControllers(repository.GetGlobalRepositories(), payment.NewRazorpayClientFromEnv())

	// Warm the catalog snapshot so the first request does not hit cold state
	mirror := controllers.GetCatalogMirror()
	if err := mirror.RefreshPlans(); err != nil {
		log.Printf("router: failed to warm plan catalog: %v", err)
	}
	if err := mirror.RefreshProducts(); err != nil {
		log.Printf("router: failed to warm product catalog: %v", err)
	}
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
