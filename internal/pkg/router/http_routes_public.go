package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/thumbworks/freshbot/app/controllers"
	"github.com/thumbworks/freshbot/internal/pkg/constants"
	"github.com/thumbworks/freshbot/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get(constants.PublicRoute, loggedInMiddleware, controllers.HandleHome)

	// OAuth login flow
	app.Get(constants.LoginRoute, controllers.HandleFreshbooksLogin)
	app.Get(constants.AuthCallbackRoute, controllers.HandleFreshbooksCallback)
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Provider callbacks (no auth; the provider is the caller)
	app.Post(constants.WebhookReadyRoute, controllers.HandleWebhookReady)

	// Webhook management
	app.Get("/webhooks", middleware.RequireAuth, controllers.HandleWebhookList)
	app.Post("/webhooks/new", middleware.RequireAuth, controllers.HandleWebhookNew)
	app.Get("/webhooks/delete", middleware.RequireAuth, controllers.HandleWebhookDelete)

	// Invoice cache
	app.Post("/invoices/sync", middleware.RequireAuth, controllers.HandleInvoiceSync)
	app.Get("/invoices", middleware.RequireAuth, controllers.HandleInvoiceList)
}
