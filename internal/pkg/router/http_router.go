package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/thumbworks/freshbot/app/controllers"
	"github.com/thumbworks/freshbot/app/repository"
	"github.com/thumbworks/freshbot/internal/pkg/freshbooks"
	"github.com/thumbworks/freshbot/internal/pkg/jobqueue"
	"github.com/thumbworks/freshbot/internal/pkg/middleware"
	"github.com/thumbworks/freshbot/internal/pkg/session"
	"github.com/thumbworks/freshbot/internal/pkg/slack"
	"github.com/thumbworks/freshbot/internal/pkg/webhooks"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Wire the provider client, notifier and webhook machinery
	client := freshbooks.NewClientFromEnv()
	notifier := slack.NewClientFromEnv()
	repos := repository.GetGlobalRepositories()

	resolver := webhooks.NewResolver(repos.Business)
	whRouter := webhooks.NewRouter(client, notifier, resolver, repos.Webhook, repos.User)
	lifecycle := webhooks.NewLifecycle(client, repos.Webhook, jobqueue.GetManager().GetQueue())

	// Job processors call the provider through the same client
	jobqueue.SetProviderAPI(client)

	controllers.InitializeAuthController(client)
	controllers.InitializeWebhookController(whRouter, lifecycle, resolver)

	h.registerPublicRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func loggedInMiddleware(c *fiber.Ctx) error {
	// UserContextMiddleware already set all user context
	// This middleware now just passes through - no additional logic needed
	// All user information is available via usercontext.GetUserContext(c)
	return c.Next()
}

// Auth middlewares live in internal/pkg/middleware/auth.go
