package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/thumbworks/freshbot/internal/pkg/env"
)

// HandleHome reports login state and points at the interesting endpoints.
func HandleHome(c *fiber.Ctx) error {
	appENV := env.GetEnv("APP_ENV", "prod")
	isDEV := appENV == "dev"

	return c.JSON(fiber.Map{
		"app":       "freshbot",
		"dev":       isDEV,
		"logged_in": isLoggedIn(c),
		"username":  ExtractUsername(c),
		"login_url": "/freshbooks/login",
	})
}
