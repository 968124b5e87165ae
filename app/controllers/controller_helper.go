package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/thumbworks/freshbot/app/models"
	"github.com/thumbworks/freshbot/app/repository"
	"github.com/thumbworks/freshbot/internal/pkg/usercontext"
)

func isLoggedIn(c *fiber.Ctx) bool {
	var fromProtected bool
	if protectedValue := c.Locals(FROM_PROTECTED); protectedValue != nil {
		fromProtected = protectedValue.(bool)
	}

	return fromProtected
}

// ExtractUsername gets the username from Locals (set by middleware)
func ExtractUsername(c *fiber.Ctx) string {
	// Get from Locals (set by authentication middleware)
	if userNameValue := c.Locals(USER_NAME); userNameValue != nil {
		if userName, ok := userNameValue.(string); ok {
			return userName
		}
	}

	return ""
}

// currentUser loads the logged-in user's record, or nil when anonymous.
func currentUser(c *fiber.Ctx) *models.User {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return nil
	}
	user, err := repository.GetGlobalRepositories().User.GetByID(userCtx.UserID)
	if err != nil {
		return nil
	}
	return user
}
