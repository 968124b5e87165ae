package controllers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/thumbworks/freshbot/app/models"
	"github.com/thumbworks/freshbot/app/repository"
	"github.com/thumbworks/freshbot/internal/pkg/freshbooks"
	"github.com/thumbworks/freshbot/internal/pkg/session"
)

const (
	AUTH_KEY       string = "authenticated"
	USER_ID        string = "user_id"
	USER_NAME      string = "username"
	FROM_PROTECTED string = "from_protected"
)

const oauthStateSessionKey = "freshbooks_oauth_state"

var authClient *freshbooks.Client

// InitializeAuthController wires the provider client used by the login flow.
func InitializeAuthController(client *freshbooks.Client) {
	authClient = client
}

// HandleFreshbooksLogin starts the OAuth flow by sending the browser to the
// provider's authorize page with a fresh state nonce.
func HandleFreshbooksLogin(c *fiber.Ctx) error {
	state, err := generateOAuthState(24)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "could not create OAuth state",
		})
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "could not load session",
		})
	}
	sess.Set(oauthStateSessionKey, state)
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "could not save session",
		})
	}

	url, err := authClient.AuthorizeURLWithState(state)
	if err != nil {
		log.Errorf("[Auth] OAuth misconfigured: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "OAuth is not configured",
		})
	}

	return c.Redirect(url, fiber.StatusSeeOther)
}

// HandleFreshbooksCallback finishes the OAuth flow: verifies state, trades
// the code for a token, loads the identity and stores the whole membership
// graph. The session ends up holding only the local user id.
func HandleFreshbooksCallback(c *fiber.Ctx) error {
	if oauthErr := strings.TrimSpace(c.Query("error")); oauthErr != "" {
		msg := c.Query("error_description", oauthErr)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "oauth_failed",
			"message": msg,
		})
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "could not load session",
		})
	}
	expectedState, _ := sess.Get(oauthStateSessionKey).(string)
	gotState := strings.TrimSpace(c.Query("state"))
	sess.Delete(oauthStateSessionKey)
	_ = sess.Save()
	if expectedState == "" || gotState == "" || expectedState != gotState {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "bad_request",
			"message": "OAuth state mismatch",
		})
	}

	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "bad_request",
			"message": "OAuth code is missing",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	token, err := authClient.ExchangeCode(ctx, code)
	if err != nil {
		log.Errorf("[Auth] Token exchange failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "oauth_failed",
			"message": "token exchange failed",
		})
	}

	profile, err := authClient.FetchCurrentUser(ctx, token.AccessToken)
	if err != nil {
		log.Errorf("[Auth] Identity fetch failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "oauth_failed",
			"message": "could not load FreshBooks identity",
		})
	}

	user, err := reconcileLogin(repository.GetGlobalRepositories(), profile, token.AccessToken)
	if err != nil {
		log.Errorf("[Auth] Login reconciliation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "could not store FreshBooks identity",
		})
	}

	sess.Set(AUTH_KEY, true)
	sess.Set(USER_ID, user.ID)
	sess.Set(USER_NAME, user.DisplayName())
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": fmt.Sprintf("could not save session: %s", err),
		})
	}

	log.Infof("[Auth] User %d (%s) logged in", user.ID, user.DisplayName())
	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleAuthLogout destroys the session.
func HandleAuthLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	if err := sess.Destroy(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": fmt.Sprintf("could not destroy session: %s", err),
		})
	}

	c.Locals(FROM_PROTECTED, false)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// reconcileLogin upserts the user, their businesses and memberships from the
// provider profile. A profile with no business memberships is rejected; a
// user without a business cannot receive webhooks.
func reconcileLogin(repos *repository.Repositories, profile *freshbooks.UserProfile, accessToken string) (*models.User, error) {
	if len(profile.BusinessMemberships) == 0 {
		return nil, fmt.Errorf("profile %d has no business memberships", profile.ID)
	}

	user, err := repos.User.GetByFreshbooksID(profile.ID)
	if err != nil {
		user = &models.User{FreshbooksID: profile.ID}
	}
	user.FirstName = profile.FirstName
	user.LastName = profile.LastName
	user.AccessToken = accessToken

	if user.ID == 0 {
		if err := repos.User.Create(user); err != nil {
			return nil, fmt.Errorf("creating user %d: %w", profile.ID, err)
		}
	} else {
		if err := repos.User.Update(user); err != nil {
			return nil, fmt.Errorf("updating user %d: %w", user.ID, err)
		}
	}

	for _, membership := range profile.BusinessMemberships {
		business, err := repos.Business.GetByFreshbooksID(membership.Business.ID)
		if err != nil {
			business = &models.Business{FreshbooksID: membership.Business.ID}
		}
		business.Name = membership.Business.Name
		business.AccountID = membership.Business.AccountID

		if business.ID == 0 {
			if err := repos.Business.Create(business); err != nil {
				return nil, fmt.Errorf("creating business %d: %w", membership.Business.ID, err)
			}
		} else {
			if err := repos.Business.Update(business); err != nil {
				return nil, fmt.Errorf("updating business %d: %w", business.ID, err)
			}
		}

		record, err := repos.Membership.GetByFreshbooksID(membership.ID)
		if err != nil {
			record = &models.Membership{FreshbooksID: membership.ID}
		}
		record.Role = membership.Role
		record.UserID = user.ID
		record.BusinessID = business.ID

		if record.ID == 0 {
			if err := repos.Membership.Create(record); err != nil {
				return nil, fmt.Errorf("creating membership %d: %w", membership.ID, err)
			}
		} else {
			if err := repos.Membership.Update(record); err != nil {
				return nil, fmt.Errorf("updating membership %d: %w", record.ID, err)
			}
		}
	}

	return user, nil
}

func generateOAuthState(size int) (string, error) {
	if size < 16 {
		size = 16
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
