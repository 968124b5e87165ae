package controllers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/thumbworks/freshbot/internal/pkg/env"
	"github.com/thumbworks/freshbot/internal/pkg/freshbooks"
	metrics "github.com/thumbworks/freshbot/internal/pkg/metrics/counter"
	"github.com/thumbworks/freshbot/internal/pkg/webhooks"
)

const webhookHandlerTimeout = 25 * time.Second

var (
	webhookRouter    *webhooks.Router
	webhookLifecycle *webhooks.Lifecycle
	webhookResolver  *webhooks.Resolver
)

// InitializeWebhookController wires the webhook router and lifecycle used by
// the webhook endpoints.
func InitializeWebhookController(router *webhooks.Router, lifecycle *webhooks.Lifecycle, resolver *webhooks.Resolver) {
	webhookRouter = router
	webhookLifecycle = lifecycle
	webhookResolver = resolver
}

// HandleWebhookReady receives every provider callback: verification
// handshakes and triggered events alike. The provider retries anything that
// is not a 2xx, so only payloads we can never act on are acked with errors.
func HandleWebhookReady(c *fiber.Ctx) error {
	var payload freshbooks.WebhookTriggeredContent
	if err := c.BodyParser(&payload); err != nil {
		log.Warnf("[Webhook] Undecodable payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "bad_request",
			"message": "undecodable webhook payload",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookHandlerTimeout)
	defer cancel()

	outcome, err := webhookRouter.HandleIncoming(ctx, payload)
	if err != nil {
		var unknownErr *webhooks.UnknownEventTypeError
		switch {
		case errors.Is(err, webhooks.ErrMalformedPayload):
			log.Warnf("[Webhook] Malformed payload: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "bad_request",
				"message": err.Error(),
			})
		case errors.As(err, &unknownErr):
			// Acked so the provider stops retrying an event we will never handle.
			log.Infof("[Webhook] Ignoring unhandled event type %q", unknownErr.Name)
			return c.SendString("ok")
		default:
			if cerr := metrics.AddFailed(eventLabel(payload)); cerr != nil {
				log.Errorf("[Webhook] Counter update failed: %v", cerr)
			}
			log.Errorf("[Webhook] Handling failed: %v", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":   "bad_gateway",
				"message": "webhook handling failed",
			})
		}
	}

	var cerr error
	switch outcome {
	case webhooks.OutcomeConfirmed:
		cerr = metrics.AddConfirmed()
	case webhooks.OutcomeDelivered:
		cerr = metrics.AddDelivered(payload.Name)
	}
	if cerr != nil {
		log.Errorf("[Webhook] Counter update failed: %v", cerr)
	}

	return c.SendString("ok")
}

// HandleWebhookList shows the provider's registered callbacks for the
// logged-in user's account.
func HandleWebhookList(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}

	accountID, err := webhookResolver.ResolveAccountID()
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "no_account",
			"message": err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookHandlerTimeout)
	defer cancel()

	result, err := webhookLifecycle.List(ctx, user, accountID)
	if err != nil {
		log.Errorf("[Webhook] Listing callbacks failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "bad_gateway",
			"message": "could not list callbacks",
		})
	}

	return c.JSON(fiber.Map{
		"account_id": accountID,
		"callbacks":  result.Callbacks,
		"page":       result.Page,
		"pages":      result.Pages,
	})
}

// HandleWebhookNew enqueues registration of all handled event types.
func HandleWebhookNew(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}

	accountID, err := webhookResolver.ResolveAccountID()
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "no_account",
			"message": err.Error(),
		})
	}

	callbackURI := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/") + "/webhooks/ready"
	enqueued, err := webhookLifecycle.RegisterAll(user.ID, accountID, callbackURI)
	if err != nil {
		log.Errorf("[Webhook] Registration enqueue failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "could not enqueue registrations",
		})
	}

	return c.JSON(fiber.Map{
		"enqueued":   enqueued,
		"account_id": accountID,
	})
}

// HandleWebhookDelete removes one callback subscription remotely and locally.
func HandleWebhookDelete(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}

	webhookID, err := strconv.Atoi(c.Query("id"))
	if err != nil || webhookID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "bad_request",
			"message": "id query parameter must be a positive integer",
		})
	}

	accountID, err := webhookResolver.ResolveAccountID()
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "no_account",
			"message": err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookHandlerTimeout)
	defer cancel()

	if err := webhookLifecycle.Delete(ctx, user, accountID, webhookID); err != nil {
		log.Errorf("[Webhook] Deleting callback %d failed: %v", webhookID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "bad_gateway",
			"message": "could not delete callback",
		})
	}

	return c.JSON(fiber.Map{"deleted": webhookID})
}

func eventLabel(payload freshbooks.WebhookTriggeredContent) string {
	if payload.IsVerification() {
		return "verification"
	}
	if payload.Name != "" {
		return payload.Name
	}
	return "unknown"
}
