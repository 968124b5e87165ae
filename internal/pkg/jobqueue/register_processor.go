package jobqueue

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/thumbworks/freshbot/app/models"
	"github.com/thumbworks/freshbot/app/repository"
	"github.com/thumbworks/freshbot/internal/pkg/freshbooks"
)

// processRegisterWebhookJob registers one callback subscription with the
// provider and records the returned callback id locally.
func (q *Queue) processRegisterWebhookJob(ctx context.Context, job *Job) error {
	payload, err := RegisterWebhookJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid register_webhook payload: %w", err)
	}

	api, err := getProviderAPI()
	if err != nil {
		return err
	}

	repos := repository.GetGlobalRepositories()
	return runRegisterWebhook(ctx, api, repos.User, repos.Webhook, payload)
}

// runRegisterWebhook is the processor body, split out so tests can drive it
// with fakes.
func runRegisterWebhook(ctx context.Context, api ProviderAPI, users repository.UserRepository, webhooks repository.WebhookRepository, payload *RegisterWebhookJobPayload) error {
	user, err := users.GetByID(payload.UserID)
	if err != nil {
		return fmt.Errorf("loading user %d: %w", payload.UserID, err)
	}
	if strings.TrimSpace(user.AccessToken) == "" {
		return fmt.Errorf("user %d has no access token", user.ID)
	}

	callback, err := api.CreateWebhook(ctx, payload.AccountID, user.AccessToken, freshbooks.EventType(payload.Event), payload.CallbackURI)
	if err != nil {
		return fmt.Errorf("registering %s callback: %w", payload.Event, err)
	}

	record := &models.Webhook{
		WebhookID: callback.CallbackID,
		UserID:    payload.UserID,
	}
	if err := webhooks.Create(record); err != nil {
		return fmt.Errorf("recording callback %d: %w", callback.CallbackID, err)
	}

	log.Infof("[JobQueue] Registered %s callback %d for account %s", payload.Event, callback.CallbackID, payload.AccountID)
	return nil
}
