package webhooks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/thumbworks/freshbot/app/models"
	"github.com/thumbworks/freshbot/app/repository"
	"github.com/thumbworks/freshbot/internal/pkg/freshbooks"
	"github.com/thumbworks/freshbot/internal/pkg/jobqueue"
)

// Enqueuer matches the job queue's enqueue method.
type Enqueuer interface {
	EnqueueJob(jobType jobqueue.JobType, payload map[string]interface{}) (*jobqueue.Job, error)
}

// Lifecycle manages callback subscriptions end to end: fanning out
// registrations through the job queue, listing what the provider holds, and
// tearing subscriptions down remotely and locally.
type Lifecycle struct {
	api      FreshbooksAPI
	webhooks repository.WebhookRepository
	jobs     Enqueuer
}

// NewLifecycle wires a lifecycle over its collaborators.
func NewLifecycle(api FreshbooksAPI, webhooks repository.WebhookRepository, jobs Enqueuer) *Lifecycle {
	return &Lifecycle{
		api:      api,
		webhooks: webhooks,
		jobs:     jobs,
	}
}

// RegisterAll enqueues one registration job per handled event type. The
// provider verifies each subscription asynchronously, so registration is
// queue work rather than an inline provider call.
func (l *Lifecycle) RegisterAll(userID uint, accountID, callbackURI string) (int, error) {
	if strings.TrimSpace(accountID) == "" {
		return 0, ErrNoAccountID
	}
	if strings.TrimSpace(callbackURI) == "" {
		return 0, errors.New("callback URI is required")
	}

	enqueued := 0
	for _, event := range freshbooks.SupportedEventTypes() {
		payload := jobqueue.RegisterWebhookJobPayload{
			UserID:      userID,
			AccountID:   accountID,
			Event:       string(event),
			CallbackURI: callbackURI,
		}
		if _, err := l.jobs.EnqueueJob(jobqueue.JobTypeRegisterWebhook, payload.ToMap()); err != nil {
			return enqueued, fmt.Errorf("enqueuing %s registration: %w", event, err)
		}
		enqueued++
	}

	log.Infof("[Webhook] Enqueued %d registrations for account %s", enqueued, accountID)
	return enqueued, nil
}

// List returns the provider's view of the account's subscriptions.
func (l *Lifecycle) List(ctx context.Context, user *models.User, accountID string) (*freshbooks.WebhookCallbacksResult, error) {
	if strings.TrimSpace(user.AccessToken) == "" {
		return nil, fmt.Errorf("%w: user %d", ErrNoAccessToken, user.ID)
	}
	return l.api.FetchWebhooks(ctx, accountID, user.AccessToken)
}

// Delete removes a subscription remotely and then drops the local record.
// A missing local record after a successful remote delete is logged and
// swallowed; the subscription is gone either way.
func (l *Lifecycle) Delete(ctx context.Context, user *models.User, accountID string, webhookID int) error {
	if strings.TrimSpace(user.AccessToken) == "" {
		return fmt.Errorf("%w: user %d", ErrNoAccessToken, user.ID)
	}

	if err := l.api.DeleteWebhook(ctx, accountID, user.AccessToken, webhookID); err != nil {
		return fmt.Errorf("deleting callback %d: %w", webhookID, err)
	}

	if err := l.webhooks.DeleteByWebhookID(webhookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Webhook] No local record for deleted callback %d", webhookID)
			return nil
		}
		return err
	}

	log.Infof("[Webhook] Deleted callback %d for account %s", webhookID, accountID)
	return nil
}
