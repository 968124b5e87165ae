package webhooks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/thumbworks/freshbot/app/models"
	"github.com/thumbworks/freshbot/app/repository"
	"github.com/thumbworks/freshbot/internal/pkg/freshbooks"
	"github.com/thumbworks/freshbot/internal/pkg/slack"
)

// FreshbooksAPI is the slice of the provider client the webhook package
// needs. *freshbooks.Client satisfies it.
type FreshbooksAPI interface {
	ConfirmWebhook(ctx context.Context, accessToken, accountID string, objectID int, verifier string) error
	FetchInvoice(ctx context.Context, accountID string, invoiceID int, accessToken string) (*freshbooks.InvoiceContent, error)
	FetchPayment(ctx context.Context, accountID string, paymentID int, accessToken string) (*freshbooks.PaymentContent, error)
	FetchClient(ctx context.Context, accountID string, clientID int, accessToken string) (*freshbooks.ClientContent, error)
	FetchWebhooks(ctx context.Context, accountID, accessToken string) (*freshbooks.WebhookCallbacksResult, error)
	CreateWebhook(ctx context.Context, accountID, accessToken string, event freshbooks.EventType, callbackURI string) (*freshbooks.NewCallback, error)
	DeleteWebhook(ctx context.Context, accountID, accessToken string, webhookID int) error
}

// Notifier delivers formatted messages to the chat channel.
type Notifier interface {
	Send(ctx context.Context, msg slack.Message) error
}

// Outcome says what an accepted payload turned out to be.
type Outcome int

const (
	// OutcomeConfirmed means the payload was a verification handshake and we
	// answered it.
	OutcomeConfirmed Outcome = iota + 1
	// OutcomeDelivered means the payload was a triggered event and its
	// notification went out.
	OutcomeDelivered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

var validate = validator.New()

// Router decides what an inbound webhook payload is and acts on it. A
// payload with a verifier is the provider's handshake and gets confirmed;
// everything else is a triggered event that is fetched, formatted and sent
// to the notifier.
type Router struct {
	api      FreshbooksAPI
	notifier Notifier
	resolver *Resolver
	webhooks repository.WebhookRepository
	users    repository.UserRepository
}

// NewRouter wires a router over its collaborators.
func NewRouter(api FreshbooksAPI, notifier Notifier, resolver *Resolver, webhooks repository.WebhookRepository, users repository.UserRepository) *Router {
	return &Router{
		api:      api,
		notifier: notifier,
		resolver: resolver,
		webhooks: webhooks,
		users:    users,
	}
}

// HandleIncoming routes one decoded payload. The returned outcome is only
// meaningful when err is nil.
func (r *Router) HandleIncoming(ctx context.Context, payload freshbooks.WebhookTriggeredContent) (Outcome, error) {
	if err := validate.Struct(payload); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if payload.IsVerification() {
		if err := r.confirmRegistration(ctx, payload); err != nil {
			return 0, err
		}
		return OutcomeConfirmed, nil
	}

	if err := r.deliverEvent(ctx, payload); err != nil {
		return 0, err
	}
	return OutcomeDelivered, nil
}

// confirmRegistration answers the provider's verification handshake. The
// callback id in the payload must match a registration we created, and the
// confirming call runs with the registering user's token.
func (r *Router) confirmRegistration(ctx context.Context, payload freshbooks.WebhookTriggeredContent) error {
	record, err := r.webhooks.GetByWebhookID(payload.ObjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: callback %d", ErrWebhookNotFound, payload.ObjectID)
		}
		return err
	}

	owner, err := r.users.GetByID(record.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: callback %d, user %d", ErrOrphanedWebhook, payload.ObjectID, record.UserID)
		}
		return err
	}
	if strings.TrimSpace(owner.AccessToken) == "" {
		return fmt.Errorf("%w: user %d", ErrNoAccessToken, owner.ID)
	}

	if err := r.api.ConfirmWebhook(ctx, owner.AccessToken, payload.AccountID, payload.ObjectID, payload.Verifier); err != nil {
		return fmt.Errorf("confirming callback %d: %w", payload.ObjectID, err)
	}

	log.Infof("[Webhook] Confirmed callback %d for account %s", payload.ObjectID, payload.AccountID)
	return nil
}

// deliverEvent fetches the full object behind a triggered event, formats the
// notification and sends it. Dispatch is a single switch over the event enum
// so adding an event type cannot be half-done.
func (r *Router) deliverEvent(ctx context.Context, payload freshbooks.WebhookTriggeredContent) error {
	eventType, ok := freshbooks.ParseEventType(payload.Name)
	if !ok {
		return &UnknownEventTypeError{Name: payload.Name}
	}

	owner, err := r.resolver.ResolveOwner(payload.AccountID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(owner.AccessToken) == "" {
		return fmt.Errorf("%w: user %d", ErrNoAccessToken, owner.ID)
	}

	var msg slack.Message
	switch eventType {
	case freshbooks.EventInvoiceCreate:
		msg, err = r.invoiceMessage(ctx, payload, owner)
	case freshbooks.EventPaymentCreate:
		msg, err = r.paymentMessage(ctx, payload, owner)
	case freshbooks.EventClientCreate:
		msg, err = r.clientMessage(ctx, payload, owner)
	default:
		return &UnknownEventTypeError{Name: payload.Name}
	}
	if err != nil {
		return err
	}

	if err := r.notifier.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending notification for %s %d: %w", eventType, payload.ObjectID, err)
	}

	log.Infof("[Webhook] Delivered %s notification for object %d", eventType, payload.ObjectID)
	return nil
}

func (r *Router) invoiceMessage(ctx context.Context, payload freshbooks.WebhookTriggeredContent, owner *models.User) (slack.Message, error) {
	invoice, err := r.api.FetchInvoice(ctx, payload.AccountID, payload.ObjectID, owner.AccessToken)
	if err != nil {
		return slack.Message{}, fmt.Errorf("fetching invoice %d: %w", payload.ObjectID, err)
	}

	msg := slack.Message{
		Text: fmt.Sprintf("New invoice created to %s, for %s %s",
			invoice.CurrentOrganization, invoice.Amount.Amount, invoice.Amount.Code),
	}
	if emoji, ok := slack.EmojiForOrganization(invoice.CurrentOrganization); ok {
		msg.IconEmoji = string(emoji)
	}
	return msg, nil
}

func (r *Router) paymentMessage(ctx context.Context, payload freshbooks.WebhookTriggeredContent, owner *models.User) (slack.Message, error) {
	payment, err := r.api.FetchPayment(ctx, payload.AccountID, payload.ObjectID, owner.AccessToken)
	if err != nil {
		return slack.Message{}, fmt.Errorf("fetching payment %d: %w", payload.ObjectID, err)
	}

	return slack.Message{
		Text: fmt.Sprintf("New payment received: %s %s", payment.Amount.Amount, payment.Amount.Code),
	}, nil
}

func (r *Router) clientMessage(ctx context.Context, payload freshbooks.WebhookTriggeredContent, owner *models.User) (slack.Message, error) {
	client, err := r.api.FetchClient(ctx, payload.AccountID, payload.ObjectID, owner.AccessToken)
	if err != nil {
		return slack.Message{}, fmt.Errorf("fetching client %d: %w", payload.ObjectID, err)
	}

	msg := slack.Message{
		Text: fmt.Sprintf("New client created: %s", client.Organization),
	}
	if emoji, ok := slack.EmojiForOrganization(client.Organization); ok {
		msg.IconEmoji = string(emoji)
	}
	return msg, nil
}
