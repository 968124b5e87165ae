package webhooks

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPayload marks an inbound payload that failed validation.
	// Receivers answer these with a client error, never a retryable one.
	ErrMalformedPayload = errors.New("webhook payload is malformed")

	// ErrWebhookNotFound means a verification arrived for a callback id we
	// never registered.
	ErrWebhookNotFound = errors.New("no webhook registered for callback id")

	// ErrOrphanedWebhook means a registration record exists but no usable
	// user stands behind it.
	ErrOrphanedWebhook = errors.New("webhook has no owning user")

	// ErrBusinessNotFound means no stored business matches the payload's
	// account id.
	ErrBusinessNotFound = errors.New("no business known for account id")

	// ErrNoAccountID means no logged-in user has brought an account id yet.
	ErrNoAccountID = errors.New("no business with an account id available")

	// ErrNoAccessToken means the resolved owner has no stored token to call
	// the provider with.
	ErrNoAccessToken = errors.New("owner has no access token")
)

// UnknownEventTypeError is returned for event names the bot does not handle.
// FreshBooks sends many more event types than we subscribe to; receivers ack
// these so the provider does not retry them.
type UnknownEventTypeError struct {
	Name string
}

func (e *UnknownEventTypeError) Error() string {
	return fmt.Sprintf("unhandled webhook event type %q", e.Name)
}
