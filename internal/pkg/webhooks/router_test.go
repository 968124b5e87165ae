package webhooks

import (
	"context"
	"errors"
	"testing"

	"github.com/thumbworks/freshbot/app/models"
	"github.com/thumbworks/freshbot/internal/pkg/freshbooks"
)

func newTestRouter(api *fakeAPI, notifier *fakeNotifier, businesses *fakeBusinessRepo, webhookRepo *fakeWebhookRepo, users *fakeUserRepo) *Router {
	if businesses == nil {
		businesses = &fakeBusinessRepo{}
	}
	if webhookRepo == nil {
		webhookRepo = newFakeWebhookRepo()
	}
	if users == nil {
		users = newFakeUserRepo()
	}
	return NewRouter(api, notifier, NewResolver(businesses), webhookRepo, users)
}

func ownedBusiness(accountID string, owner *models.User) *fakeBusinessRepo {
	return &fakeBusinessRepo{
		byAccountID: map[string]*models.Business{
			accountID: {
				ID:           1,
				FreshbooksID: 77,
				Name:         "Thumbworks",
				AccountID:    &accountID,
				Memberships: []models.Membership{
					{ID: 1, Role: "owner", UserID: owner.ID, User: owner},
				},
			},
		},
	}
}

func TestHandleIncomingMalformedPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload freshbooks.WebhookTriggeredContent
	}{
		{"missing account id", freshbooks.WebhookTriggeredContent{Name: "invoice.create", ObjectID: 5}},
		{"missing object id", freshbooks.WebhookTriggeredContent{Name: "invoice.create", AccountID: "Xad7"}},
		{"missing name without verifier", freshbooks.WebhookTriggeredContent{ObjectID: 5, AccountID: "Xad7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeAPI{}, &fakeNotifier{}, nil, nil, nil)
			_, err := router.HandleIncoming(context.Background(), tt.payload)
			if !errors.Is(err, ErrMalformedPayload) {
				t.Fatalf("expected ErrMalformedPayload, got %v", err)
			}
		})
	}
}

func TestHandleIncomingVerificationUnknownCallback(t *testing.T) {
	api := &fakeAPI{}
	router := newTestRouter(api, &fakeNotifier{}, nil, newFakeWebhookRepo(), nil)

	payload := freshbooks.WebhookTriggeredContent{
		ObjectID:  42,
		AccountID: "Xad7",
		Verifier:  "abc123",
	}
	_, err := router.HandleIncoming(context.Background(), payload)
	if !errors.Is(err, ErrWebhookNotFound) {
		t.Fatalf("expected ErrWebhookNotFound, got %v", err)
	}
}

func TestHandleIncomingVerificationOrphanedRecord(t *testing.T) {
	webhookRepo := newFakeWebhookRepo(&models.Webhook{WebhookID: 42, UserID: 9})
	router := newTestRouter(&fakeAPI{}, &fakeNotifier{}, nil, webhookRepo, newFakeUserRepo())

	payload := freshbooks.WebhookTriggeredContent{
		ObjectID:  42,
		AccountID: "Xad7",
		Verifier:  "abc123",
	}
	_, err := router.HandleIncoming(context.Background(), payload)
	if !errors.Is(err, ErrOrphanedWebhook) {
		t.Fatalf("expected ErrOrphanedWebhook, got %v", err)
	}
}

func TestHandleIncomingVerificationConfirms(t *testing.T) {
	owner := &models.User{ID: 9, AccessToken: "tok-1"}
	webhookRepo := newFakeWebhookRepo(&models.Webhook{WebhookID: 42, UserID: 9})

	var gotToken, gotAccount, gotVerifier string
	var gotObject int
	api := &fakeAPI{
		confirmFn: func(_ context.Context, accessToken, accountID string, objectID int, verifier string) error {
			gotToken, gotAccount, gotObject, gotVerifier = accessToken, accountID, objectID, verifier
			return nil
		},
	}
	router := newTestRouter(api, &fakeNotifier{}, nil, webhookRepo, newFakeUserRepo(owner))

	payload := freshbooks.WebhookTriggeredContent{
		ObjectID:  42,
		AccountID: "Xad7",
		Verifier:  "abc123",
	}
	outcome, err := router.HandleIncoming(context.Background(), payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeConfirmed {
		t.Fatalf("expected OutcomeConfirmed, got %v", outcome)
	}
	if gotToken != "tok-1" || gotAccount != "Xad7" || gotObject != 42 || gotVerifier != "abc123" {
		t.Fatalf("confirm called with token=%q account=%q object=%d verifier=%q", gotToken, gotAccount, gotObject, gotVerifier)
	}
}

func TestHandleIncomingInvoiceCreate(t *testing.T) {
	owner := &models.User{ID: 9, AccessToken: "tok-1"}
	api := &fakeAPI{
		fetchInvoiceFn: func(_ context.Context, accountID string, invoiceID int, accessToken string) (*freshbooks.InvoiceContent, error) {
			if accountID != "Xad7" || invoiceID != 123 || accessToken != "tok-1" {
				t.Fatalf("fetch invoice called with account=%q id=%d token=%q", accountID, invoiceID, accessToken)
			}
			return &freshbooks.InvoiceContent{
				FreshbooksID:        123,
				CurrentOrganization: "Uber Technologies, Inc",
				Amount:              freshbooks.Amount{Amount: "123", Code: "USD"},
			}, nil
		},
	}
	notifier := &fakeNotifier{}
	router := newTestRouter(api, notifier, ownedBusiness("Xad7", owner), nil, nil)

	payload := freshbooks.WebhookTriggeredContent{
		Name:      "invoice.create",
		ObjectID:  123,
		AccountID: "Xad7",
	}
	outcome, err := router.HandleIncoming(context.Background(), payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeDelivered {
		t.Fatalf("expected OutcomeDelivered, got %v", outcome)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	msg := notifier.sent[0]
	if msg.Text != "New invoice created to Uber Technologies, Inc, for 123 USD" {
		t.Errorf("unexpected message text: %q", msg.Text)
	}
	if msg.IconEmoji != ":uber:" {
		t.Errorf("unexpected icon emoji: %q", msg.IconEmoji)
	}
}

func TestHandleIncomingPaymentCreate(t *testing.T) {
	owner := &models.User{ID: 9, AccessToken: "tok-1"}
	api := &fakeAPI{
		fetchPaymentFn: func(_ context.Context, _ string, _ int, _ string) (*freshbooks.PaymentContent, error) {
			return &freshbooks.PaymentContent{
				FreshbooksID: 7,
				Amount:       freshbooks.Amount{Amount: "55.20", Code: "EUR"},
			}, nil
		},
	}
	notifier := &fakeNotifier{}
	router := newTestRouter(api, notifier, ownedBusiness("Xad7", owner), nil, nil)

	payload := freshbooks.WebhookTriggeredContent{
		Name:      "payment.create",
		ObjectID:  7,
		AccountID: "Xad7",
	}
	if _, err := router.HandleIncoming(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	if notifier.sent[0].Text != "New payment received: 55.20 EUR" {
		t.Errorf("unexpected message text: %q", notifier.sent[0].Text)
	}
	if notifier.sent[0].IconEmoji != "" {
		t.Errorf("payments carry no emoji, got %q", notifier.sent[0].IconEmoji)
	}
}

func TestHandleIncomingClientCreate(t *testing.T) {
	owner := &models.User{ID: 9, AccessToken: "tok-1"}
	api := &fakeAPI{
		fetchClientFn: func(_ context.Context, _ string, _ int, _ string) (*freshbooks.ClientContent, error) {
			return &freshbooks.ClientContent{FreshbooksID: 3, Organization: "Apple"}, nil
		},
	}
	notifier := &fakeNotifier{}
	router := newTestRouter(api, notifier, ownedBusiness("Xad7", owner), nil, nil)

	payload := freshbooks.WebhookTriggeredContent{
		Name:      "client.create",
		ObjectID:  3,
		AccountID: "Xad7",
	}
	if _, err := router.HandleIncoming(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	if notifier.sent[0].Text != "New client created: Apple" {
		t.Errorf("unexpected message text: %q", notifier.sent[0].Text)
	}
	if notifier.sent[0].IconEmoji != ":apple:" {
		t.Errorf("unexpected icon emoji: %q", notifier.sent[0].IconEmoji)
	}
}

func TestHandleIncomingUnknownEventType(t *testing.T) {
	owner := &models.User{ID: 9, AccessToken: "tok-1"}
	notifier := &fakeNotifier{}
	router := newTestRouter(&fakeAPI{}, notifier, ownedBusiness("Xad7", owner), nil, nil)

	payload := freshbooks.WebhookTriggeredContent{
		Name:      "estimate.create",
		ObjectID:  8,
		AccountID: "Xad7",
	}
	_, err := router.HandleIncoming(context.Background(), payload)

	var unknownErr *UnknownEventTypeError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownEventTypeError, got %v", err)
	}
	if unknownErr.Name != "estimate.create" {
		t.Errorf("unexpected event name: %q", unknownErr.Name)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("expected no notifications, got %d", len(notifier.sent))
	}
}

func TestHandleIncomingBusinessNotFound(t *testing.T) {
	notifier := &fakeNotifier{}
	router := newTestRouter(&fakeAPI{}, notifier, &fakeBusinessRepo{}, nil, nil)

	payload := freshbooks.WebhookTriggeredContent{
		Name:      "invoice.create",
		ObjectID:  123,
		AccountID: "missing",
	}
	_, err := router.HandleIncoming(context.Background(), payload)
	if !errors.Is(err, ErrBusinessNotFound) {
		t.Fatalf("expected ErrBusinessNotFound, got %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("expected no notifications, got %d", len(notifier.sent))
	}
}

func TestHandleIncomingNotifierFailure(t *testing.T) {
	owner := &models.User{ID: 9, AccessToken: "tok-1"}
	api := &fakeAPI{
		fetchInvoiceFn: func(_ context.Context, _ string, _ int, _ string) (*freshbooks.InvoiceContent, error) {
			return &freshbooks.InvoiceContent{FreshbooksID: 123, Amount: freshbooks.Amount{Amount: "1", Code: "USD"}}, nil
		},
	}
	sendErr := errors.New("slack down")
	notifier := &fakeNotifier{err: sendErr}
	router := newTestRouter(api, notifier, ownedBusiness("Xad7", owner), nil, nil)

	payload := freshbooks.WebhookTriggeredContent{
		Name:      "invoice.create",
		ObjectID:  123,
		AccountID: "Xad7",
	}
	_, err := router.HandleIncoming(context.Background(), payload)
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected notifier error to surface, got %v", err)
	}
}

func TestHandleIncomingFetchFailureSendsNothing(t *testing.T) {
	owner := &models.User{ID: 9, AccessToken: "tok-1"}
	fetchErr := errors.New("upstream 500")
	api := &fakeAPI{
		fetchInvoiceFn: func(_ context.Context, _ string, _ int, _ string) (*freshbooks.InvoiceContent, error) {
			return nil, fetchErr
		},
	}
	notifier := &fakeNotifier{}
	router := newTestRouter(api, notifier, ownedBusiness("Xad7", owner), nil, nil)

	payload := freshbooks.WebhookTriggeredContent{
		Name:      "invoice.create",
		ObjectID:  123,
		AccountID: "Xad7",
	}
	_, err := router.HandleIncoming(context.Background(), payload)
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error to surface, got %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("expected no notifications after fetch failure, got %d", len(notifier.sent))
	}
}
