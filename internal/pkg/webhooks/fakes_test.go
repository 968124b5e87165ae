package webhooks

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/thumbworks/freshbot/app/models"
	"github.com/thumbworks/freshbot/internal/pkg/freshbooks"
	"github.com/thumbworks/freshbot/internal/pkg/slack"
)

// fakeAPI implements FreshbooksAPI with function fields. A nil field means
// the test does not expect that call.
type fakeAPI struct {
	confirmFn       func(ctx context.Context, accessToken, accountID string, objectID int, verifier string) error
	fetchInvoiceFn  func(ctx context.Context, accountID string, invoiceID int, accessToken string) (*freshbooks.InvoiceContent, error)
	fetchPaymentFn  func(ctx context.Context, accountID string, paymentID int, accessToken string) (*freshbooks.PaymentContent, error)
	fetchClientFn   func(ctx context.Context, accountID string, clientID int, accessToken string) (*freshbooks.ClientContent, error)
	fetchWebhooksFn func(ctx context.Context, accountID, accessToken string) (*freshbooks.WebhookCallbacksResult, error)
	createWebhookFn func(ctx context.Context, accountID, accessToken string, event freshbooks.EventType, callbackURI string) (*freshbooks.NewCallback, error)
	deleteWebhookFn func(ctx context.Context, accountID, accessToken string, webhookID int) error
}

var errUnexpectedCall = errors.New("unexpected provider call")

func (f *fakeAPI) ConfirmWebhook(ctx context.Context, accessToken, accountID string, objectID int, verifier string) error {
	if f.confirmFn == nil {
		return errUnexpectedCall
	}
	return f.confirmFn(ctx, accessToken, accountID, objectID, verifier)
}

func (f *fakeAPI) FetchInvoice(ctx context.Context, accountID string, invoiceID int, accessToken string) (*freshbooks.InvoiceContent, error) {
	if f.fetchInvoiceFn == nil {
		return nil, errUnexpectedCall
	}
	return f.fetchInvoiceFn(ctx, accountID, invoiceID, accessToken)
}

func (f *fakeAPI) FetchPayment(ctx context.Context, accountID string, paymentID int, accessToken string) (*freshbooks.PaymentContent, error) {
	if f.fetchPaymentFn == nil {
		return nil, errUnexpectedCall
	}
	return f.fetchPaymentFn(ctx, accountID, paymentID, accessToken)
}

func (f *fakeAPI) FetchClient(ctx context.Context, accountID string, clientID int, accessToken string) (*freshbooks.ClientContent, error) {
	if f.fetchClientFn == nil {
		return nil, errUnexpectedCall
	}
	return f.fetchClientFn(ctx, accountID, clientID, accessToken)
}

func (f *fakeAPI) FetchWebhooks(ctx context.Context, accountID, accessToken string) (*freshbooks.WebhookCallbacksResult, error) {
	if f.fetchWebhooksFn == nil {
		return nil, errUnexpectedCall
	}
	return f.fetchWebhooksFn(ctx, accountID, accessToken)
}

func (f *fakeAPI) CreateWebhook(ctx context.Context, accountID, accessToken string, event freshbooks.EventType, callbackURI string) (*freshbooks.NewCallback, error) {
	if f.createWebhookFn == nil {
		return nil, errUnexpectedCall
	}
	return f.createWebhookFn(ctx, accountID, accessToken, event, callbackURI)
}

func (f *fakeAPI) DeleteWebhook(ctx context.Context, accountID, accessToken string, webhookID int) error {
	if f.deleteWebhookFn == nil {
		return errUnexpectedCall
	}
	return f.deleteWebhookFn(ctx, accountID, accessToken, webhookID)
}

// fakeNotifier records sent messages.
type fakeNotifier struct {
	sent []slack.Message
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, msg slack.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// fakeWebhookRepo is an in-memory WebhookRepository.
type fakeWebhookRepo struct {
	records map[int]*models.Webhook
	deleted []int
}

func newFakeWebhookRepo(records ...*models.Webhook) *fakeWebhookRepo {
	repo := &fakeWebhookRepo{records: map[int]*models.Webhook{}}
	for _, r := range records {
		repo.records[r.WebhookID] = r
	}
	return repo
}

func (f *fakeWebhookRepo) Create(webhook *models.Webhook) error {
	f.records[webhook.WebhookID] = webhook
	return nil
}

func (f *fakeWebhookRepo) GetByWebhookID(webhookID int) (*models.Webhook, error) {
	if record, ok := f.records[webhookID]; ok {
		return record, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeWebhookRepo) DeleteByWebhookID(webhookID int) error {
	if _, ok := f.records[webhookID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.records, webhookID)
	f.deleted = append(f.deleted, webhookID)
	return nil
}

func (f *fakeWebhookRepo) ListByUserID(userID uint) ([]models.Webhook, error) {
	var out []models.Webhook
	for _, record := range f.records {
		if record.UserID == userID {
			out = append(out, *record)
		}
	}
	return out, nil
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users map[uint]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[uint]*models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByFreshbooksID(freshbooksID int64) (*models.User, error) {
	for _, user := range f.users {
		if user.FreshbooksID == freshbooksID {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Count() (int64, error) {
	return int64(len(f.users)), nil
}

// fakeBusinessRepo is an in-memory BusinessRepository.
type fakeBusinessRepo struct {
	byAccountID map[string]*models.Business
	first       *models.Business
}

func (f *fakeBusinessRepo) Create(business *models.Business) error { return nil }
func (f *fakeBusinessRepo) Update(business *models.Business) error { return nil }

func (f *fakeBusinessRepo) GetByFreshbooksID(freshbooksID int64) (*models.Business, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBusinessRepo) GetByAccountID(accountID string) (*models.Business, error) {
	if business, ok := f.byAccountID[accountID]; ok {
		return business, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBusinessRepo) FirstWithAccountID() (*models.Business, error) {
	if f.first == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.first, nil
}
