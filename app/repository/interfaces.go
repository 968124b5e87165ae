package repository

import (
	"github.com/thumbworks/freshbot/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	Update(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByFreshbooksID(freshbooksID int64) (*models.User, error)
	Count() (int64, error)
}

// BusinessRepository defines the interface for business (tenant) operations
type BusinessRepository interface {
	Create(business *models.Business) error
	Update(business *models.Business) error
	GetByFreshbooksID(freshbooksID int64) (*models.Business, error)
	// GetByAccountID loads the business for an external account id with its
	// memberships and their users eager-loaded.
	GetByAccountID(accountID string) (*models.Business, error)
	// FirstWithAccountID returns the first business that has any non-null
	// external account id.
	FirstWithAccountID() (*models.Business, error)
}

// MembershipRepository defines the interface for user<->business memberships
type MembershipRepository interface {
	Create(membership *models.Membership) error
	Update(membership *models.Membership) error
	GetByFreshbooksID(freshbooksID int64) (*models.Membership, error)
}

// WebhookRepository defines the interface for webhook registration records
type WebhookRepository interface {
	Create(webhook *models.Webhook) error
	GetByWebhookID(webhookID int) (*models.Webhook, error)
	// DeleteByWebhookID removes the record for a remote callback id and
	// returns gorm.ErrRecordNotFound when nothing matched.
	DeleteByWebhookID(webhookID int) error
	ListByUserID(userID uint) ([]models.Webhook, error)
}

// InvoiceRepository defines the interface for the invoice cache
type InvoiceRepository interface {
	// Upsert creates or replaces the cached invoice keyed by its FreshBooks id.
	Upsert(invoice *models.Invoice) error
	GetByFreshbooksID(freshbooksID int) (*models.Invoice, error)
	List(offset, limit int) ([]models.Invoice, error)
	ListByUserID(userID uint, offset, limit int) ([]models.Invoice, error)
	Count() (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User       UserRepository
	Business   BusinessRepository
	Membership MembershipRepository
	Webhook    WebhookRepository
	Invoice    InvoiceRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Business:   NewBusinessRepository(db),
		Membership: NewMembershipRepository(db),
		Webhook:    NewWebhookRepository(db),
		Invoice:    NewInvoiceRepository(db),
	}
}
