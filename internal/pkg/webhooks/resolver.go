package webhooks

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/thumbworks/freshbot/app/models"
	"github.com/thumbworks/freshbot/app/repository"
)

// Resolver maps webhook payload account ids back onto stored users. Tokens
// live on users, payloads only carry the business account id, so every
// inbound event goes through this lookup before any provider call.
type Resolver struct {
	businesses repository.BusinessRepository
}

// NewResolver creates a resolver over the business repository.
func NewResolver(businesses repository.BusinessRepository) *Resolver {
	return &Resolver{businesses: businesses}
}

// ResolveOwner returns the user whose token serves an account id. The owner
// is the first membership's user on the matching business.
func (r *Resolver) ResolveOwner(accountID string) (*models.User, error) {
	business, err := r.businesses.GetByAccountID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	for _, membership := range business.Memberships {
		if membership.User != nil {
			return membership.User, nil
		}
	}
	return nil, ErrOrphanedWebhook
}

// ResolveAccountID picks the account id used for account-wide operations
// such as invoice imports. It is the first stored business carrying one.
func (r *Resolver) ResolveAccountID() (string, error) {
	business, err := r.businesses.FirstWithAccountID()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoAccountID
		}
		return "", err
	}
	if business.AccountID == nil || strings.TrimSpace(*business.AccountID) == "" {
		return "", ErrNoAccountID
	}
	return *business.AccountID, nil
}
