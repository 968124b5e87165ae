package repository

import (
	"github.com/thumbworks/freshbot/app/models"
	"gorm.io/gorm"
)

// businessRepository implements the BusinessRepository interface
type businessRepository struct {
	db *gorm.DB
}

// NewBusinessRepository creates a new business repository instance
func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

// Create creates a new business in the database
func (r *businessRepository) Create(business *models.Business) error {
	return r.db.Create(business).Error
}

// Update updates an existing business in the database
func (r *businessRepository) Update(business *models.Business) error {
	return r.db.Save(business).Error
}

// GetByFreshbooksID retrieves a business by its FreshBooks id
func (r *businessRepository) GetByFreshbooksID(freshbooksID int64) (*models.Business, error) {
	var business models.Business
	err := r.db.Where("freshbooks_id = ?", freshbooksID).First(&business).Error
	if err != nil {
		return nil, err
	}
	return &business, nil
}

// GetByAccountID retrieves the business for an external account id with its
// memberships and member users eager-loaded.
func (r *businessRepository) GetByAccountID(accountID string) (*models.Business, error) {
	var business models.Business
	err := r.db.
		Preload("Memberships").
		Preload("Memberships.User").
		Where("account_id = ?", accountID).
		First(&business).Error
	if err != nil {
		return nil, err
	}
	return &business, nil
}

// FirstWithAccountID returns the first business that has any account id set.
func (r *businessRepository) FirstWithAccountID() (*models.Business, error) {
	var business models.Business
	err := r.db.
		Where("account_id IS NOT NULL AND account_id <> ''").
		Order("id").
		First(&business).Error
	if err != nil {
		return nil, err
	}
	return &business, nil
}
