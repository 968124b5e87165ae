package repository

import (
	"github.com/thumbworks/freshbot/app/models"
	"gorm.io/gorm"
)

// membershipRepository implements the MembershipRepository interface
type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository instance
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// Create creates a new membership in the database
func (r *membershipRepository) Create(membership *models.Membership) error {
	return r.db.Create(membership).Error
}

// Update updates an existing membership in the database
func (r *membershipRepository) Update(membership *models.Membership) error {
	return r.db.Save(membership).Error
}

// GetByFreshbooksID retrieves a membership by its FreshBooks id
func (r *membershipRepository) GetByFreshbooksID(freshbooksID int64) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.Where("freshbooks_id = ?", freshbooksID).First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}
