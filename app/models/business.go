package models

import (
	"time"

	"gorm.io/gorm"
)

// Business is a tenant: one customer organization in FreshBooks. AccountID is
// assigned by FreshBooks only after certain account-level actions, so a business
// can exist locally before it is known (AccountID == nil means "not yet linked
// to a billable account").
type Business struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FreshbooksID int64          `gorm:"uniqueIndex" json:"freshbooks_id"`
	Name         string         `gorm:"type:varchar(200)" json:"name"`
	AccountID    *string        `gorm:"type:varchar(100);index" json:"account_id,omitempty"`
	Memberships  []Membership   `gorm:"foreignKey:BusinessID" json:"memberships,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// HasAccountID reports whether FreshBooks already assigned an account id.
func (b *Business) HasAccountID() bool {
	return b.AccountID != nil && *b.AccountID != ""
}
