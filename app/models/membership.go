package models

import (
	"time"
)

// Membership joins a User to a Business with a role. One row per business the
// FreshBooks profile reports; a user always holds at least one membership after
// a successful login reconciliation.
type Membership struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FreshbooksID int64     `gorm:"uniqueIndex" json:"freshbooks_id"`
	Role         string    `gorm:"type:varchar(100)" json:"role"`
	UserID       uint      `gorm:"index" json:"user_id"`
	User         *User     `gorm:"foreignKey:UserID" json:"-"`
	BusinessID   uint      `gorm:"index" json:"business_id"`
	Business     *Business `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
