package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// User is a FreshBooks account holder who authorized the bot. The access token
// always reflects the most recent OAuth login; an old token becomes invalid the
// moment a new one is stored.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FreshbooksID int64          `gorm:"uniqueIndex" json:"freshbooks_id" validate:"required"`
	FirstName    string         `gorm:"type:varchar(150)" json:"first_name" validate:"max=150"`
	LastName     string         `gorm:"type:varchar(150)" json:"last_name" validate:"max=150"`
	AccessToken  string         `gorm:"type:varchar(2048)" json:"-" validate:"required"`
	Memberships  []Membership   `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// DisplayName returns "First Last" trimmed to whatever parts exist.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
