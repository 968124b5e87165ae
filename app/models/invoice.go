package models

import (
	"time"
)

// Invoice is a materialized cache of a FreshBooks invoice, populated solely by
// the invoice sync job. Interactive reads prefer fetching from FreshBooks; this
// cache is never required to be fresh.
type Invoice struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	FreshbooksID        int       `gorm:"uniqueIndex" json:"freshbooks_id"`
	Status              int       `json:"status"`
	UserID              *uint     `gorm:"index" json:"user_id,omitempty"`
	PaymentStatus       string    `gorm:"type:varchar(50)" json:"payment_status"`
	CurrentOrganization string    `gorm:"type:varchar(200)" json:"current_organization"`
	Amount              string    `gorm:"type:varchar(50)" json:"amount"`
	AmountCode          string    `gorm:"type:varchar(10)" json:"amount_code"`
	InvoiceDate         time.Time `json:"invoice_date"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
