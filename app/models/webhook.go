package models

import (
	"time"
)

// Webhook maps a remote FreshBooks callback id to the user who registered it.
// This pairing is the only way to recover "who owns this inbound webhook" during
// the verification handshake.
type Webhook struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	WebhookID int       `gorm:"uniqueIndex" json:"webhook_id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
