package repository

import (
	"github.com/thumbworks/freshbot/app/models"
	"gorm.io/gorm"
)

// webhookRepository implements the WebhookRepository interface
type webhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository creates a new webhook repository instance
func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

// Create persists a new webhook registration record
func (r *webhookRepository) Create(webhook *models.Webhook) error {
	return r.db.Create(webhook).Error
}

// GetByWebhookID retrieves the record for a remote callback id
func (r *webhookRepository) GetByWebhookID(webhookID int) (*models.Webhook, error) {
	var webhook models.Webhook
	err := r.db.Where("webhook_id = ?", webhookID).First(&webhook).Error
	if err != nil {
		return nil, err
	}
	return &webhook, nil
}

// DeleteByWebhookID removes the record for a remote callback id
func (r *webhookRepository) DeleteByWebhookID(webhookID int) error {
	res := r.db.Where("webhook_id = ?", webhookID).Delete(&models.Webhook{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByUserID lists the registration records owned by one user
func (r *webhookRepository) ListByUserID(userID uint) ([]models.Webhook, error) {
	var webhooks []models.Webhook
	err := r.db.Where("user_id = ?", userID).Order("webhook_id").Find(&webhooks).Error
	return webhooks, err
}
