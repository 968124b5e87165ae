package repository

import (
	"github.com/thumbworks/freshbot/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// invoiceRepository implements the InvoiceRepository interface
type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository instance
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// Upsert creates or replaces a cached invoice keyed by its FreshBooks id
func (r *invoiceRepository) Upsert(invoice *models.Invoice) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "freshbooks_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "user_id", "payment_status", "current_organization",
			"amount", "amount_code", "invoice_date",
		}),
	}).Create(invoice).Error
}

// GetByFreshbooksID retrieves a cached invoice by its FreshBooks id
func (r *invoiceRepository) GetByFreshbooksID(freshbooksID int) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Where("freshbooks_id = ?", freshbooksID).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// List retrieves a paginated list of cached invoices
func (r *invoiceRepository) List(offset, limit int) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Order("invoice_date DESC").Offset(offset).Limit(limit).Find(&invoices).Error
	return invoices, err
}

// ListByUserID retrieves cached invoices imported for one user
func (r *invoiceRepository) ListByUserID(userID uint, offset, limit int) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Where("user_id = ?", userID).
		Order("invoice_date DESC").Offset(offset).Limit(limit).Find(&invoices).Error
	return invoices, err
}

// Count returns the total number of cached invoices
func (r *invoiceRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Invoice{}).Count(&count).Error
	return count, err
}
