package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeRegisterWebhook JobType = "register_webhook"
	JobTypeInvoiceSync     JobType = "invoice_sync"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// RegisterWebhookJobPayload contains the payload for webhook registration jobs
type RegisterWebhookJobPayload struct {
	UserID      uint   `json:"user_id"`
	AccountID   string `json:"account_id"`
	Event       string `json:"event"`
	CallbackURI string `json:"callback_uri"`
}

// ToMap converts the payload to a map for storage
func (p RegisterWebhookJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"user_id":      p.UserID,
		"account_id":   p.AccountID,
		"event":        p.Event,
		"callback_uri": p.CallbackURI,
	}
}

// RegisterWebhookJobPayloadFromMap creates a payload from a map
func RegisterWebhookJobPayloadFromMap(data map[string]interface{}) (*RegisterWebhookJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload RegisterWebhookJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// InvoiceSyncJobPayload contains the payload for one page of an invoice import
type InvoiceSyncJobPayload struct {
	UserID    uint   `json:"user_id"`
	AccountID string `json:"account_id"`
	Page      int    `json:"page"`
}

// ToMap converts the payload to a map for storage
func (p InvoiceSyncJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"user_id":    p.UserID,
		"account_id": p.AccountID,
		"page":       p.Page,
	}
}

// InvoiceSyncJobPayloadFromMap creates a payload from a map
func InvoiceSyncJobPayloadFromMap(data map[string]interface{}) (*InvoiceSyncJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload InvoiceSyncJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
