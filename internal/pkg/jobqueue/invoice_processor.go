package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/thumbworks/freshbot/app/repository"
)

// enqueueFunc matches Queue.EnqueueJob so the processor body can chain the
// next page without holding a queue reference.
type enqueueFunc func(jobType JobType, payload map[string]interface{}) (*Job, error)

// processInvoiceSyncJob imports one page of the account's invoice listing
// into the local cache and chains the next page while more remain.
func (q *Queue) processInvoiceSyncJob(ctx context.Context, job *Job) error {
	payload, err := InvoiceSyncJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid invoice_sync payload: %w", err)
	}

	api, err := getProviderAPI()
	if err != nil {
		return err
	}

	repos := repository.GetGlobalRepositories()
	return runInvoiceSync(ctx, api, repos.User, repos.Invoice, q.EnqueueJob, payload)
}

// runInvoiceSync is the processor body, split out so tests can drive it with
// fakes. Per-invoice persistence failures are collected rather than aborting
// the page; the next page is still chained so one bad row cannot stall the
// whole import.
func runInvoiceSync(ctx context.Context, api ProviderAPI, users repository.UserRepository, invoices repository.InvoiceRepository, enqueue enqueueFunc, payload *InvoiceSyncJobPayload) error {
	user, err := users.GetByID(payload.UserID)
	if err != nil {
		return fmt.Errorf("loading user %d: %w", payload.UserID, err)
	}
	if strings.TrimSpace(user.AccessToken) == "" {
		return fmt.Errorf("user %d has no access token", user.ID)
	}

	page := payload.Page
	if page < 1 {
		page = 1
	}

	meta, err := api.FetchInvoices(ctx, payload.AccountID, user.AccessToken, page)
	if err != nil {
		return fmt.Errorf("fetching invoices page %d: %w", page, err)
	}

	var errs []error
	userID := payload.UserID
	for _, content := range meta.Invoices {
		record := content.Model(&userID)
		if err := invoices.Upsert(&record); err != nil {
			errs = append(errs, fmt.Errorf("invoice %d: %w", content.FreshbooksID, err))
		}
	}

	if meta.Page < meta.Pages {
		next := InvoiceSyncJobPayload{
			UserID:    payload.UserID,
			AccountID: payload.AccountID,
			Page:      meta.Page + 1,
		}
		if _, err := enqueue(JobTypeInvoiceSync, next.ToMap()); err != nil {
			errs = append(errs, fmt.Errorf("enqueuing page %d: %w", meta.Page+1, err))
		}
	}

	log.Infof("[JobQueue] Imported %d invoices (page %d/%d) for account %s", len(meta.Invoices), meta.Page, meta.Pages, payload.AccountID)
	return errors.Join(errs...)
}
