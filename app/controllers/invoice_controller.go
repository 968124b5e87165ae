package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/thumbworks/freshbot/app/repository"
	"github.com/thumbworks/freshbot/internal/pkg/jobqueue"
)

const invoiceListDefaultLimit = 50

// HandleInvoiceSync starts a full invoice import for the logged-in user's
// account. The import runs page by page through the job queue; this endpoint
// only seeds the first page.
func HandleInvoiceSync(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}

	accountID, err := webhookResolver.ResolveAccountID()
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "no_account",
			"message": err.Error(),
		})
	}

	payload := jobqueue.InvoiceSyncJobPayload{
		UserID:    user.ID,
		AccountID: accountID,
		Page:      1,
	}
	job, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeInvoiceSync, payload.ToMap())
	if err != nil {
		log.Errorf("[Invoice] Sync enqueue failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "could not enqueue invoice sync",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id":     job.ID,
		"account_id": accountID,
	})
}

// HandleInvoiceList returns the cached invoices, newest first.
func HandleInvoiceList(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}

	limit := invoiceListDefaultLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}

	repos := repository.GetGlobalRepositories()
	invoices, err := repos.Invoice.List(offset, limit)
	if err != nil {
		log.Errorf("[Invoice] Listing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "could not list invoices",
		})
	}
	total, err := repos.Invoice.Count()
	if err != nil {
		log.Errorf("[Invoice] Count failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": "could not count invoices",
		})
	}

	return c.JSON(fiber.Map{
		"invoices": invoices,
		"total":    total,
		"offset":   offset,
		"limit":    limit,
	})
}
