package apiv1

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/thumbworks/freshbot/app/controllers"
	"github.com/thumbworks/freshbot/internal/pkg/jobqueue"
	"github.com/thumbworks/freshbot/internal/pkg/metrics/counter"
	"github.com/thumbworks/freshbot/internal/pkg/middleware"
)

// Pong is the ping endpoint's response body
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer implements the versioned JSON API
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// RegisterHandlers attaches the v1 routes. Everything except ping requires a
// logged-in session.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)
	router.Get("/queue/stats", middleware.RequireAPISessionAuth, s.GetQueueStats)
	router.Get("/webhooks/stats", middleware.RequireAPISessionAuth, s.GetWebhookStats)
	router.Get("/invoices", middleware.RequireAPISessionAuth, s.GetInvoices)
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetQueueStats returns job queue depth and per-status totals.
func (s *APIServer) GetQueueStats(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	queue := jobqueue.GetManager().GetQueue()
	stats, err := queue.GetJobStats(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "could not read job stats"})
	}
	pending, err := queue.GetQueueSize(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "could not read queue size"})
	}
	processing, err := queue.GetProcessingSize(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "could not read processing size"})
	}

	return c.JSON(fiber.Map{
		"pending":    pending,
		"processing": processing,
		"totals":     stats,
	})
}

// GetWebhookStats returns the webhook outcome counters.
func (s *APIServer) GetWebhookStats(c *fiber.Ctx) error {
	snapshot, err := counter.GetSnapshot()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "could not read counters"})
	}
	return c.JSON(snapshot)
}

// GetInvoices returns the cached invoice listing.
func (s *APIServer) GetInvoices(c *fiber.Ctx) error {
	return controllers.HandleInvoiceList(c)
}
