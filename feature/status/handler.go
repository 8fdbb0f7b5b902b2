package status

import (
	"errors"

	"proxy-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the status API.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the status routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/healthz", h.HandleHealth)

	group := app.Group("/api")
	group.Get("/sync/results", h.HandleResults)
	group.Post("/sync/:provider", h.HandleTriggerSync)
	group.Get("/connections/:id/history", h.HandleConnectionHistory)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleResults returns the last sync result per provider.
func (h *Handler) HandleResults(c *fiber.Ctx) error {
	return c.JSON(h.service.Results())
}

// HandleTriggerSync runs one reconciliation pass for the given provider and
// returns its result. A pass already in flight for the provider is joined,
// not duplicated.
func (h *Handler) HandleTriggerSync(c *fiber.Ctx) error {
	name := c.Params("provider")
	l := logger.WithRayID(h.service.logger, c)
	l.Info("sync triggered via API", zap.String("provider", name))

	res, err := h.service.TriggerSync(c.Context(), name)
	if errors.Is(err, ErrUnknownProvider) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		// The run failed but the result still carries the error context.
		return c.Status(fiber.StatusBadGateway).JSON(res)
	}
	return c.JSON(res)
}

// HandleConnectionHistory returns the audit trail of one connection.
func (h *Handler) HandleConnectionHistory(c *fiber.Ctx) error {
	id := c.Params("id")

	changes, assignments, err := h.service.ConnectionHistory(c.Context(), id)
	if err != nil {
		l := logger.WithRayID(h.service.logger, c)
		l.Error("history lookup failed", zap.String("connection_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "history lookup failed"})
	}

	return c.JSON(fiber.Map{
		"connection_id": id,
		"field_changes": changes,
		"assignments":   assignments,
	})
}
