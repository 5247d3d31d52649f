package health

import (
	"user-import/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for health checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the health routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/health")
	group.Get("/", h.HandleHealth)
	group.Get("/schema", h.HandleSchema)
}

// HandleHealth reports database and archive availability.
// @Summary Health Check
// @Description Pings the database and the snapshot archive bucket. Returns 503 when the database is unreachable.
// @Tags health
// @Produce json
// @Success 200 {object} Report "Healthy"
// @Failure 503 {object} Report "Unhealthy"
// @Router /health [get]
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	report := h.service.Check(c.UserContext())
	if !report.Healthy {
		logger.WithRayID(h.service.logger, c).Warn("Health check failed", zap.String("database", report.Database.Error))
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}

// HandleSchema compares the import tables with the expected columns.
// @Summary Schema Check
// @Description Verifies that the imported user and resolver tables carry every expected column. Tables not created yet are reported as absent.
// @Tags health
// @Produce json
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /health/schema [get]
func (h *Handler) HandleSchema(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering schema check")

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}
