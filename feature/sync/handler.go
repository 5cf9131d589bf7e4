package sync

import (
	"errors"

	"rentalsync-bridge/core/logger"
	"rentalsync-bridge/feature/credential"
	"rentalsync-bridge/feature/property"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the manual sync triggers.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/", h.HandleSyncAll)
	group.Post("/:propertyId", h.HandleSyncProperty)
}

// HandleSyncAll reconciles every eligible property immediately.
func (h *Handler) HandleSyncAll(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	counts, err := h.service.SyncAll(c.Context())
	if err != nil {
		l.Error("Manual sync run failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "sync run failed"})
	}
	return c.JSON(counts)
}

// HandleSyncProperty reconciles one property immediately.
func (h *Handler) HandleSyncProperty(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	id, err := c.ParamsInt("propertyId")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid property id"})
	}

	prop, err := property.NewRepository(h.service.db).GetByID(c.Context(), uint(id))
	if err != nil {
		l.Error("Failed to load property", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load property"})
	}
	if prop == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "property not found"})
	}

	cred, err := credential.NewRepository(h.service.db).Get(c.Context())
	if err != nil {
		l.Error("Failed to load credential", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load credential"})
	}
	if cred == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "no credential configured"})
	}

	counts, err := h.service.SyncProperty(c.Context(), prop, cred)
	if err != nil {
		var syncErr *SyncError
		if errors.As(err, &syncErr) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": syncErr.Error()})
		}
		l.Error("Property sync failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "sync failed"})
	}
	return c.JSON(counts)
}
