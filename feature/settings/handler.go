package settings

import (
	"rentalsync-bridge/core/logger"
	"rentalsync-bridge/feature/scheduler"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the runtime settings endpoints.
type Handler struct {
	repo      *Repository
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(repo *Repository, sched *scheduler.Scheduler, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, scheduler: sched, logger: logger}
}

// RegisterRoutes registers the settings routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/settings")
	group.Get("/sync-interval", h.HandleGetSyncInterval)
	group.Put("/sync-interval", h.HandlePutSyncInterval)
}

// HandleGetSyncInterval returns the active sync interval.
func (h *Handler) HandleGetSyncInterval(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"sync_interval_minutes": h.scheduler.SyncIntervalMinutes(),
		"scheduler_running":     h.scheduler.IsRunning(),
	})
}

type syncIntervalRequest struct {
	SyncIntervalMinutes int `json:"sync_interval_minutes"`
}

// HandlePutSyncInterval persists a new sync interval and applies it to the
// running scheduler.
func (h *Handler) HandlePutSyncInterval(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req syncIntervalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.SyncIntervalMinutes < scheduler.MinSyncIntervalMinutes ||
		req.SyncIntervalMinutes > scheduler.MaxSyncIntervalMinutes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sync interval must be between 1 and 60 minutes",
		})
	}

	if err := h.repo.Save(c.Context(), &SystemSettings{SyncIntervalMinutes: req.SyncIntervalMinutes}); err != nil {
		l.Error("Failed to persist settings", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save settings"})
	}

	applied := h.scheduler.UpdateSyncInterval(req.SyncIntervalMinutes)
	return c.JSON(fiber.Map{
		"sync_interval_minutes": req.SyncIntervalMinutes,
		"applied":               applied,
	})
}
