package calendar

import (
	"errors"
	"strings"

	"rentalsync-bridge/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const contentTypeCalendar = "text/calendar; charset=utf-8"

// Handler serves the public iCalendar feed routes.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the feed routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/ical")
	group.Get("/:slug", h.HandlePropertyFeed)
	group.Get("/:slug/:room", h.HandleRoomFeed)
}

// HandlePropertyFeed serves the property-level feed at /ical/{slug}.ics.
func (h *Handler) HandlePropertyFeed(c *fiber.Ctx) error {
	slug := strings.TrimSuffix(c.Params("slug"), ".ics")
	return h.serveFeed(c, slug, "")
}

// HandleRoomFeed serves the room-level feed at /ical/{slug}/{room}.ics.
func (h *Handler) HandleRoomFeed(c *fiber.Ctx) error {
	slug := c.Params("slug")
	roomSlug := strings.TrimSuffix(c.Params("room"), ".ics")
	return h.serveFeed(c, slug, roomSlug)
}

func (h *Handler) serveFeed(c *fiber.Ctx, slug, roomSlug string) error {
	l := logger.WithRayID(h.logger, c)

	feed, err := h.service.Feed(c.Context(), slug, roomSlug)
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "calendar not found",
		})
	}
	if err != nil {
		l.Error("Feed generation failed",
			zap.String("slug", slug),
			zap.String("room_slug", roomSlug),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to generate calendar",
		})
	}

	c.Set(fiber.HeaderContentType, contentTypeCalendar)
	return c.SendString(feed)
}
