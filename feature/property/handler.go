package property

import (
	"errors"

	"rentalsync-bridge/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var errInvalidID = errors.New("invalid id")

// Handler serves the property administration endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// RegisterRoutes registers the property routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/properties")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleCreate)
	group.Get("/:id", h.HandleGet)
	group.Put("/:id", h.HandleUpdate)
	group.Delete("/:id", h.HandleDelete)
	group.Post("/:id/rooms", h.HandleCreateRoom)
	group.Delete("/:id/rooms/:roomId", h.HandleDeleteRoom)
}

type propertyRequest struct {
	RemoteID    string `json:"remote_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Timezone    string `json:"timezone"`
	Enabled     *bool  `json:"enabled"`
	SyncEnabled *bool  `json:"sync_enabled"`
}

// HandleList returns all properties with their sync status.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	props, err := h.repo.List(c.Context())
	if err != nil {
		return h.internalError(c, "Failed to list properties", err)
	}
	return c.JSON(props)
}

// HandleGet returns one property.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	prop, err := h.loadProperty(c)
	if err != nil {
		return h.requestError(c, err)
	}
	if prop == nil {
		return h.notFound(c)
	}
	return c.JSON(prop)
}

// HandleCreate registers a property. The slug is derived from the name when
// absent.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var req propertyRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	if req.RemoteID == "" || req.Name == "" {
		return h.badRequest(c, "remote_id and name are required")
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}
	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	prop := &Property{
		RemoteID:    req.RemoteID,
		Name:        req.Name,
		Slug:        slug,
		Timezone:    timezone,
		Enabled:     req.Enabled == nil || *req.Enabled,
		SyncEnabled: req.SyncEnabled == nil || *req.SyncEnabled,
	}
	if err := h.repo.Create(c.Context(), prop); err != nil {
		return h.internalError(c, "Failed to create property", err)
	}
	return c.Status(fiber.StatusCreated).JSON(prop)
}

// HandleUpdate modifies a property, including its enable toggles.
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	prop, err := h.loadProperty(c)
	if err != nil {
		return h.requestError(c, err)
	}
	if prop == nil {
		return h.notFound(c)
	}

	var req propertyRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}

	if req.Name != "" {
		prop.Name = req.Name
	}
	if req.Slug != "" {
		prop.Slug = req.Slug
	}
	if req.Timezone != "" {
		prop.Timezone = req.Timezone
	}
	if req.Enabled != nil {
		prop.Enabled = *req.Enabled
	}
	if req.SyncEnabled != nil {
		prop.SyncEnabled = *req.SyncEnabled
	}

	if err := h.repo.Save(c.Context(), prop); err != nil {
		return h.internalError(c, "Failed to update property", err)
	}
	return c.JSON(prop)
}

// HandleDelete removes a property and its rooms.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	prop, err := h.loadProperty(c)
	if err != nil {
		return h.requestError(c, err)
	}
	if prop == nil {
		return h.notFound(c)
	}
	if err := h.repo.Delete(c.Context(), prop); err != nil {
		return h.internalError(c, "Failed to delete property", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type roomRequest struct {
	RemoteID string `json:"remote_id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
}

// HandleCreateRoom registers a room under a property.
func (h *Handler) HandleCreateRoom(c *fiber.Ctx) error {
	prop, err := h.loadProperty(c)
	if err != nil {
		return h.requestError(c, err)
	}
	if prop == nil {
		return h.notFound(c)
	}

	var req roomRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	if req.RemoteID == "" || req.Name == "" {
		return h.badRequest(c, "remote_id and name are required")
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}

	room := &Room{
		PropertyID: prop.ID,
		RemoteID:   req.RemoteID,
		Name:       req.Name,
		Slug:       slug,
	}
	if err := h.repo.CreateRoom(c.Context(), room); err != nil {
		return h.internalError(c, "Failed to create room", err)
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

// HandleDeleteRoom removes a room. Synced bookings keep their history with
// the room reference cleared.
func (h *Handler) HandleDeleteRoom(c *fiber.Ctx) error {
	prop, err := h.loadProperty(c)
	if err != nil {
		return h.requestError(c, err)
	}
	if prop == nil {
		return h.notFound(c)
	}

	roomID, err := c.ParamsInt("roomId")
	if err != nil || roomID <= 0 {
		return h.badRequest(c, "invalid room id")
	}
	if err := h.repo.DeleteRoom(c.Context(), &Room{ID: uint(roomID), PropertyID: prop.ID}); err != nil {
		return h.internalError(c, "Failed to delete room", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) loadProperty(c *fiber.Ctx) (*Property, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, errInvalidID
	}
	return h.repo.GetByID(c.Context(), uint(id))
}

func (h *Handler) requestError(c *fiber.Ctx, err error) error {
	if errors.Is(err, errInvalidID) {
		return h.badRequest(c, "invalid property id")
	}
	return h.internalError(c, "Failed to load property", err)
}

func (h *Handler) badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func (h *Handler) notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "property not found"})
}

func (h *Handler) internalError(c *fiber.Ctx, msg string, err error) error {
	logger.WithRayID(h.logger, c).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}
