package fields

import (
	"errors"

	"rentalsync-bridge/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the field catalog and custom field configuration
// endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// RegisterRoutes registers the field routes under a property scope.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/properties/:propertyId")
	group.Get("/available-fields", h.HandleListAvailable)
	group.Get("/custom-fields", h.HandleListCustom)
	group.Post("/custom-fields", h.HandleCreateCustom)
	group.Put("/custom-fields/:id", h.HandleUpdateCustom)
	group.Delete("/custom-fields/:id", h.HandleDeleteCustom)
}

// HandleListAvailable returns the discovered field catalog for a property.
func (h *Handler) HandleListAvailable(c *fiber.Ctx) error {
	propertyID, ok := h.propertyID(c)
	if !ok {
		return nil
	}
	list, err := h.repo.ListForProperty(c.Context(), propertyID)
	if err != nil {
		return h.internalError(c, "Failed to list available fields", err)
	}
	return c.JSON(list)
}

// HandleListCustom returns a property's custom field configuration.
func (h *Handler) HandleListCustom(c *fiber.Ctx) error {
	propertyID, ok := h.propertyID(c)
	if !ok {
		return nil
	}
	list, err := h.repo.ListCustomFields(c.Context(), propertyID)
	if err != nil {
		return h.internalError(c, "Failed to list custom fields", err)
	}
	return c.JSON(list)
}

type customFieldRequest struct {
	FieldKey     string `json:"field_key"`
	DisplayLabel string `json:"display_label"`
	Enabled      *bool  `json:"enabled"`
	SortOrder    *int   `json:"sort_order"`
}

// HandleCreateCustom adds a custom field configuration. The key must exist
// in the property's field catalog.
func (h *Handler) HandleCreateCustom(c *fiber.Ctx) error {
	propertyID, ok := h.propertyID(c)
	if !ok {
		return nil
	}

	var req customFieldRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	if req.FieldKey == "" {
		return h.badRequest(c, "field_key is required")
	}

	cf := &CustomField{
		PropertyID:   propertyID,
		FieldKey:     req.FieldKey,
		DisplayLabel: req.DisplayLabel,
		Enabled:      req.Enabled == nil || *req.Enabled,
	}
	if req.SortOrder != nil {
		cf.SortOrder = *req.SortOrder
	}

	err := h.repo.CreateCustomField(c.Context(), cf)
	var verr *ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": verr.Error()})
	}
	if err != nil {
		return h.internalError(c, "Failed to create custom field", err)
	}
	return c.Status(fiber.StatusCreated).JSON(cf)
}

// HandleUpdateCustom modifies label, toggle, or order of a configuration.
func (h *Handler) HandleUpdateCustom(c *fiber.Ctx) error {
	propertyID, ok := h.propertyID(c)
	if !ok {
		return nil
	}
	cf, ok := h.loadCustomField(c, propertyID)
	if !ok {
		return nil
	}

	var req customFieldRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid request body")
	}
	if req.DisplayLabel != "" {
		cf.DisplayLabel = req.DisplayLabel
	}
	if req.Enabled != nil {
		cf.Enabled = *req.Enabled
	}
	if req.SortOrder != nil {
		cf.SortOrder = *req.SortOrder
	}

	if err := h.repo.SaveCustomField(c.Context(), cf); err != nil {
		return h.internalError(c, "Failed to update custom field", err)
	}
	return c.JSON(cf)
}

// HandleDeleteCustom removes a configuration.
func (h *Handler) HandleDeleteCustom(c *fiber.Ctx) error {
	propertyID, ok := h.propertyID(c)
	if !ok {
		return nil
	}
	cf, ok := h.loadCustomField(c, propertyID)
	if !ok {
		return nil
	}
	if err := h.repo.DeleteCustomField(c.Context(), cf); err != nil {
		return h.internalError(c, "Failed to delete custom field", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// propertyID parses the property scope. On failure the response has been
// written and ok is false.
func (h *Handler) propertyID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("propertyId")
	if err != nil || id <= 0 {
		_ = h.badRequest(c, "invalid property id")
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) loadCustomField(c *fiber.Ctx, propertyID uint) (*CustomField, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = h.badRequest(c, "invalid custom field id")
		return nil, false
	}
	cf, err := h.repo.GetCustomField(c.Context(), uint(id))
	if err != nil {
		_ = h.internalError(c, "Failed to load custom field", err)
		return nil, false
	}
	if cf == nil || cf.PropertyID != propertyID {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "custom field not found"})
		return nil, false
	}
	return cf, true
}

func (h *Handler) badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func (h *Handler) internalError(c *fiber.Ctx, msg string, err error) error {
	logger.WithRayID(h.logger, c).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}
