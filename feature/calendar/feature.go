package calendar

import (
	"rentalsync-bridge/core/cache"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface for the public feed
// routes.
type Feature struct {
	handler *Handler
}

// NewFeature wires the calendar feature.
func NewFeature(db *gorm.DB, feedCache *cache.Cache, logger *zap.Logger) *Feature {
	generator := NewGenerator(feedCache, logger)
	service := NewService(db, generator, logger)
	return &Feature{handler: NewHandler(service, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "calendar"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
