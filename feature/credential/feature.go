package credential

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface for credential
// administration.
type Feature struct {
	handler *Handler
}

// NewFeature wires the credential feature around existing services.
func NewFeature(repo *Repository, oauth *OAuth, key []byte, logger *zap.Logger) *Feature {
	return &Feature{handler: NewHandler(repo, oauth, key, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "credential"
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
