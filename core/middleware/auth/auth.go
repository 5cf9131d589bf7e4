package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// Config holds settings for the API key middleware.
type Config struct {
	// ApiKey is the expected key. If empty, all requests are rejected;
	// the admin API must be explicitly configured to be reachable.
	ApiKey string
}

// HeaderName is the request header carrying the API key.
const HeaderName = "X-Api-Key"

// New creates a middleware that validates the API key header using a
// constant-time comparison.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get(HeaderName)
		if cfg.ApiKey == "" || provided == "" ||
			subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.ApiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing API key",
			})
		}
		return c.Next()
	}
}
