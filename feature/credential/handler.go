package credential

import (
	"errors"
	"time"

	"rentalsync-bridge/core/logger"
	"rentalsync-bridge/core/secrets"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the credential administration endpoints. Responses carry
// status only, never secret material.
type Handler struct {
	repo   *Repository
	oauth  *OAuth
	key    []byte
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(repo *Repository, oauth *OAuth, key []byte, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, oauth: oauth, key: key, logger: logger}
}

// RegisterRoutes registers the credential routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/credential")
	group.Get("/", h.HandleStatus)
	group.Put("/", h.HandleUpsert)
	group.Post("/refresh", h.HandleRefresh)
}

// HandleStatus reports whether a credential exists and its token expiry.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	cred, err := h.repo.Get(c.Context())
	if err != nil {
		return h.internalError(c, "Failed to load credential", err)
	}
	if cred == nil {
		return c.JSON(fiber.Map{"configured": false})
	}
	return c.JSON(fiber.Map{
		"configured":       true,
		"client_id":        cred.ClientID,
		"has_oauth":        cred.HasOAuth(),
		"has_api_key":      cred.APIKey != "",
		"token_expires_at": cred.TokenExpiresAt,
		"token_expired":    cred.IsTokenExpired(),
	})
}

type credentialRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	APIKey       string `json:"api_key"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// HandleUpsert stores credentials, encrypting every secret field. Omitted
// fields keep their stored values.
func (h *Handler) HandleUpsert(c *fiber.Ctx) error {
	var req credentialRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	cred, err := h.repo.Get(c.Context())
	if err != nil {
		return h.internalError(c, "Failed to load credential", err)
	}
	if cred == nil {
		cred = &Credential{}
	}

	if req.ClientID != "" {
		cred.ClientID = req.ClientID
	}
	for _, field := range []struct {
		plaintext string
		target    *string
	}{
		{req.ClientSecret, &cred.ClientSecret},
		{req.APIKey, &cred.APIKey},
		{req.AccessToken, &cred.AccessToken},
		{req.RefreshToken, &cred.RefreshToken},
	} {
		if field.plaintext == "" {
			continue
		}
		encrypted, err := secrets.Encrypt(h.key, field.plaintext)
		if err != nil {
			return h.internalError(c, "Failed to encrypt credential", err)
		}
		*field.target = encrypted
	}

	if req.ExpiresIn > 0 {
		expiresAt := time.Now().UTC().Add(time.Duration(req.ExpiresIn) * time.Second)
		cred.TokenExpiresAt = &expiresAt
	}

	if err := h.repo.Save(c.Context(), cred); err != nil {
		return h.internalError(c, "Failed to save credential", err)
	}
	return c.JSON(fiber.Map{"configured": true})
}

// HandleRefresh forces a token refresh.
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	cred, err := h.repo.Get(c.Context())
	if err != nil {
		return h.internalError(c, "Failed to load credential", err)
	}
	if cred == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "no credential configured"})
	}

	if err := h.oauth.RefreshAndSave(c.Context(), cred); err != nil {
		var credErr *CredentialError
		if errors.As(err, &credErr) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": credErr.Error()})
		}
		return h.internalError(c, "Token refresh failed", err)
	}
	return c.JSON(fiber.Map{
		"refreshed":        true,
		"token_expires_at": cred.TokenExpiresAt,
	})
}

func (h *Handler) internalError(c *fiber.Ctx, msg string, err error) error {
	logger.WithRayID(h.logger, c).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}
