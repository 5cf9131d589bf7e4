package credential

import (
	"context"
	"net/http"
	"time"

	"rentalsync-bridge/core/secrets"
	"rentalsync-bridge/feature/cloudbeds"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// tokenExpiryBuffer triggers a refresh shortly before the token actually
// expires, so an in-flight sync never races the expiry.
const tokenExpiryBuffer = 5 * time.Minute

const refreshTimeout = 30 * time.Second

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// OAuth manages the remote token lifecycle: expiry checks, refresh against
// the token endpoint, and encrypted persistence.
type OAuth struct {
	repo   *Repository
	http   *resty.Client
	key    []byte
	logger *zap.Logger
}

// NewOAuth builds the token service. key is the secrets encryption key.
func NewOAuth(repo *Repository, cfg cloudbeds.Config, key []byte, logger *zap.Logger) *OAuth {
	httpClient := resty.New().
		SetBaseURL(cfg.TokenURL).
		SetTimeout(refreshTimeout).
		SetHeader("Accept", "application/json")

	return &OAuth{repo: repo, http: httpClient, key: key, logger: logger}
}

// ShouldRefresh reports whether the access token is expired or will expire
// within the buffer window.
func (o *OAuth) ShouldRefresh(cred *Credential) bool {
	if cred.IsTokenExpired() {
		return true
	}
	return !cred.TokenExpiresAt.After(time.Now().UTC().Add(tokenExpiryBuffer))
}

// AccessToken decrypts the usable bearer token: the OAuth access token when
// present, otherwise the static API key. Returns a CredentialError when the
// credential carries neither.
func (o *OAuth) AccessToken(cred *Credential) (string, error) {
	if cred == nil {
		return "", &CredentialError{Reason: "no credential configured"}
	}
	if cred.AccessToken != "" {
		token, err := secrets.Decrypt(o.key, cred.AccessToken)
		if err != nil {
			return "", &CredentialError{Reason: "access token decryption failed", Err: err}
		}
		return token, nil
	}
	if cred.APIKey != "" {
		key, err := secrets.Decrypt(o.key, cred.APIKey)
		if err != nil {
			return "", &CredentialError{Reason: "API key decryption failed", Err: err}
		}
		return key, nil
	}
	return "", &CredentialError{Reason: "no access token or API key configured"}
}

// Refresh exchanges the refresh token for a new token pair. The credential
// is not persisted; see RefreshAndSave.
func (o *OAuth) Refresh(ctx context.Context, cred *Credential) (access, refresh string, expiresAt time.Time, err error) {
	if cred.RefreshToken == "" {
		return "", "", time.Time{}, &CredentialError{Reason: "no refresh token available"}
	}

	refreshToken, err := secrets.Decrypt(o.key, cred.RefreshToken)
	if err != nil {
		return "", "", time.Time{}, &CredentialError{Reason: "refresh token decryption failed", Err: err}
	}
	clientSecret, err := secrets.Decrypt(o.key, cred.ClientSecret)
	if err != nil {
		return "", "", time.Time{}, &CredentialError{Reason: "client secret decryption failed", Err: err}
	}

	var tokens tokenResponse
	resp, err := o.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"client_id":     cred.ClientID,
			"client_secret": clientSecret,
			"refresh_token": refreshToken,
		}).
		SetResult(&tokens).
		Post("")
	if err != nil {
		return "", "", time.Time{}, &CredentialError{Reason: "token endpoint unreachable", Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		o.logger.Error("token refresh rejected", zap.Int("status", resp.StatusCode()))
		return "", "", time.Time{}, &CredentialError{Reason: "token refresh rejected by remote"}
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return "", "", time.Time{}, &CredentialError{Reason: "token response incomplete"}
	}

	expiresIn := tokens.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	expiresAt = time.Now().UTC().Add(time.Duration(expiresIn) * time.Second)
	return tokens.AccessToken, tokens.RefreshToken, expiresAt, nil
}

// RefreshAndSave refreshes the token pair and persists it encrypted.
func (o *OAuth) RefreshAndSave(ctx context.Context, cred *Credential) error {
	access, refresh, expiresAt, err := o.Refresh(ctx, cred)
	if err != nil {
		return err
	}

	encAccess, err := secrets.Encrypt(o.key, access)
	if err != nil {
		return &CredentialError{Reason: "access token encryption failed", Err: err}
	}
	encRefresh, err := secrets.Encrypt(o.key, refresh)
	if err != nil {
		return &CredentialError{Reason: "refresh token encryption failed", Err: err}
	}

	cred.AccessToken = encAccess
	cred.RefreshToken = encRefresh
	cred.TokenExpiresAt = &expiresAt

	if err := o.repo.Save(ctx, cred); err != nil {
		return &CredentialError{Reason: "credential persistence failed", Err: err}
	}

	o.logger.Info("access token refreshed", zap.Time("expires_at", expiresAt))
	return nil
}

// EnsureFresh refreshes and persists the token pair when needed and returns
// the usable bearer token.
func (o *OAuth) EnsureFresh(ctx context.Context, cred *Credential) (string, error) {
	if cred == nil {
		return "", &CredentialError{Reason: "no credential configured"}
	}
	if cred.HasOAuth() && o.ShouldRefresh(cred) {
		if err := o.RefreshAndSave(ctx, cred); err != nil {
			return "", err
		}
	}
	return o.AccessToken(cred)
}
