package credential

import "time"

// Credential stores the remote API credentials. Secret columns hold
// ciphertext produced by core/secrets; plaintext exists only transiently at
// the point of use.
type Credential struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID string `gorm:"size:255" json:"client_id"`

	// Encrypted columns. Never logged, never returned by the API.
	ClientSecret string `gorm:"size:1024" json:"-"`
	APIKey       string `gorm:"size:1024" json:"-"`
	AccessToken  string `gorm:"size:2048" json:"-"`
	RefreshToken string `gorm:"size:2048" json:"-"`

	TokenExpiresAt *time.Time `json:"token_expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTokenExpired reports whether the access token has passed its expiry. A
// credential without an expiry is treated as expired so a refresh is
// attempted before first use.
func (c *Credential) IsTokenExpired() bool {
	if c.TokenExpiresAt == nil {
		return true
	}
	return !c.TokenExpiresAt.After(time.Now().UTC())
}

// HasOAuth reports whether the credential carries an OAuth token pair.
func (c *Credential) HasOAuth() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}
