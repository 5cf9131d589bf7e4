package cloudbeds

// Config holds the remote API endpoints. Overridable for tests and for
// pointing at a sandbox environment.
type Config struct {
	APIBaseURL string `mapstructure:"api_base_url" default:"https://api.cloudbeds.com"`
	TokenURL   string `mapstructure:"token_url" default:"https://hotels.cloudbeds.com/api/v1.2/oauth/token"`
}
