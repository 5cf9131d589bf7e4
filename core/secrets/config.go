package secrets

// Config holds configuration for at-rest credential encryption.
type Config struct {
	// EncryptionKey is a hex-encoded 32-byte key for XChaCha20-Poly1305.
	EncryptionKey string `mapstructure:"encryption_key" default:""`
}
