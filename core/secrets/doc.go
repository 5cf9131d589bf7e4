// Package secrets provides explicit encryption for credential values at rest.
//
// OAuth tokens, API keys, and client secrets are stored in the database as
// ciphertext. Encryption and decryption are deliberately free functions
// invoked at the point of persistence and the point of use; nothing in the
// model layer encrypts transparently, so it is always visible in the code
// where a secret is handled in the clear.
//
// The cipher is XChaCha20-Poly1305 with a random per-value nonce. The key
// comes from configuration as a 64-character hex string.
package secrets
