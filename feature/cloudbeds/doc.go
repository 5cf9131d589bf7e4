// Package cloudbeds wraps the remote reservation API: reservation listing
// with guest details, property metadata lookup, and rate-limit aware
// retries. Tokens are passed in per call; credential storage and refresh
// live in feature/credential.
package cloudbeds
