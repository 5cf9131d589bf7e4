// Package utils provides common utility functions for the rentalsync-bridge
// application: small helpers shared across features that do not fit into a
// domain-specific package.
package utils
