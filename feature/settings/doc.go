// Package settings persists runtime-adjustable system settings and applies
// them live, currently just the sync interval.
package settings
