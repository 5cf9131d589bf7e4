// Package fields maintains the per-property catalog of upstream reservation
// fields and the configuration that selects which of them appear in calendar
// descriptions. The catalog grows incrementally as syncs observe new scalar
// keys; nothing is ever removed from it automatically.
package fields
