// Package sync reconciles remote reservation batches against local
// bookings. Present reservations are inserted or updated, one booking per
// room under a composite key, and bookings missing from a batch are marked
// cancelled. Each property reconciles inside a single transaction; the
// calendar cache is invalidated only after it commits.
package sync
