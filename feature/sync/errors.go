package sync

import "fmt"

// SyncError reports a failed sync run for one property. The underlying cause
// is a remote or credential error.
type SyncError struct {
	PropertyRemoteID string
	Err              error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed for property %s: %v", e.PropertyRemoteID, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *SyncError) Unwrap() error {
	return e.Err
}
