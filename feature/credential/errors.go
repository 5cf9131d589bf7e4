package credential

import "fmt"

// CredentialError reports an unusable or unrefreshable credential. Messages
// describe the failure mode only and never carry token or secret material.
type CredentialError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential error: %s", e.Reason)
}

// Unwrap exposes the underlying cause.
func (e *CredentialError) Unwrap() error {
	return e.Err
}
