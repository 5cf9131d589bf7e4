package fields

import (
	"fmt"
	"sort"
	"strings"
)

// errorMessageMaxFields caps how many allowed keys a validation error lists.
const errorMessageMaxFields = 10

// ValidationError reports a custom field configuration that references an
// unknown field key.
type ValidationError struct {
	FieldKey string
	Allowed  []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("unknown field key %q; allowed: %s", e.FieldKey, formatAllowed(e.Allowed))
}

func formatAllowed(keys []string) string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	if len(sorted) > errorMessageMaxFields {
		shown := strings.Join(sorted[:errorMessageMaxFields], ", ")
		return fmt.Sprintf("%s... (%d total)", shown, len(sorted))
	}
	return strings.Join(sorted, ", ")
}
