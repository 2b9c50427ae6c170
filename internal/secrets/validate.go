package secrets

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError lists required settings that were left empty.
type ValidationError struct {
	Empty []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("empty values for required environment variables: %s", strings.Join(e.Empty, ", "))
}

// ValidateRequired checks that every value in required is non-blank.
// Keys in the error are sorted for stable messages.
func ValidateRequired(required map[string]string) error {
	var empty []string
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			empty = append(empty, key)
		}
	}
	if len(empty) == 0 {
		return nil
	}
	sort.Strings(empty)
	return &ValidationError{Empty: empty}
}
