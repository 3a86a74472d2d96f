package errors

import (
	"strings"
)

// IsNotFoundError checks if an error indicates a resource was not found.
func IsNotFoundError(err error) bool {
	return matchesAny(err, NotFoundErrorPatterns)
}

// IsNonRetryableError determines if an error should not be retried.
func IsNonRetryableError(err error) bool {
	return matchesAny(err, NonRetryableErrorPatterns)
}

func matchesAny(err error, patterns []string) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range patterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
