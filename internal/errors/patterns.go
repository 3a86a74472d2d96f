package errors

// Non-retryable error patterns - these indicate permanent failures
const (
	ErrPatternBadRequest       = "bad request"
	ErrPatternUnauthorized     = "unauthorized"
	ErrPatternForbidden        = "forbidden"
	ErrPatternUnprocessable    = "unprocessable entity"
	ErrPatternInvalid          = "invalid"
	ErrPatternMalformed        = "malformed"
	ErrPatternContextCanceled  = "context canceled"
	ErrPatternContextDeadline  = "context deadline exceeded"
	ErrPatternDecodeResponse   = "decode response"
	ErrPatternUnsuccessfulCall = "api reported failure"
)

// Not found error patterns - these indicate missing resources
const (
	ErrPatternNotFound     = "not found"
	ErrPatternDoesNotExist = "does not exist"
)

// NonRetryableErrorPatterns contains all error patterns that should not be retried
var NonRetryableErrorPatterns = []string{
	ErrPatternBadRequest,
	ErrPatternUnauthorized,
	ErrPatternForbidden,
	ErrPatternUnprocessable,
	ErrPatternInvalid,
	ErrPatternMalformed,
	ErrPatternContextCanceled,
	ErrPatternContextDeadline,
	ErrPatternDecodeResponse,
	ErrPatternUnsuccessfulCall,
}

// NotFoundErrorPatterns contains all error patterns that indicate a resource was not found
var NotFoundErrorPatterns = []string{
	ErrPatternNotFound,
	ErrPatternDoesNotExist,
}
