package constants

// Error codes used in API responses.
// These are the machine-readable codes returned in the "error" field.
const (
	// Common error codes
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeRateLimited    = "RATE_LIMITED"

	// Redirect-specific codes
	CodeInvalidURL    = "INVALID_URL"
	CodeShortNotFound = "CODE_NOT_FOUND"
	CodeShortTaken    = "CODE_TAKEN"

	// Success codes
	CodeShortCreated   = "CODE_CREATED"
	CodeShortUpdated   = "CODE_UPDATED"
	CodeDeactivated    = "CODE_DEACTIVATED"
	CodeShortFound     = "CODE_FOUND"
	CodeAnalyticsFound = "ANALYTICS_FOUND"
	CodeVerdictFound   = "VERDICT_FOUND"
	CodeReportsFound   = "REPORTS_FOUND"
)
