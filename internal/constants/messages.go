package constants

// Error messages used in API responses.
// These are the human-readable messages returned in the "message" field.
const (
	// Common messages
	MsgInvalidRequestBody = "Invalid request body"
	MsgInternalError      = "An internal error occurred"
	MsgUnauthorized       = "Unauthorized"
	MsgRateLimited        = "Too many requests"

	// Redirect-specific messages
	MsgInvalidURL    = "Invalid destination URL (must be http or https)"
	MsgShortNotFound = "Short code not found"
	MsgShortTaken    = "Short code already in use"
)
