package constants

// Error messages used in API responses.
// These are the human-readable messages returned in the "message" field.
const (
	// Common messages
	MsgInvalidRequestBody = "Invalid request body"
	MsgInternalError      = "An internal error occurred"
	MsgUnauthorized       = "Unauthorized"
	MsgForbidden          = "You do not own this resource"
	MsgRateLimited        = "Rate limit exceeded"

	// Shortener-specific messages
	MsgInvalidURL           = "Invalid URL (must be http or https)"
	MsgInvalidSlug          = "Invalid custom slug"
	MsgSlugTaken            = "Custom slug already taken"
	MsgSlugAllocationFailed = "Failed to generate unique slug, please try again"
	MsgLinkNotFound         = "Link not found"
	MsgInvalidAPIKey        = "Invalid API key"
	MsgCustomSlugNeedsKey   = "customSlug requires an API key"
)
