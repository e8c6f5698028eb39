package constants

// Error codes used in API responses.
// These are the machine-readable codes returned in the "error" field.
const (
	// Common error codes
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeRateLimited    = "RATE_LIMITED"

	// Shortener-specific codes
	CodeInvalidURL           = "INVALID_URL"
	CodeInvalidSlug          = "INVALID_SLUG"
	CodeSlugTaken            = "SLUG_TAKEN"
	CodeSlugAllocationFailed = "SLUG_ALLOCATION_FAILED"
	CodeLinkNotFound         = "LINK_NOT_FOUND"
	CodeInvalidAPIKey        = "INVALID_API_KEY"

	// Success codes
	CodeLinkCreated   = "LINK_CREATED"
	CodeLinksFound    = "LINKS_FOUND"
	CodeLinkDeleted   = "LINK_DELETED"
	CodeStatsFound    = "STATS_FOUND"
	CodeAPIKeyCreated = "API_KEY_CREATED"
	CodeAPIKeysFound  = "API_KEYS_FOUND"
	CodeAPIKeyRevoked = "API_KEY_REVOKED"
	CodeHealthy       = "HEALTHY"
)
