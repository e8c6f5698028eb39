package links

import (
	"net/netip"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ValidationError is returned for input that breaks one of the URL or slug
// rules. Rule is a stable machine-readable name for the violated rule.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrEmptyInput         = &ValidationError{Rule: "EMPTY_INPUT", Message: "url must not be empty"}
	ErrContainsWhitespace = &ValidationError{Rule: "CONTAINS_WHITESPACE", Message: "url cannot contain spaces"}
	ErrMalformedURL       = &ValidationError{Rule: "MALFORMED_URL", Message: "url could not be parsed"}
	ErrUnsupportedScheme  = &ValidationError{Rule: "UNSUPPORTED_SCHEME", Message: "url must use http:// or https://"}
	ErrInvalidHostname    = &ValidationError{Rule: "INVALID_HOSTNAME", Message: "url has an invalid domain name"}
	ErrBlockedContent     = &ValidationError{Rule: "BLOCKED_CONTENT", Message: "this type of content is not allowed"}

	ErrSlugInvalidCharacters = &ValidationError{Rule: "INVALID_CHARACTERS", Message: "slug may only contain letters, digits, '-' and '_'"}
	ErrSlugTooLong           = &ValidationError{Rule: "TOO_LONG", Message: "slug must be at most 50 characters"}
	ErrSlugReserved          = &ValidationError{Rule: "RESERVED_SLUG", Message: "slug is reserved"}
)

const MaxSlugLength = 50

// DefaultBlockedPatterns are matched case-insensitively as substrings of the
// normalized URL.
var DefaultBlockedPatterns = []string{"porn", "xxx", "adult", "sex", "escort", "nsfw"}

var (
	schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z\d+.-]*:`)
	ipv4Pattern  = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
	labelPattern = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)
	slugPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	// Slugs that would shadow service routes.
	reservedSlugs = map[string]struct{}{
		"api":     {},
		"health":  {},
		"metrics": {},
	}
)

type URLValidator struct {
	blocked []string
}

// NewURLValidator builds a validator with the given denylist, falling back
// to DefaultBlockedPatterns when none is supplied.
func NewURLValidator(blockedPatterns ...string) *URLValidator {
	if len(blockedPatterns) == 0 {
		blockedPatterns = DefaultBlockedPatterns
	}
	blocked := make([]string, 0, len(blockedPatterns))
	for _, p := range blockedPatterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			blocked = append(blocked, p)
		}
	}
	return &URLValidator{blocked: blocked}
}

// Validate normalizes raw into a scheme-qualified http(s) URL. The checks
// run in a fixed order: empty, whitespace, blocked content, parse, scheme,
// hostname.
func (v *URLValidator) Validate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyInput
	}
	if strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return "", ErrContainsWhitespace
	}

	normalized := normalizeURL(raw)
	if v.isBlocked(normalized) {
		return "", ErrBlockedContent
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return "", ErrMalformedURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrUnsupportedScheme
	}
	if !isValidHostname(u.Hostname()) {
		return "", ErrInvalidHostname
	}

	return normalized, nil
}

func (v *URLValidator) isBlocked(s string) bool {
	s = strings.ToLower(s)
	for _, p := range v.blocked {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// ValidateSlug checks a user-chosen slug. Uniqueness is the repository's job.
func ValidateSlug(candidate string) error {
	if !slugPattern.MatchString(candidate) {
		return ErrSlugInvalidCharacters
	}
	if len(candidate) > MaxSlugLength {
		return ErrSlugTooLong
	}
	if _, ok := reservedSlugs[strings.ToLower(candidate)]; ok {
		return ErrSlugReserved
	}
	return nil
}

// IsWellFormedSlug reports whether s could name a link at all.
func IsWellFormedSlug(s string) bool {
	return len(s) > 0 && len(s) <= MaxSlugLength && slugPattern.MatchString(s)
}

func normalizeURL(raw string) string {
	if strings.HasPrefix(raw, "www.") {
		return "https://" + raw
	}
	if !schemePrefix.MatchString(raw) {
		return "https://" + raw
	}
	return raw
}

func isValidHostname(host string) bool {
	if host == "" {
		return false
	}
	if host == "localhost" {
		return true
	}

	if ipv4Pattern.MatchString(host) {
		for _, part := range strings.Split(host, ".") {
			n, err := strconv.Atoi(part)
			if err != nil || n > 255 {
				return false
			}
		}
		return true
	}

	if strings.Contains(host, ":") {
		addr, err := netip.ParseAddr(host)
		return err == nil && addr.Is6()
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !labelPattern.MatchString(label) {
			return false
		}
	}
	return true
}
