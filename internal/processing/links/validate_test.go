package links

import (
	"errors"
	"strings"
	"testing"
)

func TestURLValidatorValidate(t *testing.T) {
	v := NewURLValidator()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{"valid https", "https://example.com/path", "https://example.com/path", nil},
		{"valid http", "http://example.com", "http://example.com", nil},
		{"no scheme gets https", "example.com/page", "https://example.com/page", nil},
		{"www prefix gets https", "www.example.com", "https://www.example.com", nil},
		{"www with port", "www.example.com:8080/x", "https://www.example.com:8080/x", nil},
		{"whitespace trimmed", "  https://example.com  ", "https://example.com", nil},
		{"localhost", "http://localhost:3000/a", "http://localhost:3000/a", nil},
		{"ipv4", "http://192.168.1.10/x", "http://192.168.1.10/x", nil},
		{"ipv6", "http://[2001:db8::1]:8080/", "http://[2001:db8::1]:8080/", nil},
		{"uppercase scheme", "HTTPS://example.com", "HTTPS://example.com", nil},
		{"hyphenated labels", "https://my-site.co.uk", "https://my-site.co.uk", nil},

		{"empty", "", "", ErrEmptyInput},
		{"blank", "   ", "", ErrEmptyInput},
		{"interior space", "https://exa mple.com", "", ErrContainsWhitespace},
		{"interior tab", "example.com/\tpage", "", ErrContainsWhitespace},
		{"ftp scheme", "ftp://example.com", "", ErrUnsupportedScheme},
		{"mailto scheme", "mailto:someone@example.com", "", ErrUnsupportedScheme},
		{"bare host with port reads as scheme", "localhost:3000", "", ErrUnsupportedScheme},
		{"missing host", "https://", "", ErrInvalidHostname},
		{"single label", "https://intranet", "", ErrInvalidHostname},
		{"octet out of range", "http://256.1.1.1", "", ErrInvalidHostname},
		{"leading hyphen label", "https://-bad.example.com", "", ErrInvalidHostname},
		{"trailing hyphen label", "https://bad-.example.com", "", ErrInvalidHostname},
		{"malformed escape", "https://example.com/%zz", "", ErrMalformedURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Validate(%q) err = %v, want %v", tt.raw, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestURLValidatorIdempotent(t *testing.T) {
	v := NewURLValidator()
	inputs := []string{
		"example.com/page",
		"www.example.com",
		"https://example.com/a?b=c#d",
		"http://localhost:8080",
		"http://[::1]/",
	}

	for _, in := range inputs {
		first, err := v.Validate(in)
		if err != nil {
			t.Fatalf("Validate(%q): %v", in, err)
		}
		second, err := v.Validate(first)
		if err != nil {
			t.Fatalf("Validate(%q) second pass: %v", first, err)
		}
		if first != second {
			t.Errorf("not idempotent: %q -> %q -> %q", in, first, second)
		}
	}
}

func TestURLValidatorBlockedContent(t *testing.T) {
	v := NewURLValidator()

	for _, pattern := range DefaultBlockedPatterns {
		inputs := []string{
			"https://example.com/" + pattern,
			"https://" + strings.ToUpper(pattern) + "-site.com",
			"ftp://" + pattern + ".example", // bad scheme still blocked
			"https://intranet/" + pattern,   // bad hostname still blocked
			"example.com/?q=" + strings.ToUpper(pattern[:1]) + pattern[1:],
		}
		for _, in := range inputs {
			if _, err := v.Validate(in); !errors.Is(err, ErrBlockedContent) {
				t.Errorf("Validate(%q) err = %v, want ErrBlockedContent", in, err)
			}
		}
	}
}

func TestURLValidatorWhitespaceBeforeAnythingElse(t *testing.T) {
	v := NewURLValidator()

	// Blocked words and hopeless hostnames lose to the whitespace rule.
	for _, in := range []string{"https://porn site.com", "ftp://a b", "-- --"} {
		if _, err := v.Validate(in); !errors.Is(err, ErrContainsWhitespace) {
			t.Errorf("Validate(%q) err = %v, want ErrContainsWhitespace", in, err)
		}
	}
}

func TestURLValidatorCustomDenylist(t *testing.T) {
	v := NewURLValidator("casino", "  ")

	if _, err := v.Validate("https://casino.example.com"); !errors.Is(err, ErrBlockedContent) {
		t.Errorf("expected custom pattern to block, got %v", err)
	}
	if _, err := v.Validate("https://example.com/xxx"); err != nil {
		t.Errorf("default patterns must not apply when a custom list is given, got %v", err)
	}
}

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		wantErr error
	}{
		{"simple", "promo", nil},
		{"mixed charset", "A-b_9", nil},
		{"max length", strings.Repeat("a", MaxSlugLength), nil},
		{"too long", strings.Repeat("a", MaxSlugLength+1), ErrSlugTooLong},
		{"space", "my promo", ErrSlugInvalidCharacters},
		{"slash", "a/b", ErrSlugInvalidCharacters},
		{"unicode", "café", ErrSlugInvalidCharacters},
		{"empty", "", ErrSlugInvalidCharacters},
		{"reserved", "api", ErrSlugReserved},
		{"reserved any case", "Health", ErrSlugReserved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateSlug(%q) err = %v, want %v", tt.slug, err, tt.wantErr)
			}
		})
	}
}

func TestIsWellFormedSlug(t *testing.T) {
	if !IsWellFormedSlug("abc_-1") {
		t.Error("expected abc_-1 to be well formed")
	}
	for _, s := range []string{"", "a.b", strings.Repeat("x", MaxSlugLength+1), "%2F"} {
		if IsWellFormedSlug(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}
