package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	URL        string `json:"url" validate:"notblank,max=2048"`
	CustomSlug string `json:"customSlug,omitempty" validate:"omitempty,slugchars,max=50"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		in        sample
		wantField string
		wantRule  string
	}{
		{"valid", sample{URL: "example.com"}, "", ""},
		{"blank url", sample{URL: "   "}, "url", "notblank"},
		{"bad slug chars", sample{URL: "example.com", CustomSlug: "no spaces"}, "customSlug", "slugchars"},
		{"long slug", sample{URL: "example.com", CustomSlug: strings.Repeat("a", 51)}, "customSlug", "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := Fields(Validate(tt.in))
			if tt.wantField == "" {
				if len(fields) != 0 {
					t.Fatalf("expected no errors, got %+v", fields)
				}
				return
			}
			if len(fields) != 1 {
				t.Fatalf("expected one field error, got %+v", fields)
			}
			if fields[0].Field != tt.wantField || fields[0].Rule != tt.wantRule {
				t.Errorf("got %+v, want %s/%s", fields[0], tt.wantField, tt.wantRule)
			}
		})
	}
}

func TestFields_IgnoresForeignErrors(t *testing.T) {
	if got := Fields(errors.New("boom")); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
	if got := Fields(nil); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}
