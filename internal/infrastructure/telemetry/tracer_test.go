package telemetry

import "testing"

func TestExporterTarget(t *testing.T) {
	tests := []struct {
		in           string
		wantHost     string
		wantInsecure bool
	}{
		{"http://localhost:4318", "localhost:4318", true},
		{"https://otel.example.com/v1/traces", "otel.example.com", false},
		{"collector:4318", "collector:4318", true},
		{"collector:4318/v1/traces", "collector:4318", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			host, insecure := exporterTarget(tt.in)
			if host != tt.wantHost || insecure != tt.wantInsecure {
				t.Errorf("got (%q, %v), want (%q, %v)", host, insecure, tt.wantHost, tt.wantInsecure)
			}
		})
	}
}
