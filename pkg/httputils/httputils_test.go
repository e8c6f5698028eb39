package httputils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/IgorGrieder/slugs/internal/constants"
)

func TestWriteAPIError_EchoesCorrelationID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "corr-123")
	rec := httptest.NewRecorder()

	WriteAPIErrorDetails(rec, req, constants.ErrInvalidURL, []ErrorDetail{{Field: "url", Rule: "MALFORMED_URL"}})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", rec.Code)
	}
	if got := rec.Header().Get(CorrelationIDHeader); got != "corr-123" {
		t.Errorf("got correlation id %q", got)
	}

	var body struct {
		CorrelationID string        `json:"correlationId"`
		Error         string        `json:"error"`
		Message       string        `json:"message"`
		Details       []ErrorDetail `json:"details"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.CorrelationID != "corr-123" || body.Error != constants.CodeInvalidURL {
		t.Errorf("unexpected body %+v", body)
	}
	if len(body.Details) != 1 || body.Details[0].Rule != "MALFORMED_URL" {
		t.Errorf("unexpected details %+v", body.Details)
	}
}

func TestWriteAPISuccess_GeneratesCorrelationID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	WriteAPISuccess(rec, req, constants.SuccessStatsFound, map[string]int{"totalUrls": 1})

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if rec.Header().Get(CorrelationIDHeader) == "" {
		t.Error("expected a generated correlation id")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("got content type %q", ct)
	}
}
