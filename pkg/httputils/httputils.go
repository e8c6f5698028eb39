package httputils

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/IgorGrieder/slugs/internal/constants"
	"github.com/IgorGrieder/slugs/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const CorrelationIDHeader = "X-Correlation-Id"

// APIResponse wraps all API responses with metadata
type APIResponse struct {
	ResponseTime  time.Time `json:"responseTime" example:"2024-01-15T10:30:00Z"`
	CorrelationId string    `json:"correlationId" example:"550e8400-e29b-41d4-a716-446655440000"`
	Code          string    `json:"code,omitempty" example:"LINK_CREATED"`
	Data          any       `json:"data,omitempty"`
	Error         string    `json:"error,omitempty" example:"INVALID_REQUEST"`
	Message       string    `json:"message,omitempty" example:"Request processed successfully"`
	Details       any       `json:"details,omitempty"`
}

// ErrorDetail names the rule a request field violated.
type ErrorDetail struct {
	Field string `json:"field,omitempty"`
	Rule  string `json:"rule"`
	Issue string `json:"issue,omitempty"`
}

// GetCorrelationID returns the inbound correlation id, or a new UUID v4.
func GetCorrelationID(r *http.Request) string {
	correlationID := r.Header.Get(CorrelationIDHeader)
	if correlationID == "" {
		correlationID = uuid.New().String()
		r.Header.Set(CorrelationIDHeader, correlationID)
	}
	return correlationID
}

// NewErrorResponse builds the envelope for apiErr without writing it.
func NewErrorResponse(r *http.Request, apiErr constants.APIError, details any) APIResponse {
	return APIResponse{
		ResponseTime:  time.Now().UTC(),
		CorrelationId: GetCorrelationID(r),
		Error:         apiErr.Code,
		Message:       apiErr.Message,
		Details:       details,
	}
}

// WriteAPIError writes an error response with metadata using a predefined APIError
func WriteAPIError(w http.ResponseWriter, r *http.Request, apiErr constants.APIError) {
	WriteAPIErrorDetails(w, r, apiErr, nil)
}

func WriteAPIErrorDetails(w http.ResponseWriter, r *http.Request, apiErr constants.APIError, details any) {
	resp := NewErrorResponse(r, apiErr, details)
	w.Header().Set(CorrelationIDHeader, resp.CorrelationId)
	WriteJSON(w, apiErr.Status, resp)
}

// WriteAPISuccess writes a success response with metadata using a predefined APISuccess
func WriteAPISuccess(w http.ResponseWriter, r *http.Request, apiSuccess constants.APISuccess, data any) {
	correlationID := GetCorrelationID(r)
	w.Header().Set(CorrelationIDHeader, correlationID)

	WriteJSON(w, apiSuccess.Status, APIResponse{
		ResponseTime:  time.Now().UTC(),
		CorrelationId: correlationID,
		Code:          apiSuccess.Code,
		Data:          data,
	})
}

// WriteJSON writes body as-is, without the envelope.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode json response", zap.Error(err))
	}
}
