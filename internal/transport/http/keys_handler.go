package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/IgorGrieder/slugs/internal/constants"
	"github.com/IgorGrieder/slugs/internal/infrastructure/logger"
	appvalidation "github.com/IgorGrieder/slugs/internal/infrastructure/validation"
	"github.com/IgorGrieder/slugs/internal/processing/apikeys"
	"github.com/IgorGrieder/slugs/internal/transport/http/middleware"
	"github.com/IgorGrieder/slugs/pkg/httputils"
	"go.uber.org/zap"
)

type KeysHandler struct {
	keys         *apikeys.Authority
	maxBodyBytes int64
}

func NewKeysHandler(keys *apikeys.Authority, maxBodyBytes int64) *KeysHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	return &KeysHandler{keys: keys, maxBodyBytes: maxBodyBytes}
}

type createKeyRequest struct {
	Name          string `json:"name" validate:"required,notblank,max=100"`
	ExpiresInDays *int   `json:"expiresInDays,omitempty" validate:"omitempty,min=1"`
}

type keyResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

type issuedKeyResponse struct {
	keyResponse
	Key string `json:"key"`
}

func toKeyResponse(k *apikeys.APIKey) keyResponse {
	return keyResponse{
		ID:         k.ID,
		Name:       k.Name,
		Prefix:     k.Prefix,
		CreatedAt:  k.CreatedAt,
		LastUsedAt: k.LastUsedAt,
		ExpiresAt:  k.ExpiresAt,
	}
}

// Create issues a key. The secret appears in this response only.
func (h *KeysHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.Principal(r.Context())

	var req createKeyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		var details []httputils.ErrorDetail
		for _, fe := range appvalidation.Fields(err) {
			details = append(details, httputils.ErrorDetail{Field: fe.Field, Rule: fe.Rule})
		}
		httputils.WriteAPIErrorDetails(w, r, constants.ErrInvalidRequestBody, details)
		return
	}

	issued, err := h.keys.Issue(r.Context(), ownerID, req.Name, req.ExpiresInDays)
	if err != nil {
		switch {
		case errors.Is(err, apikeys.ErrInvalidName), errors.Is(err, apikeys.ErrInvalidExpiry):
			httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody.WithMessage(err.Error()))
		case errors.Is(err, apikeys.ErrOwnerRequired):
			httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
		default:
			logger.Error("failed to issue api key", zap.Error(err), zap.String("owner_id", ownerID))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessAPIKeyCreated, issuedKeyResponse{
		keyResponse: toKeyResponse(&issued.APIKey),
		Key:         issued.Secret,
	})
}

func (h *KeysHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.Principal(r.Context())

	keys, err := h.keys.ListForOwner(r.Context(), ownerID)
	if err != nil {
		logger.Error("failed to list api keys", zap.Error(err), zap.String("owner_id", ownerID))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}

	out := make([]keyResponse, 0, len(keys))
	for _, k := range keys {
		out = append(out, toKeyResponse(k))
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessAPIKeysFound, out)
}

// Revoke answers 200 whether or not the key existed or belonged to the
// caller.
func (h *KeysHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.Principal(r.Context())
	id := r.PathValue("id")

	if err := h.keys.Revoke(r.Context(), id, ownerID); err != nil {
		logger.Error("failed to revoke api key", zap.Error(err), zap.String("key_id", id))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessAPIKeyRevoked, map[string]bool{"success": true})
}
