package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/IgorGrieder/slugs/internal/constants"
	"github.com/IgorGrieder/slugs/internal/infrastructure/logger"
	appvalidation "github.com/IgorGrieder/slugs/internal/infrastructure/validation"
	"github.com/IgorGrieder/slugs/internal/processing/apikeys"
	"github.com/IgorGrieder/slugs/internal/processing/links"
	"github.com/IgorGrieder/slugs/internal/transport/http/middleware"
	"github.com/IgorGrieder/slugs/pkg/httputils"
	"go.uber.org/zap"
)

type LinksHandlerOptions struct {
	// BaseURL prefixes short URLs. Empty means derive it from the request.
	BaseURL        string
	RedirectStatus int
	NotFoundURL    string
	MaxBodyBytes   int64
}

type LinksHandler struct {
	svc  *links.Service
	keys *apikeys.Authority

	baseURL        string
	redirectStatus int
	notFoundURL    string
	maxBodyBytes   int64
}

func NewLinksHandler(svc *links.Service, keys *apikeys.Authority, opts LinksHandlerOptions) *LinksHandler {
	if opts.RedirectStatus != http.StatusMovedPermanently {
		opts.RedirectStatus = http.StatusFound
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}

	return &LinksHandler{
		svc:            svc,
		keys:           keys,
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		redirectStatus: opts.RedirectStatus,
		notFoundURL:    opts.NotFoundURL,
		maxBodyBytes:   opts.MaxBodyBytes,
	}
}

type createLinkRequest struct {
	URL        string `json:"url" validate:"required,notblank,max=2048"`
	CustomSlug string `json:"customSlug,omitempty" validate:"omitempty,slugchars,max=50"`
}

type shortenResponse struct {
	ID        string    `json:"id"`
	ShortURL  string    `json:"shortUrl"`
	Slug      string    `json:"slug"`
	LongURL   string    `json:"longUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type linkResponse struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	ShortURL  string    `json:"shortUrl"`
	LongURL   string    `json:"longUrl"`
	Clicks    int64     `json:"clicks"`
	CreatedAt time.Time `json:"createdAt"`
}

// Shorten is the programmatic creation endpoint. The rate limiter has
// already counted the request. Success is the bare JSON object, not the
// envelope.
func (h *LinksHandler) Shorten(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCreate(w, r)
	if !ok {
		return
	}

	token, hasToken := middleware.BearerToken(r)
	if req.CustomSlug != "" && !hasToken {
		httputils.WriteAPIErrorDetails(w, r,
			constants.ErrInvalidSlug.WithMessage(constants.MsgCustomSlugNeedsKey),
			[]httputils.ErrorDetail{{Field: "customSlug", Rule: "requires_api_key"}},
		)
		return
	}

	var ownerID string
	if hasToken {
		key, err := h.keys.Validate(r.Context(), token)
		if err != nil {
			if errors.Is(err, apikeys.ErrInvalidCredential) {
				httputils.WriteAPIError(w, r, constants.ErrInvalidAPIKey)
				return
			}
			logger.Error("failed to validate api key", zap.Error(err))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
			return
		}
		if err := h.keys.Touch(r.Context(), key.ID); err != nil {
			logger.Warn("failed to record api key usage", zap.Error(err), zap.String("key_id", key.ID))
		}
		ownerID = key.OwnerID
	}

	link, err := h.svc.Create(r.Context(), links.CreateLinkInput{
		URL:        req.URL,
		OwnerID:    ownerID,
		CustomSlug: req.CustomSlug,
	})
	if err != nil {
		h.writeCreateError(w, r, err, ownerID)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, shortenResponse{
		ID:        link.ID,
		ShortURL:  h.shortURL(r, link.Slug),
		Slug:      link.Slug,
		LongURL:   link.URL,
		CreatedAt: link.CreatedAt,
	})
}

// Create is the interactive variant used by the dashboard. The principal is
// always the owner.
func (h *LinksHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.Principal(r.Context())

	req, ok := h.decodeCreate(w, r)
	if !ok {
		return
	}

	link, err := h.svc.Create(r.Context(), links.CreateLinkInput{
		URL:        req.URL,
		OwnerID:    ownerID,
		CustomSlug: req.CustomSlug,
	})
	if err != nil {
		h.writeCreateError(w, r, err, ownerID)
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessLinkCreated, h.toLinkResponse(r, link))
}

func (h *LinksHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.Principal(r.Context())

	owned, err := h.svc.ListForOwner(r.Context(), ownerID)
	if err != nil {
		logger.Error("failed to list links", zap.Error(err), zap.String("owner_id", ownerID))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}

	out := make([]linkResponse, 0, len(owned))
	for _, link := range owned {
		out = append(out, h.toLinkResponse(r, link))
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessLinksFound, out)
}

func (h *LinksHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.Principal(r.Context())

	stats, err := h.svc.StatsForOwner(r.Context(), ownerID)
	if err != nil {
		logger.Error("failed to aggregate link stats", zap.Error(err), zap.String("owner_id", ownerID))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessStatsFound, stats)
}

func (h *LinksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.Principal(r.Context())
	id := r.PathValue("id")

	err := h.svc.Delete(r.Context(), id, ownerID)
	switch {
	case err == nil:
		httputils.WriteAPISuccess(w, r, constants.SuccessLinkDeleted, map[string]string{"id": id})
	case errors.Is(err, links.ErrNotFound):
		httputils.WriteAPIError(w, r, constants.ErrLinkNotFound)
	case errors.Is(err, links.ErrForbidden):
		httputils.WriteAPIError(w, r, constants.ErrForbidden)
	default:
		logger.Error("failed to delete link", zap.Error(err), zap.String("id", id))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
	}
}

// Redirect resolves the slug and sends the caller on. Every failure,
// including store errors, looks like an unknown slug from outside.
func (h *LinksHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if !links.IsWellFormedSlug(slug) {
		h.notFound(w, r, slug)
		return
	}

	link, err := h.svc.Resolve(r.Context(), slug)
	if err != nil {
		if !errors.Is(err, links.ErrNotFound) {
			logger.Error("failed to resolve slug", zap.Error(err), zap.String("slug", slug))
		}
		h.notFound(w, r, slug)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, link.URL, h.redirectStatus)
}

func (h *LinksHandler) notFound(w http.ResponseWriter, r *http.Request, slug string) {
	if h.notFoundURL == "" {
		http.NotFound(w, r)
		return
	}

	q := url.Values{}
	q.Set("slug", slug)
	q.Set("error", "not_found")

	target := h.notFoundURL
	if strings.Contains(target, "?") {
		target += "&" + q.Encode()
	} else {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *LinksHandler) decodeCreate(w http.ResponseWriter, r *http.Request) (createLinkRequest, bool) {
	var req createLinkRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return req, false
	}

	if err := appvalidation.Validate(req); err != nil {
		apiErr := constants.ErrInvalidRequestBody
		var details []httputils.ErrorDetail
		for _, fe := range appvalidation.Fields(err) {
			details = append(details, httputils.ErrorDetail{Field: fe.Field, Rule: fe.Rule})
			switch fe.Field {
			case "url":
				apiErr = constants.ErrInvalidURL
			case "customSlug":
				if apiErr.Code != constants.CodeInvalidURL {
					apiErr = constants.ErrInvalidSlug
				}
			}
		}
		httputils.WriteAPIErrorDetails(w, r, apiErr, details)
		return req, false
	}

	return req, true
}

func (h *LinksHandler) writeCreateError(w http.ResponseWriter, r *http.Request, err error, ownerID string) {
	var verr *links.ValidationError
	switch {
	case errors.As(err, &verr):
		apiErr, field := constants.ErrInvalidURL, "url"
		if isSlugRule(err) {
			apiErr, field = constants.ErrInvalidSlug, "customSlug"
		}
		httputils.WriteAPIErrorDetails(w, r, apiErr.WithMessage(verr.Message),
			[]httputils.ErrorDetail{{Field: field, Rule: verr.Rule, Issue: verr.Message}},
		)
	case errors.Is(err, links.ErrSlugTaken):
		httputils.WriteAPIError(w, r, constants.ErrSlugTaken)
	case errors.Is(err, links.ErrSlugAllocationFailed):
		logger.Warn("slug allocation exhausted", zap.String("owner_id", ownerID))
		httputils.WriteAPIError(w, r, constants.ErrSlugAllocationFailed)
	default:
		logger.Error("failed to create link", zap.Error(err), zap.String("owner_id", ownerID))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
	}
}

func isSlugRule(err error) bool {
	return errors.Is(err, links.ErrSlugInvalidCharacters) ||
		errors.Is(err, links.ErrSlugTooLong) ||
		errors.Is(err, links.ErrSlugReserved)
}

func (h *LinksHandler) toLinkResponse(r *http.Request, link *links.Link) linkResponse {
	return linkResponse{
		ID:        link.ID,
		Slug:      link.Slug,
		ShortURL:  h.shortURL(r, link.Slug),
		LongURL:   link.URL,
		Clicks:    link.Clicks,
		CreatedAt: link.CreatedAt,
	}
}

// shortURL uses the configured base, else the request host: plain http for
// localhost, https otherwise.
func (h *LinksHandler) shortURL(r *http.Request, slug string) string {
	if h.baseURL != "" {
		return h.baseURL + "/" + slug
	}

	host := r.Host
	scheme := "https"
	if strings.Contains(host, "localhost") {
		scheme = "http"
	}
	return scheme + "://" + host + "/" + slug
}
