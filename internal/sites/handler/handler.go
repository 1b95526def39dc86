// Package handler exposes the site catalog over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"farmgate/internal/identity"
	"farmgate/internal/platform/metrics"
	"farmgate/internal/sites/models"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/platform/httputil"
	"farmgate/pkg/requestcontext"
)

// Service defines the interface for site operations.
type Service interface {
	ListSites(ctx context.Context, id identity.Identity, requestHost string) (models.Listing, error)
	GetSite(ctx context.Context, id identity.Identity, tenantID, requestHost string) (models.SiteView, error)
	Profile(id identity.Identity) models.Profile
}

// Handler handles site and profile endpoints.
type Handler struct {
	logger  *slog.Logger
	sites   Service
	metrics *metrics.Metrics
}

// New creates a new sites Handler.
func New(sites Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		sites:   sites,
		metrics: m,
	}
}

// Register registers the site routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/sites", h.handleListSites)
	r.Get("/api/sites/{tenant_id}", h.handleGetSite)
	r.Get("/api/user/profile", h.handleProfile)
}

func (h *Handler) handleListSites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	defer func() {
		h.metrics.ObserveEndpointLatency("list_sites", time.Since(start).Seconds())
	}()

	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}

	listing, err := h.sites.ListSites(ctx, id, requestcontext.GetClientMetadata(ctx).Host)
	if err != nil {
		h.logger.ErrorContext(ctx, "site listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"username", id.Username,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.metrics.IncrementSitesListed()
	httputil.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) handleGetSite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	defer func() {
		h.metrics.ObserveEndpointLatency("get_site", time.Since(start).Seconds())
	}()

	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}

	tenantID := chi.URLParam(r, "tenant_id")
	view, err := h.sites.GetSite(ctx, id, tenantID, requestcontext.GetClientMetadata(ctx).Host)
	if err != nil {
		switch {
		case dErrors.HasCode(err, dErrors.CodeNotFound):
			h.metrics.IncrementSiteLookups("not_found")
		case dErrors.HasCode(err, dErrors.CodeAccessDenied):
			h.metrics.IncrementSiteLookups("denied")
			h.metrics.IncrementAccessDenied(tenantID)
		default:
			h.metrics.IncrementSiteLookups("error")
			h.logger.ErrorContext(ctx, "site lookup failed",
				"request_id", requestcontext.RequestID(ctx),
				"username", id.Username,
				"tenant_id", tenantID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.metrics.IncrementSiteLookups("ok")
	httputil.WriteJSON(w, http.StatusOK, models.SiteResponse{Site: view})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.sites.Profile(id))
}

func (h *Handler) requireIdentity(w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "identity missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return identity.Identity{}, false
	}
	return id, true
}
