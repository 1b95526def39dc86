// Package handler exposes the audit trail over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"

	"farmgate/internal/audit"
	"farmgate/internal/identity"
	"farmgate/internal/platform/metrics"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/platform/httputil"
	"farmgate/pkg/requestcontext"
)

// Recorder appends audit records.
type Recorder interface {
	Log(ctx context.Context, record audit.Record) error
}

// Handler handles audit endpoints.
type Handler struct {
	logger   *slog.Logger
	recorder Recorder
	metrics  *metrics.Metrics
	now      func() time.Time
}

// New creates a new audit Handler.
func New(recorder Recorder, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		recorder: recorder,
		metrics:  m,
		now:      time.Now,
	}
}

// Register registers the audit routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/audit/log", h.handleLogAction)
}

type logActionRequest struct {
	Action   string          `json:"action"`
	TenantID string          `json:"site_id"`
	Details  json.RawMessage `json:"details"`
}

type logActionResponse struct {
	Status string `json:"status"`
}

// handleLogAction records an action the caller performed through one of
// the linked tools. The tenant is recorded as given; a record may refer
// to a site that no longer exists and is still accepted.
func (h *Handler) handleLogAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, ok := identity.FromContext(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "identity missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	req, ok := httputil.DecodeJSON[logActionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.Action == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "action is required"))
		return
	}

	md := requestcontext.GetClientMetadata(ctx)
	record := audit.Record{
		Timestamp:     h.now().UTC(),
		ActorUsername: id.Username,
		ActorEmail:    id.Email,
		Action:        req.Action,
		TenantID:      req.TenantID,
		Details:       req.Details,
		SourceIP:      md.IP,
		UserAgent:     summarizeUserAgent(md.UserAgent),
		RequestID:     requestID,
	}

	if err := h.recorder.Log(ctx, record); err != nil {
		h.metrics.IncrementAuditWriteErrors()
		httputil.WriteError(w, err)
		return
	}

	h.metrics.IncrementAuditRecords(req.Action)
	httputil.WriteJSON(w, http.StatusOK, logActionResponse{Status: "logged"})
}

// summarizeUserAgent condenses a raw User-Agent header into a readable
// "Browser version (OS)" form. The raw header can be spoofed; this is
// forensic color, not an authorization input.
func summarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return raw
	}
	out := name
	if version != "" {
		out += " " + version
	}
	if os := ua.OS(); os != "" {
		out += " (" + os + ")"
	}
	return out
}
