// Package service orchestrates catalog, policy, metadata and link building
// into the site views exposed over HTTP.
package service

import (
	"context"
	"log/slog"

	"farmgate/internal/catalog"
	"farmgate/internal/identity"
	"farmgate/internal/links"
	"farmgate/internal/policy"
	"farmgate/internal/sites/models"
	"farmgate/internal/summary"
	dErrors "farmgate/pkg/domain-errors"
)

// TenantCatalog enumerates and resolves tenants.
type TenantCatalog interface {
	ListTenants(ctx context.Context) ([]catalog.TenantRecord, error)
	ResolveTenant(ctx context.Context, tenantID string) (catalog.TenantRecord, error)
}

// Summarizer produces per-tenant metadata summaries.
type Summarizer interface {
	Summarize(ctx context.Context, tenant catalog.TenantRecord) (summary.SiteSummary, error)
	SummarizeAll(ctx context.Context, tenants []catalog.TenantRecord) []summary.SiteSummary
}

// AccessPolicy decides visibility and capabilities per tenant.
type AccessPolicy interface {
	Visible(id identity.Identity, tenantID string) bool
	CapabilitiesFor(id identity.Identity, tenantID string) policy.CapabilitySet
}

// Service implements the site listing and lookup operations. Everything is
// computed per request from the live catalog; nothing is cached, so a newly
// provisioned tenant shows up on the very next listing.
type Service struct {
	catalog    TenantCatalog
	policy     AccessPolicy
	summarizer Summarizer
	links      *links.Builder
	sitesRoot  string
	logger     *slog.Logger
}

// New creates a new sites Service. sitesRoot is the on-disk directory holding
// the per-tenant site trees, reported back to callers as file_path.
func New(cat TenantCatalog, pol AccessPolicy, sum Summarizer, lb *links.Builder, sitesRoot string, logger *slog.Logger) *Service {
	return &Service{
		catalog:    cat,
		policy:     pol,
		summarizer: sum,
		links:      lb,
		sitesRoot:  sitesRoot,
		logger:     logger,
	}
}

// ListSites returns the summaries of every tenant visible to the identity.
// The whole listing fails when the catalog cannot be enumerated; a tenant
// whose metadata cannot be read at all is dropped from the listing rather
// than failing it.
func (s *Service) ListSites(ctx context.Context, id identity.Identity, requestHost string) (models.Listing, error) {
	tenants, err := s.catalog.ListTenants(ctx)
	if err != nil {
		return models.Listing{}, err
	}

	visible := make([]catalog.TenantRecord, 0, len(tenants))
	for _, t := range tenants {
		if s.policy.Visible(id, t.TenantID) {
			visible = append(visible, t)
		}
	}

	views := make([]models.SiteView, 0, len(visible))
	for _, sum := range s.summarizer.SummarizeAll(ctx, visible) {
		views = append(views, s.view(id, sum, requestHost))
	}

	s.logger.InfoContext(ctx, "site listing served",
		"username", id.Username,
		"is_admin", id.IsAdmin(),
		"total", len(tenants),
		"visible", len(visible),
		"returned", len(views),
	)

	return models.Listing{
		Sites:   views,
		Count:   len(views),
		User:    id.Username,
		IsAdmin: id.IsAdmin(),
	}, nil
}

// GetSite returns one tenant's summary. Existence is checked before
// authorization, so a missing tenant is NotFound for everyone while an
// existing but ungranted tenant is AccessDenied.
func (s *Service) GetSite(ctx context.Context, id identity.Identity, tenantID, requestHost string) (models.SiteView, error) {
	tenant, err := s.catalog.ResolveTenant(ctx, tenantID)
	if err != nil {
		return models.SiteView{}, err
	}

	if !s.policy.Visible(id, tenant.TenantID) {
		s.logger.WarnContext(ctx, "site access denied",
			"username", id.Username,
			"tenant_id", tenant.TenantID,
		)
		return models.SiteView{}, dErrors.New(dErrors.CodeAccessDenied, "not authorized for this site")
	}

	sum, err := s.summarizer.Summarize(ctx, tenant)
	if err != nil {
		return models.SiteView{}, err
	}
	return s.view(id, sum, requestHost), nil
}

// Profile returns the identity with its coarse permission map.
func (s *Service) Profile(id identity.Identity) models.Profile {
	return models.Profile{
		User: models.ProfileUser{
			Username: id.Username,
			Email:    id.Email,
			Groups:   id.Groups(),
			IsAdmin:  id.IsAdmin(),
		},
		Permissions: models.ProfilePermissions{
			CanEditFiles:    true,
			CanEditDatabase: true,
			CanManageUsers:  id.IsAdmin(),
			CanViewAllSites: id.IsAdmin(),
		},
	}
}

func (s *Service) view(id identity.Identity, sum summary.SiteSummary, requestHost string) models.SiteView {
	t := sum.Tenant
	return models.SiteView{
		TenantID:     t.TenantID,
		DisplayName:  t.DisplayName,
		SchemaName:   t.SchemaName,
		CanonicalURL: t.CanonicalURL,
		AdminEmail:   sum.AdminEmail,
		FilePath:     links.FilePath(s.sitesRoot, t.TenantID),
		Stats:        sum.Stats,
		Access:       s.links.Build(t.TenantID, t.SchemaName, requestHost, t.CanonicalURL),
		Capabilities: s.policy.CapabilitiesFor(id, t.TenantID).List(),
	}
}
