package summary

import (
	"context"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"farmgate/internal/catalog"
	"farmgate/internal/links"
	dErrors "farmgate/pkg/domain-errors"
)

// Aggregator computes per-tenant summaries. It holds no mutable state;
// everything is derived per call from the metadata store and the size prober.
type Aggregator struct {
	store       MetadataStore
	prober      SizeProber
	sitesRoot   string
	logger      *slog.Logger
	concurrency int
}

// Option configures the Aggregator.
type Option func(*Aggregator)

// WithConcurrency bounds how many tenants are summarized in parallel.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// New constructs an Aggregator.
func New(store MetadataStore, prober SizeProber, sitesRoot string, logger *slog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:       store,
		prober:      prober,
		sitesRoot:   sitesRoot,
		logger:      logger,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summarize produces the summary for a single tenant. An unreachable options
// store fails the summary with MetadataUnavailable; every later stat degrades
// to its default instead, so metadata completeness never blocks a response.
func (a *Aggregator) Summarize(ctx context.Context, tenant catalog.TenantRecord) (SiteSummary, error) {
	options, err := a.store.ReadOptions(ctx, tenant.SchemaName, summaryOptionKeys)
	if err != nil {
		return SiteSummary{}, dErrors.Wrap(err, dErrors.CodeMetadataUnavailable, "tenant metadata unavailable")
	}

	tenant.CanonicalURL = options[OptionSiteURL]
	tenant.DisplayName = options[OptionBlogName]
	if tenant.DisplayName == "" {
		tenant.DisplayName = tenant.TenantID
	}

	s := SiteSummary{
		Tenant:     tenant,
		AdminEmail: options[OptionAdminEmail],
	}
	s.Stats.Users = a.count(ctx, tenant, "users", func() (int, error) {
		return a.store.CountUsers(ctx, tenant.SchemaName)
	})
	s.Stats.Posts = a.count(ctx, tenant, "posts", func() (int, error) {
		return a.store.CountPublished(ctx, tenant.SchemaName, postTypePost)
	})
	s.Stats.Pages = a.count(ctx, tenant, "pages", func() (int, error) {
		return a.store.CountPublished(ctx, tenant.SchemaName, postTypePage)
	})
	s.Stats.DBSizeMB = round2(a.dbSize(ctx, tenant))
	s.Stats.FileSizeMB = round2(a.fileSize(ctx, tenant))

	return s, nil
}

// SummarizeAll summarizes the given tenants, fanning out with bounded
// parallelism. Tenants share no mutable state, so concurrent and sequential
// execution produce identical results; ordering follows the input slice. A
// tenant whose summary fails outright is skipped so one sick tenant never
// empties the listing.
func (a *Aggregator) SummarizeAll(ctx context.Context, tenants []catalog.TenantRecord) []SiteSummary {
	results := make([]*SiteSummary, len(tenants))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, tenant := range tenants {
		i, tenant := i, tenant
		g.Go(func() error {
			s, err := a.Summarize(gctx, tenant)
			if err != nil {
				a.logger.ErrorContext(gctx, "tenant summary failed",
					"tenant_id", tenant.TenantID,
					"error", err,
				)
				return nil // skip this tenant, never the listing
			}
			results[i] = &s
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	summaries := make([]SiteSummary, 0, len(tenants))
	for _, r := range results {
		if r != nil {
			summaries = append(summaries, *r)
		}
	}
	return summaries
}

// count runs one count query, degrading to zero on failure.
func (a *Aggregator) count(ctx context.Context, tenant catalog.TenantRecord, stat string, fn func() (int, error)) int {
	n, err := fn()
	if err != nil {
		a.logger.WarnContext(ctx, "stat unavailable, defaulting to zero",
			"tenant_id", tenant.TenantID,
			"stat", stat,
			"error", err,
		)
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

func (a *Aggregator) dbSize(ctx context.Context, tenant catalog.TenantRecord) float64 {
	size, err := a.store.SchemaSizeMB(ctx, tenant.SchemaName)
	if err != nil {
		a.logger.WarnContext(ctx, "db size unavailable, defaulting to zero",
			"tenant_id", tenant.TenantID,
			"error", err,
		)
		return 0
	}
	return math.Max(size, 0)
}

// fileSize is best-effort: a failed probe yields zero, not an error.
func (a *Aggregator) fileSize(ctx context.Context, tenant catalog.TenantRecord) float64 {
	if a.prober == nil {
		return 0
	}
	size, err := a.prober.DirSizeMB(ctx, links.FilePath(a.sitesRoot, tenant.TenantID))
	if err != nil {
		a.logger.WarnContext(ctx, "file size probe failed, defaulting to zero",
			"tenant_id", tenant.TenantID,
			"error", err,
		)
		return 0
	}
	return math.Max(size, 0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
