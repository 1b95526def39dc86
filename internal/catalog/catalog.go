// Package catalog enumerates tenant schemas and maps tenant identifiers to
// schema names. The schema naming convention is the single source of truth for
// which tenants exist; nothing is cached across requests.
package catalog

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	dErrors "farmgate/pkg/domain-errors"
)

// SchemaPrefix is the fixed prefix of every tenant schema. The mapping
// tenant_id <-> schema name is bijective: SchemaName(TenantIDFromSchema(s)) == s
// for every enumerated schema s.
const SchemaPrefix = "wp_site_"

// validTenantID restricts tenant identifiers to characters that are safe both
// in schema names and in group grant tokens. Anything else never reaches SQL.
var validTenantID = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// TenantRecord identifies one tenant site. CanonicalURL and DisplayName are
// filled in by the metadata aggregator; the catalog only derives identifiers.
type TenantRecord struct {
	TenantID     string `json:"id"`
	SchemaName   string `json:"database"`
	CanonicalURL string `json:"url"`
	DisplayName  string `json:"name"`
}

// SchemaLister enumerates tenant schemas in the backing store.
type SchemaLister interface {
	ListSchemas(ctx context.Context) ([]string, error)
	SchemaExists(ctx context.Context, schemaName string) (bool, error)
}

// SchemaName derives the schema name for a tenant identifier.
func SchemaName(tenantID string) string {
	return SchemaPrefix + tenantID
}

// TenantIDFromSchema strips the schema prefix, returning false when the name
// does not follow the tenant naming convention.
func TenantIDFromSchema(schemaName string) (string, bool) {
	id, ok := strings.CutPrefix(schemaName, SchemaPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// ValidTenantID reports whether the identifier matches the tenant naming
// convention. Handlers reject anything else before it reaches the catalog.
func ValidTenantID(tenantID string) bool {
	return tenantID != "" && validTenantID.MatchString(tenantID)
}

// Catalog lists and resolves tenants against a live schema listing.
type Catalog struct {
	lister SchemaLister
	logger *slog.Logger
}

// New constructs a Catalog.
func New(lister SchemaLister, logger *slog.Logger) *Catalog {
	return &Catalog{lister: lister, logger: logger}
}

// ListTenants enumerates every tenant schema. A listing failure aborts the
// whole operation: downstream authorization assumes a complete candidate set,
// so partial enumeration is never returned. Results are sorted by tenant ID
// for deterministic responses.
func (c *Catalog) ListTenants(ctx context.Context) ([]TenantRecord, error) {
	schemas, err := c.lister.ListSchemas(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCatalogUnavailable, "schema enumeration failed")
	}

	records := make([]TenantRecord, 0, len(schemas))
	for _, schema := range schemas {
		id, ok := TenantIDFromSchema(schema)
		if !ok {
			continue
		}
		if !ValidTenantID(id) {
			c.logger.WarnContext(ctx, "skipping schema with invalid tenant id", "schema", schema)
			continue
		}
		records = append(records, TenantRecord{TenantID: id, SchemaName: schema})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].TenantID < records[j].TenantID
	})
	return records, nil
}

// ResolveTenant validates that the tenant's schema exists. The existence check
// runs before any authorization decision so a missing tenant is NotFound
// rather than AccessDenied.
func (c *Catalog) ResolveTenant(ctx context.Context, tenantID string) (TenantRecord, error) {
	if !ValidTenantID(tenantID) {
		return TenantRecord{}, dErrors.New(dErrors.CodeNotFound, "site not found")
	}

	schema := SchemaName(tenantID)
	exists, err := c.lister.SchemaExists(ctx, schema)
	if err != nil {
		return TenantRecord{}, dErrors.Wrap(err, dErrors.CodeCatalogUnavailable, "schema lookup failed")
	}
	if !exists {
		return TenantRecord{}, dErrors.New(dErrors.CodeNotFound, "site not found")
	}

	return TenantRecord{TenantID: tenantID, SchemaName: schema}, nil
}
