package summary

import "context"

// OptionKey names a tenant configuration entry. Only the enumerated keys are
// ever fetched; there is no open-ended key-value pull.
type OptionKey string

const (
	OptionSiteURL    OptionKey = "siteurl"
	OptionBlogName   OptionKey = "blogname"
	OptionAdminEmail OptionKey = "admin_email"
)

// summaryOptionKeys is exactly the set of keys a summary needs.
var summaryOptionKeys = []OptionKey{OptionSiteURL, OptionBlogName, OptionAdminEmail}

// Post types whose published rows are counted. Unpublished content is never
// counted.
const (
	postTypePost = "post"
	postTypePage = "page"
)

// MetadataStore reads per-tenant metadata. schemaName always comes from the
// catalog's validated enumeration, never from caller input.
type MetadataStore interface {
	// ReadOptions returns the values for the requested keys. Missing keys are
	// simply absent from the result; only a store-level failure is an error.
	ReadOptions(ctx context.Context, schemaName string, keys []OptionKey) (map[OptionKey]string, error)

	// CountUsers returns the number of user rows in the tenant schema.
	CountUsers(ctx context.Context, schemaName string) (int, error)

	// CountPublished returns the number of published rows of the given post type.
	CountPublished(ctx context.Context, schemaName, postType string) (int, error)

	// SchemaSizeMB returns the storage footprint of the tenant schema in MB.
	SchemaSizeMB(ctx context.Context, schemaName string) (float64, error)
}

// SizeProber measures on-disk usage of a tenant's file tree. Implementations
// are best-effort; the aggregator treats any failure as zero.
type SizeProber interface {
	DirSizeMB(ctx context.Context, path string) (float64, error)
}
