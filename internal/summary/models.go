package summary

import "farmgate/internal/catalog"

// SiteStats are the per-tenant usage numbers exposed in a summary. Counts are
// never negative; sizes are megabytes rounded to two decimals and default to
// zero when unmeasurable.
type SiteStats struct {
	Users      int     `json:"users"`
	Posts      int     `json:"posts"`
	Pages      int     `json:"pages"`
	DBSizeMB   float64 `json:"db_size_mb"`
	FileSizeMB float64 `json:"file_size_mb"`
}

// SiteSummary is the stable per-tenant summary record. Access links are
// attached by the sites service, which owns the requester context.
type SiteSummary struct {
	Tenant     catalog.TenantRecord
	AdminEmail string
	Stats      SiteStats
}
