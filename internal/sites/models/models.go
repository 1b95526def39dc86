// Package models defines the response records returned by the sites service.
package models

import (
	"farmgate/internal/links"
	"farmgate/internal/summary"
)

// SiteView is the full per-tenant record shown to an authorized caller. The
// field names are the wire contract the contractor panel already consumes.
type SiteView struct {
	TenantID     string            `json:"id"`
	DisplayName  string            `json:"name"`
	SchemaName   string            `json:"database"`
	CanonicalURL string            `json:"url"`
	AdminEmail   string            `json:"admin_email,omitempty"`
	FilePath     string            `json:"file_path"`
	Stats        summary.SiteStats `json:"stats"`
	Access       links.AccessLinks `json:"access"`
	Capabilities []string          `json:"capabilities"`
}

// SiteResponse wraps a single site lookup.
type SiteResponse struct {
	Site SiteView `json:"site"`
}

// Listing is the response for the site listing endpoint.
type Listing struct {
	Sites   []SiteView `json:"sites"`
	Count   int        `json:"count"`
	User    string     `json:"user"`
	IsAdmin bool       `json:"is_admin"`
}

// ProfileUser is the identity block of the profile response.
type ProfileUser struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Groups   []string `json:"groups"`
	IsAdmin  bool     `json:"is_admin"`
}

// ProfilePermissions is the coarse permission map shown on the profile.
// File and database access are implied by authentication; the management
// permissions require the admin flag.
type ProfilePermissions struct {
	CanEditFiles    bool `json:"can_edit_files"`
	CanEditDatabase bool `json:"can_edit_database"`
	CanManageUsers  bool `json:"can_manage_users"`
	CanViewAllSites bool `json:"can_view_all_sites"`
}

// Profile is the response for the user profile endpoint.
type Profile struct {
	User        ProfileUser        `json:"user"`
	Permissions ProfilePermissions `json:"permissions"`
}
