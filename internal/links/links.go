// Package links builds the outbound access URLs for a tenant site. Link
// construction is pure: all fallibility lives in the constructor, which
// validates the configured base URLs once at startup.
package links

import (
	"fmt"
	"net/url"
	"strings"
)

// AccessLinks is the set of per-tenant access URLs exposed to callers.
type AccessLinks struct {
	Files    string `json:"files"`
	Database string `json:"database"`
	SFTP     string `json:"sftp"`
	SiteURL  string `json:"site_url,omitempty"`
}

// Config holds the externally provisioned endpoints links are built from.
type Config struct {
	FileBrowserURL string
	AdminerURL     string
	DBHost         string
	SFTPUser       string
	SFTPPort       int
}

// Builder constructs access links for tenants.
type Builder struct {
	cfg Config
}

// NewBuilder validates the configured base URLs. A malformed base URL is a
// startup configuration error, never a per-request one.
func NewBuilder(cfg Config) (*Builder, error) {
	for name, raw := range map[string]string{
		"filebrowser url": cfg.FileBrowserURL,
		"adminer url":     cfg.AdminerURL,
	} {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", name, raw, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid %s %q: scheme and host are required", name, raw)
		}
	}
	if cfg.SFTPUser == "" {
		return nil, fmt.Errorf("sftp user is required")
	}
	if cfg.SFTPPort <= 0 || cfg.SFTPPort > 65535 {
		return nil, fmt.Errorf("invalid sftp port %d", cfg.SFTPPort)
	}

	cfg.FileBrowserURL = strings.TrimRight(cfg.FileBrowserURL, "/")
	cfg.AdminerURL = strings.TrimRight(cfg.AdminerURL, "/")
	return &Builder{cfg: cfg}, nil
}

// Build returns the access links for a tenant. requestHost is the host the
// caller connected to, used for the SFTP endpoint; siteURL is the tenant's
// canonical URL as read from its configuration.
func (b *Builder) Build(tenantID, schemaName, requestHost, siteURL string) AccessLinks {
	siteDir := "wp-site-" + tenantID

	return AccessLinks{
		Files:    fmt.Sprintf("%s/?path=/%s", b.cfg.FileBrowserURL, siteDir),
		Database: fmt.Sprintf("%s/?server=%s&db=%s", b.cfg.AdminerURL, url.QueryEscape(b.cfg.DBHost), url.QueryEscape(schemaName)),
		SFTP:     fmt.Sprintf("sftp://%s@%s:%d/sites/%s", b.cfg.SFTPUser, requestHost, b.cfg.SFTPPort, siteDir),
		SiteURL:  siteURL,
	}
}

// FilePath returns the on-disk directory for a tenant site below the sites
// root, matching the layout the size prober measures.
func FilePath(root, tenantID string) string {
	return strings.TrimRight(root, "/") + "/wp-site-" + tenantID
}
