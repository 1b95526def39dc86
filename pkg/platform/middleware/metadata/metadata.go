package metadata

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"farmgate/pkg/requestcontext"
)

// MaxXFFHeaderLength is the maximum allowed length for X-Forwarded-For header
// to prevent header injection attacks.
const MaxXFFHeaderLength = 500

// Config holds configuration for the metadata middleware.
type Config struct {
	// TrustedProxies is a list of IP prefixes (CIDR notation) that are trusted
	// to set X-Forwarded-For headers. If empty, XFF is never trusted.
	TrustedProxies []netip.Prefix
}

// DefaultConfig returns a Config with no trusted proxies (secure by default).
func DefaultConfig() *Config {
	return &Config{
		TrustedProxies: nil,
	}
}

// Middleware handles client metadata extraction with configurable trusted proxies.
type Middleware struct {
	config *Config
}

// NewMiddleware creates a new metadata middleware with the given config.
func NewMiddleware(cfg *Config) *Middleware {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Middleware{config: cfg}
}

// Handler extracts the client IP address, User-Agent, and Host from the request
// and adds them to the context for use by handlers and services.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		md := requestcontext.ClientMetadata{
			IP:        m.extractClientIP(r),
			UserAgent: r.Header.Get("User-Agent"),
			Host:      requestHost(r),
		}

		ctx := requestcontext.WithClientMetadata(r.Context(), md)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestHost returns the host the client connected to, without any port.
func requestHost(r *http.Request) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// extractClientIP extracts the client IP with trusted proxy validation.
func (m *Middleware) extractClientIP(r *http.Request) string {
	remoteIP := parseRemoteAddr(r.RemoteAddr)
	if remoteIP == "" {
		return "unknown"
	}

	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		if xri := r.Header.Get("X-Real-IP"); xri != "" && m.isTrustedProxy(remoteIP) {
			if len(xri) <= MaxXFFHeaderLength {
				return strings.TrimSpace(xri)
			}
		}
		return remoteIP
	}

	// XFF header present - only trust if request came from a trusted proxy.
	if !m.isTrustedProxy(remoteIP) {
		return remoteIP
	}

	if len(xff) > MaxXFFHeaderLength {
		return remoteIP
	}

	// First IP in the XFF chain is the original client.
	clientIP := xff
	if before, _, ok := strings.Cut(xff, ","); ok {
		clientIP = before
	}
	clientIP = strings.TrimSpace(clientIP)

	if _, err := netip.ParseAddr(clientIP); err != nil {
		return remoteIP
	}
	return clientIP
}

func (m *Middleware) isTrustedProxy(ipStr string) bool {
	addr, err := netip.ParseAddr(ipStr)
	if err != nil {
		return false
	}
	for _, prefix := range m.config.TrustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func parseRemoteAddr(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		// RemoteAddr may already be a bare IP in tests.
		if _, perr := netip.ParseAddr(remoteAddr); perr == nil {
			return remoteAddr
		}
		return ""
	}
	return host
}
