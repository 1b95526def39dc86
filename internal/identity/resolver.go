package identity

import (
	"net/http"
	"strings"

	dErrors "farmgate/pkg/domain-errors"
)

// Forward-auth headers set by the reverse proxy after SSO. Only these three
// fields are read; everything else in the request is untrusted for identity
// purposes.
const (
	HeaderUsername = "X-Authentik-Username"
	HeaderEmail    = "X-Authentik-Email"
	HeaderGroups   = "X-Authentik-Groups"
)

// Resolver turns an inbound request into a normalized Identity, or fails with
// a domain error carrying CodeUnauthenticated.
type Resolver interface {
	Resolve(r *http.Request) (Identity, error)
}

// HeaderResolver reads the trusted forward-auth headers. The mandatory
// username header missing means the proxy did not authenticate the caller.
type HeaderResolver struct{}

// NewHeaderResolver constructs a HeaderResolver.
func NewHeaderResolver() *HeaderResolver {
	return &HeaderResolver{}
}

// Resolve builds an Identity from trusted headers.
func (hr *HeaderResolver) Resolve(r *http.Request) (Identity, error) {
	username := strings.TrimSpace(r.Header.Get(HeaderUsername))
	if username == "" {
		return Identity{}, dErrors.New(dErrors.CodeUnauthenticated, "missing identity assertion")
	}

	email := strings.TrimSpace(r.Header.Get(HeaderEmail))
	groups := strings.Split(r.Header.Get(HeaderGroups), ",")

	return New(username, email, groups), nil
}

// Handles reports whether the request carries the forward-auth username header.
func (hr *HeaderResolver) Handles(r *http.Request) bool {
	return strings.TrimSpace(r.Header.Get(HeaderUsername)) != ""
}

// BearerToken extracts the bearer token from the Authorization header.
// Returns "" when no bearer credential is present.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// ChainResolver prefers the forward-auth headers and falls back to a bearer
// resolver when a bearer credential is present. There is no anonymous mode:
// when neither assertion is present, resolution fails.
type ChainResolver struct {
	headers *HeaderResolver
	bearer  Resolver
}

// NewChainResolver builds the resolution chain. bearer may be nil when no
// token path is configured.
func NewChainResolver(headers *HeaderResolver, bearer Resolver) *ChainResolver {
	return &ChainResolver{headers: headers, bearer: bearer}
}

// Resolve implements Resolver.
func (c *ChainResolver) Resolve(r *http.Request) (Identity, error) {
	if c.headers.Handles(r) {
		return c.headers.Resolve(r)
	}
	if c.bearer != nil && BearerToken(r) != "" {
		return c.bearer.Resolve(r)
	}
	return Identity{}, dErrors.New(dErrors.CodeUnauthenticated, "missing identity assertion")
}
