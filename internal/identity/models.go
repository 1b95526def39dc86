// Package identity resolves externally-asserted identities into a normalized,
// request-scoped Identity value. The service never authenticates users itself;
// it trusts assertions produced by the SSO layer in front of it.
package identity

import (
	"context"
	"sort"
	"strings"
)

// AdminGroup is the reserved group whose members hold the admin override.
// Membership of this group is the ONLY way to obtain admin privileges; no
// header or claim can set the flag directly.
const AdminGroup = "admins"

// Identity is the normalized caller identity for a single request.
// It is immutable after construction and never persisted.
type Identity struct {
	Username string
	Email    string

	groups map[string]struct{}
}

// New constructs an Identity from a username, email, and group names.
// Group names are trimmed; empties are dropped. Username validity is the
// resolver's responsibility.
func New(username, email string, groups []string) Identity {
	set := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		set[g] = struct{}{}
	}
	return Identity{
		Username: username,
		Email:    email,
		groups:   set,
	}
}

// InGroup reports whether the identity belongs to the named group.
func (i Identity) InGroup(group string) bool {
	_, ok := i.groups[group]
	return ok
}

// IsAdmin reports membership of the reserved admin group. This is derived
// state; there is no setter.
func (i Identity) IsAdmin() bool {
	return i.InGroup(AdminGroup)
}

// Groups returns the group names in sorted order.
func (i Identity) Groups() []string {
	out := make([]string, 0, len(i.groups))
	for g := range i.groups {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

type contextKey struct{}

// WithContext returns a context carrying the resolved identity.
func WithContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the resolved identity and whether one was set.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
