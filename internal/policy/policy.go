// Package policy decides which tenants an identity may see and what it may do
// with them. Decisions are pure functions of the identity's group set; nothing
// here touches storage.
package policy

import (
	"sort"

	"farmgate/internal/identity"
)

// Capability names what a caller may do with a tenant site.
type Capability string

const (
	CapabilityFiles       Capability = "files"
	CapabilityDatabase    Capability = "database"
	CapabilityManageUsers Capability = "manage_users"
	CapabilityViewAll     Capability = "view_all"
)

// ContractorGroup is the blanket grant: members see every tenant with the
// contractor capability set. It is coarser than the per-tenant grant; either
// is sufficient on its own.
const ContractorGroup = "contractors"

// grantPrefix scopes a group name to a single tenant, e.g. "contractor-site-42".
const grantPrefix = "contractor-site-"

// GrantToken returns the tenant-scoped group name that grants access to the
// given tenant.
func GrantToken(tenantID string) string {
	return grantPrefix + tenantID
}

// CapabilitySet is an immutable set of capabilities.
type CapabilitySet map[Capability]struct{}

// Has reports whether the set contains the capability.
func (cs CapabilitySet) Has(c Capability) bool {
	_, ok := cs[c]
	return ok
}

// List returns the capabilities in sorted order for stable responses.
func (cs CapabilitySet) List() []string {
	out := make([]string, 0, len(cs))
	for c := range cs {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}

func newSet(caps ...Capability) CapabilitySet {
	cs := make(CapabilitySet, len(caps))
	for _, c := range caps {
		cs[c] = struct{}{}
	}
	return cs
}

// fullSet is what admins hold for every tenant. contractorSet is the only
// non-empty grant for everyone else; there is no partial grant below it.
var (
	fullSet       = newSet(CapabilityFiles, CapabilityDatabase, CapabilityManageUsers, CapabilityViewAll)
	contractorSet = newSet(CapabilityFiles, CapabilityDatabase)
	emptySet      = newSet()
)

// Policy evaluates visibility and capabilities.
type Policy struct{}

// New constructs a Policy.
func New() *Policy {
	return &Policy{}
}

// Visible reports whether the identity may see the tenant. Admin status
// always dominates: an admin is never blocked by a missing tenant grant.
func (p *Policy) Visible(id identity.Identity, tenantID string) bool {
	if id.IsAdmin() {
		return true
	}
	return id.InGroup(GrantToken(tenantID)) || id.InGroup(ContractorGroup)
}

// CapabilitiesFor returns the capability set granted to the identity for the
// tenant. Admins get the full set unconditionally; everyone else gets the
// contractor set iff the tenant is visible, and nothing otherwise.
func (p *Policy) CapabilitiesFor(id identity.Identity, tenantID string) CapabilitySet {
	if id.IsAdmin() {
		return fullSet
	}
	if p.Visible(id, tenantID) {
		return contractorSet
	}
	return emptySet
}
