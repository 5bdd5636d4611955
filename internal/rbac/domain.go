package rbac

import (
	"context"
	"sort"
	"time"
)

// Identity describes the authenticated caller. It is produced by the auth
// collaborator and never persisted.
type Identity struct {
	UserID        int64
	SystemRole    string
	CustomRoleIDs []int64
}

// Role is the read model the resolver works with. The full administrative
// record lives in the roles package; this projection carries only what
// authorization needs.
type Role struct {
	ID          int64
	Name        string
	Permissions []string
	IsSystem    bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PermissionSet is an unordered set of permission tokens.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from the given tokens, collapsing duplicates.
func NewPermissionSet(perms ...string) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Has reports whether the set contains p.
func (s PermissionSet) Has(p string) bool {
	_, ok := s[p]
	return ok
}

// HasAny reports whether the set intersects perms.
func (s PermissionSet) HasAny(perms ...string) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// HasAll reports whether the set is a superset of perms.
func (s PermissionSet) HasAll(perms ...string) bool {
	for _, p := range perms {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// Union returns a new set containing members of both sets. Neither input is
// mutated.
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	out := make(PermissionSet, len(s)+len(other))
	for p := range s {
		out[p] = struct{}{}
	}
	for p := range other {
		out[p] = struct{}{}
	}
	return out
}

// List returns the members in sorted order, so serialized forms compare
// equal regardless of insertion order.
func (s PermissionSet) List() []string {
	perms := make([]string, 0, len(s))
	for p := range s {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}

type identityContextKey struct{}

// ContextWithIdentity stores the authenticated identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context, if any.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}

type resolvedContextKey struct{}

// ContextWithResolved stashes the request-scoped resolved permission set so
// every gate within one request decides against the same snapshot.
func ContextWithResolved(ctx context.Context, set PermissionSet) context.Context {
	return context.WithValue(ctx, resolvedContextKey{}, set)
}

// ResolvedFromContext returns the request-scoped permission set, if present.
func ResolvedFromContext(ctx context.Context) (PermissionSet, bool) {
	set, ok := ctx.Value(resolvedContextKey{}).(PermissionSet)
	return set, ok
}
