package rbac

import (
	"context"
	"strconv"

	"golang.org/x/sync/singleflight"
)

// Resolver computes a user's effective permission set: the union of the
// system tier set for their role tag and the permissions of every active
// custom role they hold.
type Resolver struct {
	store Store
	cache *Cache
	group singleflight.Group
}

// NewResolver constructs a Resolver. cache may be nil.
func NewResolver(store Store, cache *Cache) *Resolver {
	return &Resolver{store: store, cache: cache}
}

// Resolve returns the effective permission set for the identity. The result
// is always a superset of the tier set for identity.SystemRole; custom roles
// only add permissions. Inputs are never mutated.
func (r *Resolver) Resolve(ctx context.Context, identity *Identity) (PermissionSet, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}

	if set, ok := r.cache.Get(ctx, identity.UserID); ok {
		return set, nil
	}

	// Collapse concurrent resolutions for the same user into one lookup.
	v, err, _ := r.group.Do(strconv.FormatInt(identity.UserID, 10), func() (any, error) {
		// The epoch is read before the store query. An invalidation that
		// lands while the query runs bumps it, and the write below then
		// carries a superseded epoch and is never served.
		epoch := r.cache.Epoch(ctx, identity.UserID)
		set, err := r.resolve(ctx, identity)
		if err != nil {
			return nil, err
		}
		if err := r.cache.Set(ctx, identity.UserID, set, epoch); err != nil {
			// A failed cache write only costs the next resolution.
			return set, nil
		}
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(PermissionSet), nil
}

func (r *Resolver) resolve(ctx context.Context, identity *Identity) (PermissionSet, error) {
	set := SystemRolePermissions(identity.SystemRole)

	roles, err := r.store.ActiveRolesForUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		// Deactivated roles stay assigned but grant nothing.
		if !role.IsActive {
			continue
		}
		set = set.Union(NewPermissionSet(role.Permissions...))
	}
	return set, nil
}

// InvalidateUser drops the cached resolution for one user.
func (r *Resolver) InvalidateUser(ctx context.Context, userID int64) error {
	return r.cache.InvalidateUser(ctx, userID)
}

// InvalidateAll drops every cached resolution.
func (r *Resolver) InvalidateAll(ctx context.Context) error {
	return r.cache.InvalidateAll(ctx)
}
