package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	allowed int
	denied  int
}

func (o *countingObserver) ObserveDecision(allowed bool) {
	if allowed {
		o.allowed++
	} else {
		o.denied++
	}
}

func TestGateRequireAll(t *testing.T) {
	store := &fakeStore{}
	gate := NewGate(NewResolver(store, nil), nil, nil)
	ctx := context.Background()
	viewer := &Identity{UserID: 1, SystemRole: SystemRoleViewer}

	decision, err := gate.RequireAll(ctx, viewer, "farmers.read", "certificates.read")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	decision, err = gate.RequireAll(ctx, viewer, "farmers.read", "farmers.delete")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, []string{"farmers.read", "farmers.delete"}, decision.Required)
	assert.Contains(t, decision.Held, "farmers.read")
	assert.NotContains(t, decision.Held, "farmers.delete")
}

func TestGateRequireAny(t *testing.T) {
	gate := NewGate(NewResolver(&fakeStore{}, nil), nil, nil)
	ctx := context.Background()
	viewer := &Identity{UserID: 1, SystemRole: SystemRoleViewer}

	decision, err := gate.RequireAny(ctx, viewer, "farmers.delete", "farmers.read")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	decision, err = gate.RequireAny(ctx, viewer, "farmers.delete", "users.delete")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestGateRequirePermission(t *testing.T) {
	gate := NewGate(NewResolver(&fakeStore{}, nil), nil, nil)
	decision, err := gate.RequirePermission(context.Background(),
		&Identity{UserID: 1, SystemRole: SystemRoleAgent}, "farmers.create")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestGateNilIdentity(t *testing.T) {
	gate := NewGate(NewResolver(&fakeStore{}, nil), nil, nil)
	_, err := gate.RequireAll(context.Background(), nil, "farmers.read")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestGatePrefersRequestSnapshot(t *testing.T) {
	// The store would grant nothing, but the request carries a snapshot.
	gate := NewGate(NewResolver(&fakeStore{}, nil), nil, nil)
	ctx := ContextWithResolved(context.Background(), NewPermissionSet("users.delete"))

	decision, err := gate.RequireAll(ctx, &Identity{UserID: 1, SystemRole: SystemRoleViewer}, "users.delete")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestGateNotifiesObserver(t *testing.T) {
	observer := &countingObserver{}
	gate := NewGate(NewResolver(&fakeStore{}, nil), nil, observer)
	ctx := context.Background()
	viewer := &Identity{UserID: 1, SystemRole: SystemRoleViewer}

	_, err := gate.RequireAll(ctx, viewer, "farmers.read")
	require.NoError(t, err)
	_, err = gate.RequireAll(ctx, viewer, "farmers.delete")
	require.NoError(t, err)

	assert.Equal(t, 1, observer.allowed)
	assert.Equal(t, 1, observer.denied)
}
