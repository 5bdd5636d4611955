package rbac

import (
	"context"
	"log/slog"
)

// Decision is the outcome of an authorization check. A denial is ordinary
// control flow, not an error; the error return of the gate methods is
// reserved for resolution failures (storage problems and missing identity).
type Decision struct {
	Allowed  bool
	Required []string
	Held     []string
}

// DecisionObserver receives gate outcomes for metrics. Optional.
type DecisionObserver interface {
	ObserveDecision(allowed bool)
}

// Gate is the enforcement point for protected operations. No operation may
// execute between authentication and an allowed decision.
type Gate struct {
	resolver *Resolver
	logger   *slog.Logger
	observer DecisionObserver
}

// NewGate constructs a Gate. logger and observer may be nil.
func NewGate(resolver *Resolver, logger *slog.Logger, observer DecisionObserver) *Gate {
	return &Gate{resolver: resolver, logger: logger, observer: observer}
}

// RequirePermission checks a single permission.
func (g *Gate) RequirePermission(ctx context.Context, identity *Identity, perm string) (Decision, error) {
	return g.RequireAll(ctx, identity, perm)
}

// RequireAny allows the operation when the resolved set intersects perms.
func (g *Gate) RequireAny(ctx context.Context, identity *Identity, perms ...string) (Decision, error) {
	held, err := g.heldSet(ctx, identity)
	if err != nil {
		return Decision{}, err
	}
	return g.decide(identity, held.HasAny(perms...), perms, held), nil
}

// RequireAll allows the operation only when the resolved set is a superset
// of perms.
func (g *Gate) RequireAll(ctx context.Context, identity *Identity, perms ...string) (Decision, error) {
	held, err := g.heldSet(ctx, identity)
	if err != nil {
		return Decision{}, err
	}
	return g.decide(identity, held.HasAll(perms...), perms, held), nil
}

// heldSet prefers the request-scoped snapshot so concurrent admin changes do
// not flip decisions mid-request.
func (g *Gate) heldSet(ctx context.Context, identity *Identity) (PermissionSet, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	if set, ok := ResolvedFromContext(ctx); ok {
		return set, nil
	}
	return g.resolver.Resolve(ctx, identity)
}

func (g *Gate) decide(identity *Identity, allowed bool, required []string, held PermissionSet) Decision {
	if g.observer != nil {
		g.observer.ObserveDecision(allowed)
	}
	if g.logger != nil {
		g.logger.Debug("authorization decision",
			slog.Int64("user_id", identity.UserID),
			slog.Any("required", required),
			slog.Bool("allowed", allowed))
	}
	return Decision{Allowed: allowed, Required: required, Held: held.List()}
}
