// Package tenantctx holds the per-request tenant context and makes it
// available to arbitrarily deep call chains without explicit threading of
// tenant parameters.
//
// The context travels on context.Context, so it automatically follows every
// suspension point of one request (database calls, outbound calls, goroutines
// started with the derived context) while remaining invisible to concurrent,
// independently-scoped request chains. Nested Run calls shadow the outer
// scope for their own subtree and the outer value is restored for free when
// the nested call returns, because contexts are immutable values.
package tenantctx

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
)

// ErrMissingTenantContext is returned by the Require accessors when no tenant
// scope is active. Callers that stamp tenant-owned rows fail fast with this
// error instead of silently writing unattributed data.
var ErrMissingTenantContext = errors.New("tenantctx: no tenant context active")

// Context is the ephemeral tenant tuple for one request's dynamic extent.
// It is never persisted and never shared across requests.
type Context struct {
	TenantID   uuid.UUID
	Tenant     *models.Tenant
	UserID     *uuid.UUID
	Membership *models.TenantMembership
}

type scopeKey struct{}

// fallbackKey carries the raw inbound X-Tenant-ID header value for code paths
// reached before (or without) a structured scope being opened.
type fallbackKey struct{}

// Store is the process-wide tenant context holder. It is stateless; the
// context data itself lives on context.Context. It exists as an injectable
// object (rather than package-level functions) so that components receive it
// through ordinary dependency injection and tests can construct their own.
type Store struct{}

// NewStore creates a tenant context store. One instance per process.
func NewStore() *Store {
	return &Store{}
}

// Bind establishes tc as the current tenant context for everything derived
// from the returned context. An existing scope is shadowed, not mutated.
func (s *Store) Bind(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, scopeKey{}, tc)
}

// Run executes fn with tc bound for fn's dynamic extent and returns fn's
// error. The caller's own context is left untouched.
func (s *Store) Run(ctx context.Context, tc *Context, fn func(context.Context) error) error {
	return fn(s.Bind(ctx, tc))
}

// WithHeaderTenant records the raw tenant id supplied via the request header
// as a fallback source for TenantID lookups outside a structured scope.
func (s *Store) WithHeaderTenant(ctx context.Context, raw string) context.Context {
	if raw == "" {
		return ctx
	}
	return context.WithValue(ctx, fallbackKey{}, raw)
}

// Current returns the full tenant tuple of the nearest enclosing scope.
func (s *Store) Current(ctx context.Context) (*Context, bool) {
	tc, ok := ctx.Value(scopeKey{}).(*Context)
	if !ok || tc == nil {
		return nil, false
	}
	return tc, true
}

// Has reports whether a tenant scope is active.
func (s *Store) Has(ctx context.Context) bool {
	_, ok := s.Current(ctx)
	return ok
}

// Require returns the full tenant tuple or ErrMissingTenantContext.
func (s *Store) Require(ctx context.Context) (*Context, error) {
	tc, ok := s.Current(ctx)
	if !ok {
		return nil, ErrMissingTenantContext
	}
	return tc, nil
}

// TenantID returns the tenant id of the active scope. When no scope is
// active it falls back to the inbound request's tenant header, covering code
// paths invoked outside the structured entry point.
func (s *Store) TenantID(ctx context.Context) (uuid.UUID, bool) {
	if tc, ok := s.Current(ctx); ok {
		return tc.TenantID, true
	}
	if raw, ok := ctx.Value(fallbackKey{}).(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

// RequireTenantID returns the active tenant id or ErrMissingTenantContext.
// Never defaults to a zero tenant: a silent default here would be a
// cross-tenant data-leak risk.
func (s *Store) RequireTenantID(ctx context.Context) (uuid.UUID, error) {
	id, ok := s.TenantID(ctx)
	if !ok {
		return uuid.Nil, ErrMissingTenantContext
	}
	return id, nil
}

// Tenant returns the resolved tenant of the active scope. No header fallback:
// only the structured context carries a loaded tenant.
func (s *Store) Tenant(ctx context.Context) (*models.Tenant, bool) {
	tc, ok := s.Current(ctx)
	if !ok || tc.Tenant == nil {
		return nil, false
	}
	return tc.Tenant, true
}

// UserID returns the acting user of the active scope, when authenticated.
func (s *Store) UserID(ctx context.Context) (uuid.UUID, bool) {
	tc, ok := s.Current(ctx)
	if !ok || tc.UserID == nil {
		return uuid.Nil, false
	}
	return *tc.UserID, true
}

// Membership returns the acting user's membership row in the active tenant.
func (s *Store) Membership(ctx context.Context) (*models.TenantMembership, bool) {
	tc, ok := s.Current(ctx)
	if !ok || tc.Membership == nil {
		return nil, false
	}
	return tc.Membership, true
}
