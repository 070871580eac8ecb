package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// CrossTenantViolationError is the defense-in-depth failure raised when a
// mutation targets a row stamped with a different tenant than the active
// context. The scoped-query path normally prevents such rows from being
// loaded at all, so this error indicates an escape hatch was misused.
type CrossTenantViolationError struct {
	ContextTenantID uuid.UUID `json:"context_tenant_id"`
	RecordTenantID  uuid.UUID `json:"record_tenant_id"`
}

func (e *CrossTenantViolationError) Error() string {
	return fmt.Sprintf("cross-tenant violation: record belongs to tenant %s but context is tenant %s",
		e.RecordTenantID, e.ContextTenantID)
}

// IsCrossTenantViolation checks if an error is a CrossTenantViolationError
func IsCrossTenantViolation(err error) (*CrossTenantViolationError, bool) {
	var violation *CrossTenantViolationError
	if errors.As(err, &violation) {
		return violation, true
	}
	return nil, false
}

// TenantScope makes tenant isolation the default for every tenant-owned
// table. Each tenant-owned entity's repository composes it and builds all
// queries through Scoped; the escape hatches are separate, named methods so
// that every bypass of the isolation guarantee is visible at the call site
// and findable with grep.
type TenantScope struct {
	db    *gorm.DB
	store *tenantctx.Store
}

// NewTenantScope creates the scoping base for a repository.
func NewTenantScope(db *gorm.DB, store *tenantctx.Store) TenantScope {
	return TenantScope{db: db, store: store}
}

// DB returns the raw handle for table-agnostic work (transactions, health).
func (s TenantScope) DB() *gorm.DB {
	return s.db
}

// Store returns the tenant context store the scope consults.
func (s TenantScope) Store() *tenantctx.Store {
	return s.store
}

// Scoped returns a query handle restricted to the tenant active in ctx.
// When no tenant id is available at all the query proceeds unscoped: reads
// without context occur in legitimate non-request paths (scheduled jobs)
// that must not be hard-blocked. Creation is the fail-fast side, via Stamp.
func (s TenantScope) Scoped(ctx context.Context) *gorm.DB {
	db := s.db.WithContext(ctx)
	if id, ok := s.store.TenantID(ctx); ok {
		db = db.Where("tenant_id = ?", id)
	}
	return db
}

// ForTenant returns a query handle restricted to an explicit tenant,
// regardless of the active context. Reserved for administrative tooling
// operating across tenants under its own authorization path.
func (s TenantScope) ForTenant(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return s.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
}

// CrossTenant returns a query handle with no tenant predicate at all. It
// defeats the isolation guarantee and exists only for system-level
// administrative operations; call sites are expected to be reviewable.
func (s TenantScope) CrossTenant(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Stamp attributes a new row to the active tenant. Rows that already carry a
// tenant id (admin tooling acting on behalf of a tenant) are left alone.
// With neither an explicit id nor an active context this fails with
// tenantctx.ErrMissingTenantContext: a tenant-owned row can never be created
// silently unattributed.
func (s TenantScope) Stamp(ctx context.Context, entity models.TenantScopedEntity) error {
	if entity.OwnerTenantID() != uuid.Nil {
		return nil
	}
	id, err := s.store.RequireTenantID(ctx)
	if err != nil {
		return err
	}
	entity.SetOwnerTenantID(id)
	return nil
}

// EnsureOwnership verifies that a loaded row belongs to the tenant active in
// ctx before it is updated or deleted. With no active tenant the check is
// skipped, matching the advisory read behavior outside HTTP.
func (s TenantScope) EnsureOwnership(ctx context.Context, entity models.TenantScopedEntity) error {
	id, ok := s.store.TenantID(ctx)
	if !ok {
		return nil
	}
	if entity.OwnerTenantID() != id {
		return &CrossTenantViolationError{
			ContextTenantID: id,
			RecordTenantID:  entity.OwnerTenantID(),
		}
	}
	return nil
}

// Pagination normalizes page/page-size input for list queries.
type Pagination struct {
	Page     int
	PageSize int
}

// Normalize clamps pagination to sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Limit returns the row limit for the normalized page.
func (p Pagination) Limit() int {
	return p.Normalize().PageSize
}
