package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TenantOwned is embedded by every model whose rows belong to exactly one
// tenant. The repository layer stamps TenantID on create and injects it into
// every query predicate.
type TenantOwned struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnerTenantID returns the tenant the row is stamped with.
func (m *TenantOwned) OwnerTenantID() uuid.UUID { return m.TenantID }

// SetOwnerTenantID stamps the row with a tenant.
func (m *TenantOwned) SetOwnerTenantID(id uuid.UUID) { m.TenantID = id }

// BeforeCreate assigns the primary key when the caller didn't.
func (m *TenantOwned) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TenantScopedEntity is implemented by all models embedding TenantOwned.
type TenantScopedEntity interface {
	OwnerTenantID() uuid.UUID
	SetOwnerTenantID(uuid.UUID)
}

// Tenant plan tiers
const (
	PlanFree         = "free"
	PlanStarter      = "starter"
	PlanProfessional = "professional"
	PlanEnterprise   = "enterprise"
)

// Tenant represents one law firm: the isolation boundary for every
// tenant-owned record in the system.
type Tenant struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name         string    `json:"name" gorm:"not null" validate:"required,min=2,max=255"`
	Subdomain    string    `json:"subdomain" gorm:"unique;not null;size:63" validate:"required,min=3,max=63"`
	CustomDomain string    `json:"custom_domain" gorm:"size:255"`
	Plan         string    `json:"plan" gorm:"size:50;default:'free';index" validate:"oneof=free starter professional enterprise"`
	IsActive     bool      `json:"is_active" gorm:"default:true;index"`

	// Usage limits as JSONB, e.g. {"cases": 100, "storage_mb": 1024}
	Limits datatypes.JSON `json:"limits" gorm:"type:jsonb"`

	TrialEndsAt     *time.Time `json:"trial_ends_at"`
	SuspendedAt     *time.Time `json:"suspended_at"`
	SuspendedReason string     `json:"suspended_reason" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Memberships []TenantMembership `json:"memberships,omitempty" gorm:"foreignKey:TenantID"`
}

// TableName specifies the table name
func (Tenant) TableName() string {
	return "tenants"
}

// BeforeCreate assigns the primary key when the caller didn't.
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Suspended reports whether the tenant has been soft-suspended.
func (t *Tenant) Suspended() bool {
	return !t.IsActive && t.SuspendedAt != nil
}

// User represents a global account. One user may hold memberships in multiple
// tenants; exactly one tenant is current per request.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email     string    `json:"email" gorm:"unique;not null;index" validate:"required,email"`
	FirstName string    `json:"first_name" gorm:"size:100"`
	LastName  string    `json:"last_name" gorm:"size:100"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Memberships []TenantMembership `json:"memberships,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns the primary key when the caller didn't.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Membership roles within a tenant
const (
	RoleOwner     = "owner"
	RoleAdmin     = "admin"
	RoleLawyer    = "lawyer"
	RoleAssistant = "assistant"
)

// TenantMembership is the tenant<->user join row. At most one row exists per
// (tenant, user) pair, enforced by the composite unique index.
type TenantMembership struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	TenantID uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_user"`
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_user;index"`

	Role string `json:"role" gorm:"size:50;not null;default:'assistant'" validate:"oneof=owner admin lawyer assistant"`

	// Per-member permission overrides as JSONB, e.g. {"cases": ["read"]}.
	// Fine-grained grant/deny rows live in member_permissions; this field
	// carries ad-hoc overrides imported from external systems.
	CustomPermissions datatypes.JSON `json:"custom_permissions" gorm:"type:jsonb"`

	IsActive  bool       `json:"is_active" gorm:"default:true;index"`
	InvitedAt *time.Time `json:"invited_at"`
	JoinedAt  *time.Time `json:"joined_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name
func (TenantMembership) TableName() string {
	return "tenant_users"
}

// BeforeCreate assigns the primary key when the caller didn't.
func (m *TenantMembership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Permission is one (resource, action, optional context) capability in the
// global catalog. Name is the derived unique identifier, e.g. "cases:update"
// or "documents:read:own".
type Permission struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name        string    `json:"name" gorm:"unique;not null;size:150"`
	Resource    string    `json:"resource" gorm:"size:50;not null;index"`
	Action      string    `json:"action" gorm:"size:50;not null"`
	Context     string    `json:"context" gorm:"size:50"`
	Description string    `json:"description" gorm:"type:text"`
	IsSystem    bool      `json:"is_system" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Permission) TableName() string {
	return "permissions"
}

// BeforeCreate assigns the primary key and derives Name when unset.
func (p *Permission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Name == "" {
		p.Name = PermissionName(p.Resource, p.Action, p.Context)
	}
	return nil
}

// PermissionName derives the unique permission name from its parts.
// The separator is ":", matching the resource:action convention used
// throughout the permission catalog.
func PermissionName(resource, action, context string) string {
	if context != "" {
		return fmt.Sprintf("%s:%s:%s", resource, action, context)
	}
	return fmt.Sprintf("%s:%s", resource, action)
}

// Role is a tenant-scoped named bundle of permissions.
type Role struct {
	TenantOwned
	Name        string `json:"name" gorm:"size:100;not null;index"`
	Description string `json:"description" gorm:"type:text"`
	IsSystem    bool   `json:"is_system" gorm:"default:false"`

	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:role_permissions"`
}

// TableName specifies the table name
func (Role) TableName() string {
	return "roles"
}

// MemberPermission is a direct per-user permission grant or denial within a
// tenant, optionally expiring. A denial overrides any role-derived grant.
type MemberPermission struct {
	TenantOwned
	UserID       uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	PermissionID uuid.UUID  `json:"permission_id" gorm:"type:uuid;not null;index"`
	Granted      bool       `json:"granted" gorm:"default:true"`
	ExpiresAt    *time.Time `json:"expires_at"`
	GrantedBy    *uuid.UUID `json:"granted_by" gorm:"type:uuid"`

	Permission *Permission `json:"permission,omitempty" gorm:"foreignKey:PermissionID"`
}

// TableName specifies the table name
func (MemberPermission) TableName() string {
	return "member_permissions"
}

// Expired reports whether the grant has an expiry in the past.
func (m *MemberPermission) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && m.ExpiresAt.Before(now)
}
