package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditResult represents the outcome of an audited decision or action
type AuditResult string

const (
	ResultGranted AuditResult = "GRANTED"
	ResultDenied  AuditResult = "DENIED"
	ResultSuccess AuditResult = "SUCCESS"
	ResultFailure AuditResult = "FAILURE"
)

// AuditLog is one immutable record of a permission decision or user action.
// Rows are created by the permission-check and action-logging paths, never
// updated, and deleted only by the age-based retention job.
type AuditLog struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	TenantID uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index"`

	UserID *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`

	// Structured resource/action pair plus the optional context qualifier.
	// These are passed by callers, never parsed out of permission names.
	Resource string `json:"resource" gorm:"size:50;not null;index"`
	Action   string `json:"action" gorm:"size:50;not null;index"`
	Context  string `json:"context" gorm:"size:50"`

	ResourceID string `json:"resource_id" gorm:"size:255;index"`

	Result AuditResult `json:"result" gorm:"size:20;not null;index"`
	Reason string      `json:"reason" gorm:"type:text"`

	// Request details, when the decision happened inside an HTTP request
	Method    string `json:"method" gorm:"size:10"`
	Path      string `json:"path" gorm:"size:500"`
	IPAddress string `json:"ip_address" gorm:"size:45"`
	RequestID string `json:"request_id" gorm:"size:100;index"`

	// Sanitized snapshot of the inbound payload; sensitive-looking fields
	// are replaced with a redaction marker before this is ever populated.
	RequestData datatypes.JSON `json:"request_data" gorm:"type:jsonb"`
	Metadata    datatypes.JSON `json:"metadata" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"index;not null"`
}

// TableName specifies the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

// OwnerTenantID returns the tenant the row is stamped with.
func (a *AuditLog) OwnerTenantID() uuid.UUID { return a.TenantID }

// SetOwnerTenantID stamps the row with a tenant.
func (a *AuditLog) SetOwnerTenantID(id uuid.UUID) { a.TenantID = id }

// BeforeCreate assigns the primary key and timestamp when unset.
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return nil
}

// Denied reports whether the entry records a permission denial.
func (a *AuditLog) Denied() bool {
	return a.Result == ResultDenied
}

// AuditLogFilter represents filter criteria for querying audit logs
type AuditLogFilter struct {
	UserID     *uuid.UUID  `json:"user_id"`
	Resource   string      `json:"resource"`
	Action     string      `json:"action"`
	ResourceID string      `json:"resource_id"`
	Result     AuditResult `json:"result"`
	FromDate   *time.Time  `json:"from_date"`
	ToDate     *time.Time  `json:"to_date"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}
