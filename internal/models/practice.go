package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Client statuses
const (
	ClientStatusActive   = "active"
	ClientStatusArchived = "archived"
)

// Client represents a person or company the firm works for.
type Client struct {
	TenantOwned
	Name       string     `json:"name" gorm:"not null;index" validate:"required,min=2,max=255"`
	Email      string     `json:"email" gorm:"size:255;index" validate:"omitempty,email"`
	Phone      string     `json:"phone" gorm:"size:50"`
	ClientType string     `json:"client_type" gorm:"size:20;default:'person'" validate:"oneof=person company"`
	TaxID      string     `json:"tax_id" gorm:"size:50"`
	Notes      string     `json:"notes" gorm:"type:text"`
	Status     string     `json:"status" gorm:"size:20;default:'active';index" validate:"oneof=active archived"`
	ArchivedAt *time.Time `json:"archived_at"`

	Cases []Case `json:"cases,omitempty" gorm:"foreignKey:ClientID"`
}

// TableName specifies the table name
func (Client) TableName() string {
	return "clients"
}

// Case statuses
const (
	CaseStatusOpen     = "open"
	CaseStatusClosed   = "closed"
	CaseStatusArchived = "archived"
)

// Case represents one legal matter handled for a client.
type Case struct {
	TenantOwned
	ClientID uuid.UUID `json:"client_id" gorm:"type:uuid;not null;index"`

	Number      string `json:"number" gorm:"size:100;index"`
	Title       string `json:"title" gorm:"not null" validate:"required,min=2,max=255"`
	Description string `json:"description" gorm:"type:text"`
	CourtName   string `json:"court_name" gorm:"size:255"`
	Status      string `json:"status" gorm:"size:20;default:'open';index" validate:"oneof=open closed archived"`

	ResponsibleUserID *uuid.UUID `json:"responsible_user_id" gorm:"type:uuid;index"`

	OpenedAt time.Time  `json:"opened_at"`
	ClosedAt *time.Time `json:"closed_at"`

	Client    *Client     `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Events    []CaseEvent `json:"events,omitempty" gorm:"foreignKey:CaseID"`
	Deadlines []Deadline  `json:"deadlines,omitempty" gorm:"foreignKey:CaseID"`
}

// TableName specifies the table name
func (Case) TableName() string {
	return "cases"
}

// CaseEvent is one entry in a case's timeline (hearing, filing, note).
type CaseEvent struct {
	TenantOwned
	CaseID uuid.UUID `json:"case_id" gorm:"type:uuid;not null;index"`

	EventType   string         `json:"event_type" gorm:"size:50;not null" validate:"required"`
	Description string         `json:"description" gorm:"type:text"`
	OccurredAt  time.Time      `json:"occurred_at" gorm:"index"`
	CreatedBy   *uuid.UUID     `json:"created_by" gorm:"type:uuid"`
	Metadata    datatypes.JSON `json:"metadata" gorm:"type:jsonb"`
}

// TableName specifies the table name
func (CaseEvent) TableName() string {
	return "case_events"
}

// Document is stored file metadata; the binary lives in an external store
// addressed by StorageKey.
type Document struct {
	TenantOwned
	CaseID   *uuid.UUID `json:"case_id" gorm:"type:uuid;index"`
	ClientID *uuid.UUID `json:"client_id" gorm:"type:uuid;index"`

	Title       string `json:"title" gorm:"not null" validate:"required"`
	FileName    string `json:"file_name" gorm:"size:255;not null"`
	ContentType string `json:"content_type" gorm:"size:100"`
	SizeBytes   int64  `json:"size_bytes"`
	StorageKey  string `json:"storage_key" gorm:"size:500;not null"`

	UploadedBy *uuid.UUID `json:"uploaded_by" gorm:"type:uuid"`
}

// TableName specifies the table name
func (Document) TableName() string {
	return "documents"
}

// Deadline statuses
const (
	DeadlineStatusPending = "pending"
	DeadlineStatusDone    = "done"
	DeadlineStatusMissed  = "missed"
)

// Deadline is a dated obligation attached to a case.
type Deadline struct {
	TenantOwned
	CaseID uuid.UUID `json:"case_id" gorm:"type:uuid;not null;index"`

	Title       string     `json:"title" gorm:"not null" validate:"required"`
	Description string     `json:"description" gorm:"type:text"`
	DueAt       time.Time  `json:"due_at" gorm:"not null;index"`
	Status      string     `json:"status" gorm:"size:20;default:'pending';index" validate:"oneof=pending done missed"`
	AssignedTo  *uuid.UUID `json:"assigned_to" gorm:"type:uuid;index"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TableName specifies the table name
func (Deadline) TableName() string {
	return "deadlines"
}

// TimeEntry records billable or non-billable work against a case.
type TimeEntry struct {
	TenantOwned
	CaseID uuid.UUID `json:"case_id" gorm:"type:uuid;not null;index"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`

	Description string    `json:"description" gorm:"type:text"`
	Minutes     int       `json:"minutes" gorm:"not null" validate:"required,min=1"`
	WorkedOn    time.Time `json:"worked_on" gorm:"index"`
	Billable    bool      `json:"billable" gorm:"default:true"`
}

// TableName specifies the table name
func (TimeEntry) TableName() string {
	return "time_entries"
}
