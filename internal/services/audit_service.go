package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	natsx "github.com/gabrielmaialva33/juridicai-sub002/internal/nats"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
)

// sensitiveFragments marks payload keys whose values are never persisted.
// Matching is case-insensitive on key substrings.
var sensitiveFragments = []string{
	"password",
	"token",
	"secret",
	"key",
	"authorization",
	"cookie",
}

// RedactedValue replaces sensitive payload values in audit snapshots.
const RedactedValue = "[REDACTED]"

// AuditPublisher publishes audit entries to the event stream.
type AuditPublisher interface {
	PublishEntry(ctx context.Context, eventType string, entry *models.AuditLog) error
}

// AuditRecorder is the narrow dependency the permission service needs:
// persist one decision entry. Implemented by AuditService.
type AuditRecorder interface {
	RecordDecision(ctx context.Context, entry *models.AuditLog)
}

// AuditService handles business logic for the audit trail: persisting
// entries, streaming them, querying, and retention cleanup.
type AuditService struct {
	repo      repository.AuditRepositoryInterface
	logger    *logrus.Logger
	publisher AuditPublisher
}

// NewAuditService creates a new audit service
func NewAuditService(repo repository.AuditRepositoryInterface, logger *logrus.Logger, publisher AuditPublisher) *AuditService {
	return &AuditService{
		repo:      repo,
		logger:    logger,
		publisher: publisher,
	}
}

// RecordDecision persists one permission-decision entry. Persistence failures
// are logged and swallowed: an audit outage must never flip an authorization
// decision that was already made.
func (s *AuditService) RecordDecision(ctx context.Context, entry *models.AuditLog) {
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"tenant_id": entry.TenantID,
			"resource":  entry.Resource,
			"action":    entry.Action,
			"result":    entry.Result,
		}).Error("Failed to persist audit entry")
		return
	}
	s.publish(entry)
}

// LogAction records a completed user action (create, update, delete) with an
// optional request payload snapshot. The snapshot is sanitized before it is
// stored.
func (s *AuditService) LogAction(ctx context.Context, entry *models.AuditLog, payload map[string]interface{}) error {
	if payload != nil {
		data, err := json.Marshal(Sanitize(payload))
		if err != nil {
			return fmt.Errorf("failed to marshal audit payload: %w", err)
		}
		entry.RequestData = datatypes.JSON(data)
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("tenant_id", entry.TenantID).Error("Failed to create audit entry")
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	s.publish(entry)
	return nil
}

func (s *AuditService) publish(entry *models.AuditLog) {
	if s.publisher == nil {
		return
	}
	go func() {
		if err := s.publisher.PublishEntry(context.Background(), "created", entry); err != nil {
			s.logger.WithError(err).Debug("Audit event publish failed")
		}
	}()
}

// List returns the active tenant's audit entries.
func (s *AuditService) List(ctx context.Context, filter *models.AuditLogFilter) ([]models.AuditLog, int64, error) {
	return s.repo.List(ctx, filter)
}

// ListForTenant returns an explicit tenant's audit entries. Administrative
// surface only.
func (s *AuditService) ListForTenant(ctx context.Context, tenantID uuid.UUID, filter *models.AuditLogFilter) ([]models.AuditLog, int64, error) {
	return s.repo.ListForTenant(ctx, tenantID, filter)
}

// Cleanup deletes entries older than the retention window.
func (s *AuditService) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.WithError(err).Error("Audit retention cleanup failed")
		return 0, err
	}
	s.logger.WithFields(logrus.Fields{
		"deleted":        deleted,
		"retention_days": retentionDays,
	}).Info("Audit retention cleanup completed")
	return deleted, nil
}

// Sanitize returns a deep copy of the payload with every value under a
// sensitive-looking key replaced by the redaction marker. Nested maps and
// slices are walked; non-sensitive values are kept as-is.
func Sanitize(payload map[string]interface{}) map[string]interface{} {
	if payload == nil {
		return nil
	}
	clean := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		if isSensitiveKey(k) {
			clean[k] = RedactedValue
			continue
		}
		clean[k] = sanitizeValue(v)
	}
	return clean
}

func sanitizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return Sanitize(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = sanitizeValue(item)
		}
		return out
	default:
		return v
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, fragment := range sensitiveFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

var _ AuditRecorder = (*AuditService)(nil)
var _ AuditPublisher = (*natsx.Publisher)(nil)
