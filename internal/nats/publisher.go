package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
)

// AuditEvent is the wire shape published for every audit entry.
type AuditEvent struct {
	Type     string           `json:"type"`
	TenantID string           `json:"tenant_id"`
	Entry    *models.AuditLog `json:"entry"`
}

// Publisher publishes audit events to JetStream. Publishing is best-effort:
// a broken broker must never change a permission decision, so failures are
// absorbed by a circuit breaker and logged.
type Publisher struct {
	client  *Client
	logger  *logrus.Logger
	breaker *gobreaker.CircuitBreaker
}

// NewPublisher creates a new audit event publisher
func NewPublisher(client *Client, logger *logrus.Logger) *Publisher {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nats-audit-publisher",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Audit publisher circuit breaker state changed")
		},
	})
	return &Publisher{
		client:  client,
		logger:  logger,
		breaker: breaker,
	}
}

// PublishEntry publishes one audit entry to the tenant-specific subject
// audit.{tenant_id}.{event_type}.
func (p *Publisher) PublishEntry(ctx context.Context, eventType string, entry *models.AuditLog) error {
	if p.client == nil || !p.client.IsConnected() {
		p.logger.Debug("NATS not connected, skipping audit event publish")
		return nil
	}

	event := AuditEvent{
		Type:     eventType,
		TenantID: entry.TenantID.String(),
		Entry:    entry,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	subject := fmt.Sprintf("audit.%s.%s", event.TenantID, eventType)

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return p.client.JetStream().Publish(subject, data, nats.Context(ctx))
	})
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"tenant_id":  event.TenantID,
			"event_type": eventType,
			"subject":    subject,
		}).WithError(err).Warn("Failed to publish audit event")
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
