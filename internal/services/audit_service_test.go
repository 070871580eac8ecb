package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
)

type fakeAuditRepo struct {
	entries []*models.AuditLog
	failing bool
}

func (f *fakeAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	if f.failing {
		return errors.New("database unavailable")
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, filter *models.AuditLogFilter) ([]models.AuditLog, int64, error) {
	out := make([]models.AuditLog, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAuditRepo) ListForTenant(ctx context.Context, tenantID uuid.UUID, filter *models.AuditLogFilter) ([]models.AuditLog, int64, error) {
	return f.List(ctx, filter)
}

func (f *fakeAuditRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	kept := f.entries[:0]
	var deleted int64
	for _, e := range f.entries {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return deleted, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestSanitizeRedactsSensitiveKeys(t *testing.T) {
	payload := map[string]interface{}{
		"name":          "Maria Silva",
		"Password":      "hunter2",
		"api_token":     "tok_123",
		"client_secret": "sssh",
		"ApiKey":        "k-1",
		"Authorization": "Bearer abc",
		"cookie_jar":    "session=1",
		"email":         "maria@example.com",
	}

	clean := Sanitize(payload)

	assert.Equal(t, "Maria Silva", clean["name"])
	assert.Equal(t, "maria@example.com", clean["email"])
	assert.Equal(t, RedactedValue, clean["Password"])
	assert.Equal(t, RedactedValue, clean["api_token"])
	assert.Equal(t, RedactedValue, clean["client_secret"])
	assert.Equal(t, RedactedValue, clean["ApiKey"])
	assert.Equal(t, RedactedValue, clean["Authorization"])
	assert.Equal(t, RedactedValue, clean["cookie_jar"])
}

func TestSanitizeWalksNestedStructures(t *testing.T) {
	payload := map[string]interface{}{
		"profile": map[string]interface{}{
			"password": "deep",
			"phone":    "11 99999-0000",
		},
		"credentials": []interface{}{
			map[string]interface{}{"token": "a", "label": "primary"},
		},
	}

	clean := Sanitize(payload)

	profile := clean["profile"].(map[string]interface{})
	assert.Equal(t, RedactedValue, profile["password"])
	assert.Equal(t, "11 99999-0000", profile["phone"])

	creds := clean["credentials"].([]interface{})
	first := creds[0].(map[string]interface{})
	assert.Equal(t, RedactedValue, first["token"])
	assert.Equal(t, "primary", first["label"])
}

func TestSanitizeLeavesOriginalUntouched(t *testing.T) {
	payload := map[string]interface{}{"password": "orig"}
	_ = Sanitize(payload)
	assert.Equal(t, "orig", payload["password"])
}

func TestLogActionSanitizesPayloadSnapshot(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo, quietLogger(), nil)

	entry := &models.AuditLog{
		TenantID: uuid.New(),
		Resource: "clients",
		Action:   "create",
		Result:   models.ResultSuccess,
	}
	err := svc.LogAction(context.Background(), entry, map[string]interface{}{
		"name":     "Novo Cliente",
		"password": "secret-value",
	})
	require.NoError(t, err)
	require.Len(t, repo.entries, 1)

	var snapshot map[string]interface{}
	require.NoError(t, json.Unmarshal(repo.entries[0].RequestData, &snapshot))
	assert.Equal(t, "Novo Cliente", snapshot["name"])
	assert.Equal(t, RedactedValue, snapshot["password"])
}

func TestRecordDecisionSwallowsStoreFailure(t *testing.T) {
	repo := &fakeAuditRepo{failing: true}
	svc := NewAuditService(repo, quietLogger(), nil)

	assert.NotPanics(t, func() {
		svc.RecordDecision(context.Background(), &models.AuditLog{
			TenantID: uuid.New(),
			Resource: "cases",
			Action:   "read",
			Result:   models.ResultGranted,
		})
	})
}

func TestCleanupDeletesOnlyExpiredEntries(t *testing.T) {
	repo := &fakeAuditRepo{}
	repo.entries = []*models.AuditLog{
		{CreatedAt: time.Now().AddDate(0, 0, -120)},
		{CreatedAt: time.Now()},
	}
	svc := NewAuditService(repo, quietLogger(), nil)

	deleted, err := svc.Cleanup(context.Background(), 90)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
	assert.Len(t, repo.entries, 1)
}
