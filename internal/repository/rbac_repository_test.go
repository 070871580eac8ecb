package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

func TestEnsurePermissionIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewRBACRepository(db, tenantctx.NewStore())
	ctx := context.Background()

	first := &models.Permission{Resource: "cases", Action: "read"}
	require.NoError(t, repo.EnsurePermission(ctx, first))
	require.NotEmpty(t, first.ID)

	// A second seed of the same entry must land on the existing row, the
	// same way a concurrently starting replica would.
	second := &models.Permission{Resource: "cases", Action: "read"}
	require.NoError(t, repo.EnsurePermission(ctx, second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Name, second.Name)

	var count int64
	require.NoError(t, db.Model(&models.Permission{}).Where("name = ?", first.Name).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
