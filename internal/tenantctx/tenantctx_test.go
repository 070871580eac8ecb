package tenantctx_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

func TestStore_RunBindsAndRestores(t *testing.T) {
	store := tenantctx.NewStore()
	outer := uuid.New()
	inner := uuid.New()

	ctx := context.Background()
	err := store.Run(ctx, &tenantctx.Context{TenantID: outer}, func(ctx context.Context) error {
		id, ok := store.TenantID(ctx)
		require.True(t, ok)
		assert.Equal(t, outer, id)

		// Nested scope shadows the outer one for its own subtree only.
		err := store.Run(ctx, &tenantctx.Context{TenantID: inner}, func(ctx context.Context) error {
			id, ok := store.TenantID(ctx)
			require.True(t, ok)
			assert.Equal(t, inner, id)
			return nil
		})
		require.NoError(t, err)

		// Outer scope is intact after the nested call returns.
		id, ok = store.TenantID(ctx)
		require.True(t, ok)
		assert.Equal(t, outer, id)
		return nil
	})
	require.NoError(t, err)

	// The caller's context was never touched.
	_, ok := store.TenantID(ctx)
	assert.False(t, ok)
}

func TestStore_DeepNestingRestores(t *testing.T) {
	store := tenantctx.NewStore()
	ids := make([]uuid.UUID, 5)
	for i := range ids {
		ids[i] = uuid.New()
	}

	var run func(ctx context.Context, depth int) error
	run = func(ctx context.Context, depth int) error {
		if depth == len(ids) {
			return nil
		}
		return store.Run(ctx, &tenantctx.Context{TenantID: ids[depth]}, func(ctx context.Context) error {
			if err := run(ctx, depth+1); err != nil {
				return err
			}
			id, ok := store.TenantID(ctx)
			require.True(t, ok)
			assert.Equal(t, ids[depth], id, "depth %d must see its own tenant after deeper scopes return", depth)
			return nil
		})
	}
	require.NoError(t, run(context.Background(), 0))
}

func TestStore_ConcurrentChainsAreIsolated(t *testing.T) {
	store := tenantctx.NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			want := uuid.New()
			err := store.Run(context.Background(), &tenantctx.Context{TenantID: want}, func(ctx context.Context) error {
				// Simulate a few suspension points; the scope must survive all of them.
				for j := 0; j < 10; j++ {
					got, ok := store.TenantID(ctx)
					require.True(t, ok)
					require.Equal(t, want, got)
				}
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestStore_HeaderFallback(t *testing.T) {
	store := tenantctx.NewStore()
	headerID := uuid.New()

	ctx := store.WithHeaderTenant(context.Background(), headerID.String())

	// TenantID honors the header fallback when no scope is open.
	id, ok := store.TenantID(ctx)
	require.True(t, ok)
	assert.Equal(t, headerID, id)

	// The structured accessors do not.
	_, ok = store.Tenant(ctx)
	assert.False(t, ok)
	assert.False(t, store.Has(ctx))

	// An open scope always wins over the header.
	scoped := uuid.New()
	_ = store.Run(ctx, &tenantctx.Context{TenantID: scoped}, func(ctx context.Context) error {
		id, ok := store.TenantID(ctx)
		require.True(t, ok)
		assert.Equal(t, scoped, id)
		return nil
	})
}

func TestStore_HeaderFallbackIgnoresGarbage(t *testing.T) {
	store := tenantctx.NewStore()
	ctx := store.WithHeaderTenant(context.Background(), "not-a-uuid")

	_, ok := store.TenantID(ctx)
	assert.False(t, ok)

	_, err := store.RequireTenantID(ctx)
	assert.ErrorIs(t, err, tenantctx.ErrMissingTenantContext)
}

func TestStore_RequireFailsOutsideScope(t *testing.T) {
	store := tenantctx.NewStore()
	ctx := context.Background()

	_, err := store.RequireTenantID(ctx)
	assert.ErrorIs(t, err, tenantctx.ErrMissingTenantContext)

	_, err = store.Require(ctx)
	assert.ErrorIs(t, err, tenantctx.ErrMissingTenantContext)
}

func TestStore_FullTupleAccessors(t *testing.T) {
	store := tenantctx.NewStore()
	userID := uuid.New()
	tenant := &models.Tenant{ID: uuid.New(), Name: "Silva & Associados", Subdomain: "silva", IsActive: true}
	membership := &models.TenantMembership{TenantID: tenant.ID, UserID: userID, Role: models.RoleLawyer, IsActive: true}

	tc := &tenantctx.Context{
		TenantID:   tenant.ID,
		Tenant:     tenant,
		UserID:     &userID,
		Membership: membership,
	}

	err := store.Run(context.Background(), tc, func(ctx context.Context) error {
		got, err := store.Require(ctx)
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, got.TenantID)

		gotTenant, ok := store.Tenant(ctx)
		require.True(t, ok)
		assert.Equal(t, "silva", gotTenant.Subdomain)

		gotUser, ok := store.UserID(ctx)
		require.True(t, ok)
		assert.Equal(t, userID, gotUser)

		gotMembership, ok := store.Membership(ctx)
		require.True(t, ok)
		assert.Equal(t, models.RoleLawyer, gotMembership.Role)
		return nil
	})
	require.NoError(t, err)
}
