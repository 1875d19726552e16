package authorization

import (
	"context"
	"testing"

	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/pricecalc/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func newTestAuthorizer(t *testing.T, db *gorm.DB) Authorizer {
	t.Helper()
	a, err := New(Params{DB: db, Log: zap.NewNop()})
	require.NoError(t, err)
	return a
}

func TestSalesCannotImport(t *testing.T) {
	ctx := context.Background()
	a := newTestAuthorizer(t, newTestDB(t))

	require.NoError(t, a.SyncRoles(ctx, "sales-user", false))

	assert.NoError(t, a.Authorize(ctx, "sales-user", ObjectQuote, ActionWrite))
	assert.NoError(t, a.Authorize(ctx, "sales-user", ObjectRefresh, ActionTrigger))

	err := a.Authorize(ctx, "sales-user", ObjectImport, ActionWrite)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestAdminInheritsSales(t *testing.T) {
	ctx := context.Background()
	a := newTestAuthorizer(t, newTestDB(t))

	require.NoError(t, a.SyncRoles(ctx, "admin-user", true))

	assert.NoError(t, a.Authorize(ctx, "admin-user", ObjectImport, ActionWrite))
	assert.NoError(t, a.Authorize(ctx, "admin-user", ObjectCatalog, ActionRead))
}

func TestSyncRolesDemotes(t *testing.T) {
	ctx := context.Background()
	a := newTestAuthorizer(t, newTestDB(t))

	require.NoError(t, a.SyncRoles(ctx, "u1", true))
	require.NoError(t, a.Authorize(ctx, "u1", ObjectImport, ActionWrite))

	require.NoError(t, a.SyncRoles(ctx, "u1", false))
	assert.Error(t, a.Authorize(ctx, "u1", ObjectImport, ActionWrite))
	assert.NoError(t, a.Authorize(ctx, "u1", ObjectQuote, ActionRead))
}

func TestUnknownSubjectDenied(t *testing.T) {
	a := newTestAuthorizer(t, newTestDB(t))
	assert.Error(t, a.Authorize(context.Background(), "nobody", ObjectCatalog, ActionRead))
}

func TestPoliciesPersist(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	first := newTestAuthorizer(t, db)
	require.NoError(t, first.SyncRoles(ctx, "admin-user", true))

	adapter, err := gormadapter.NewAdapterByDB(db)
	require.NoError(t, err)
	second, err := NewWithAdapter(adapter, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, second.Authorize(ctx, "admin-user", ObjectImport, ActionWrite))
}
