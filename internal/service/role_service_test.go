package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRoleFixture(t *testing.T) (RoleService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewRoleService(repository.NewRoleRepository(db))
	require.NoError(t, svc.SeedDefaultRoles(context.Background()))
	return svc, db
}

func TestSeedDefaultRoles_BuildsChain(t *testing.T) {
	svc, _ := newRoleFixture(t)
	ctx := context.Background()

	guest, err := svc.GetRoleByName(ctx, model.RoleGuest)
	require.NoError(t, err)
	user, err := svc.GetRoleByName(ctx, model.RoleUser)
	require.NoError(t, err)
	admin, err := svc.GetRoleByName(ctx, model.RoleAdmin)
	require.NoError(t, err)

	assert.Nil(t, guest.ParentID)
	require.NotNil(t, user.ParentID)
	assert.Equal(t, guest.ID, *user.ParentID)
	require.NotNil(t, admin.ParentID)
	assert.Equal(t, user.ID, *admin.ParentID)

	// Seeding again must not duplicate anything.
	require.NoError(t, svc.SeedDefaultRoles(ctx))
	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 3)
}

func TestHasRole_WalksAncestorChain(t *testing.T) {
	svc, _ := newRoleFixture(t)
	ctx := context.Background()

	admin, err := svc.GetRoleByName(ctx, model.RoleAdmin)
	require.NoError(t, err)
	guest, err := svc.GetRoleByName(ctx, model.RoleGuest)
	require.NoError(t, err)

	tests := []struct {
		name     string
		roleID   uint
		required string
		want     bool
	}{
		{name: "admin satisfies admin", roleID: admin.ID, required: model.RoleAdmin, want: true},
		{name: "admin satisfies user", roleID: admin.ID, required: model.RoleUser, want: true},
		{name: "admin satisfies guest", roleID: admin.ID, required: model.RoleGuest, want: true},
		{name: "guest does not satisfy user", roleID: guest.ID, required: model.RoleUser, want: false},
		{name: "guest does not satisfy admin", roleID: guest.ID, required: model.RoleAdmin, want: false},
		{name: "name off the chain", roleID: admin.ID, required: "moderator", want: false},
		{name: "unknown role id", roleID: 9999, required: model.RoleGuest, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.HasRole(ctx, tt.roleID, tt.required)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateRole_DuplicateAndMissingParent(t *testing.T) {
	svc, _ := newRoleFixture(t)
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, CreateRoleRequest{Name: model.RoleAdmin})
	assert.ErrorIs(t, err, ErrRoleExists)

	missing := uint(9999)
	_, err = svc.CreateRole(ctx, CreateRoleRequest{Name: "moderator", ParentID: &missing})
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestUpdateRole_RejectsCycle(t *testing.T) {
	svc, _ := newRoleFixture(t)
	ctx := context.Background()

	guest, err := svc.GetRoleByName(ctx, model.RoleGuest)
	require.NoError(t, err)
	admin, err := svc.GetRoleByName(ctx, model.RoleAdmin)
	require.NoError(t, err)

	// guest's parent cannot be admin: admin already descends from guest.
	_, err = svc.UpdateRole(ctx, guest.ID, UpdateRoleRequest{Name: model.RoleGuest, ParentID: &admin.ID})
	assert.ErrorIs(t, err, ErrRoleCycle)

	// A role cannot be its own parent.
	_, err = svc.UpdateRole(ctx, guest.ID, UpdateRoleRequest{Name: model.RoleGuest, ParentID: &guest.ID})
	assert.ErrorIs(t, err, ErrRoleCycle)
}

func TestUpdateRole_InvalidatesCachedGraph(t *testing.T) {
	svc, _ := newRoleFixture(t)
	ctx := context.Background()

	moderator, err := svc.CreateRole(ctx, CreateRoleRequest{Name: "moderator"})
	require.NoError(t, err)

	// Warm the graph cache.
	ok, err := svc.HasRole(ctx, moderator.ID, model.RoleUser)
	require.NoError(t, err)
	assert.False(t, ok)

	user, err := svc.GetRoleByName(ctx, model.RoleUser)
	require.NoError(t, err)
	_, err = svc.UpdateRole(ctx, moderator.ID, UpdateRoleRequest{Name: "moderator", ParentID: &user.ID})
	require.NoError(t, err)

	// The fresh parent link must be visible without waiting for the TTL.
	ok, err = svc.HasRole(ctx, moderator.ID, model.RoleUser)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteRole_RejectsWhenReferenced(t *testing.T) {
	svc, db := newRoleFixture(t)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, CreateRoleRequest{Name: "librarian"})
	require.NoError(t, err)

	user := model.User{Username: "x@y.com", Password: "hash", RoleID: role.ID, IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	err = svc.DeleteRole(ctx, role.ID)
	assert.ErrorIs(t, err, ErrRoleInUse)

	require.NoError(t, db.Delete(&user).Error)
	require.NoError(t, svc.DeleteRole(ctx, role.ID))

	err = svc.DeleteRole(ctx, role.ID)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}
