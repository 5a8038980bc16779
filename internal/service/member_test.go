package service_test

import (
	"testing"

	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/pairtrack/pairtrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberDirectory(t *testing.T) {
	store := testutil.NewStore(t)
	members := service.NewMemberService(store)

	admin := testutil.CreateUser(t, store, "root", model.RoleAdmin)
	created := testutil.CreateMembers(t, store, "ada", "bob")

	all, err := members.All()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyMembers, err := members.Members()
	require.NoError(t, err)
	require.Len(t, onlyMembers, 2)
	assert.Equal(t, created[0].ID, onlyMembers[0].ID)
	assert.Equal(t, created[1].ID, onlyMembers[1].ID)

	_, err = members.ByID("missing")
	require.ErrorIs(t, err, service.ErrMemberNotFound)

	got, err := members.ByID(admin.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())
}

func TestSetRole(t *testing.T) {
	store := testutil.NewStore(t)
	members := service.NewMemberService(store)

	admin := testutil.CreateUser(t, store, "root", model.RoleAdmin)
	ada := testutil.CreateUser(t, store, "ada", model.RoleMember)

	require.NoError(t, members.SetRole(admin.ID, ada.ID, "Admin"))
	promoted, err := members.ByID(ada.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, promoted.Role)

	err = members.SetRole(admin.ID, ada.ID, "owner")
	require.ErrorIs(t, err, service.ErrInvalidRole)

	err = members.SetRole(admin.ID, admin.ID, model.RoleMember)
	require.ErrorIs(t, err, service.ErrSelfDemotion)

	err = members.SetRole(admin.ID, "missing", model.RoleMember)
	require.ErrorIs(t, err, service.ErrMemberNotFound)
}

func TestUpdateName(t *testing.T) {
	store := testutil.NewStore(t)
	members := service.NewMemberService(store)
	ada := testutil.CreateUser(t, store, "ada", model.RoleMember)

	require.NoError(t, members.UpdateName(ada.ID, "  Ada Lovelace "))
	got, err := members.ByID(ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.DisplayName())

	err = members.UpdateName(ada.ID, "   ")
	require.Error(t, err)
	msg, ok := service.UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "name is required", msg)
}
