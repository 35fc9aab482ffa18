package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HardPulse/mazpan/internal/repository"
)

func principalOf(u *repository.User) Principal {
	return Principal{ID: u.ID, Username: u.Username, Role: u.Role}
}

func daysPtr(v int) *int { return &v }

func TestFlexValueAcceptsStringsAndNumbers(t *testing.T) {
	var input ActionInput
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":"u","action":"set_balance","value":12.5}`), &input))
	assert.Equal(t, FlexValue("12.5"), input.Value)
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":"u","action":"set_role","value":"VIP User","days":3}`), &input))
	assert.Equal(t, FlexValue("VIP User"), input.Value)
	assert.Equal(t, 3, *input.Days)
}

func TestApproveProvisionsMainFolder(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminUserService(f.store, f.hasher, nil, 6, nil, f.clock(), nil)
	ctx := context.Background()
	admin := f.addUser(t, "admin", repository.RoleAdmin, 0)
	pending := f.addUser(t, "pending", repository.RoleUser, 0)
	pending.Approved = false
	require.NoError(t, f.store.Users().Update(ctx, pending))

	list, err := svc.ListPending(ctx, principalOf(admin))
	require.NoError(t, err)
	require.Len(t, list, 1)

	view, err := svc.Apply(ctx, principalOf(admin), ActionInput{UserID: pending.ID, Action: ActionApprove})
	require.NoError(t, err)
	assert.True(t, view.Approved)
	_, err = f.store.Folders().FindByName(ctx, pending.ID, MainFolderName)
	require.NoError(t, err)

	_, err = svc.Apply(ctx, principalOf(admin), ActionInput{UserID: pending.ID, Action: ActionReject})
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestSupportRestrictions(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminUserService(f.store, f.hasher, nil, 6, nil, f.clock(), nil)
	ctx := context.Background()
	admin := f.addUser(t, "admin", repository.RoleAdmin, 0)
	support := f.addUser(t, "support", repository.RoleSupport, 0)
	peer := f.addUser(t, "peer", repository.RoleSupport, 0)
	user := f.addUser(t, "user", repository.RoleUser, 0)
	actor := principalOf(support)

	_, err := svc.Apply(ctx, actor, ActionInput{UserID: admin.ID, Action: ActionBlock})
	assert.ErrorIs(t, err, ErrTargetProtected)
	_, err = svc.Apply(ctx, actor, ActionInput{UserID: peer.ID, Action: ActionBlock})
	assert.ErrorIs(t, err, ErrTargetProtected)
	_, err = svc.Apply(ctx, actor, ActionInput{UserID: support.ID, Action: ActionSetBalance, Value: "100"})
	assert.ErrorIs(t, err, ErrSelfAction)
	_, err = svc.Apply(ctx, actor, ActionInput{UserID: user.ID, Action: ActionSetRole, Value: "Support"})
	assert.ErrorIs(t, err, ErrRoleForbidden)

	view, err := svc.Apply(ctx, actor, ActionInput{UserID: user.ID, Action: ActionBlock})
	require.NoError(t, err)
	assert.True(t, view.Blocked)

	users, err := svc.ListUsers(ctx, actor)
	require.NoError(t, err)
	for _, u := range users {
		assert.NotEqual(t, repository.RoleAdmin, u.Status)
	}
	assert.Len(t, users, 3)

	_, err = svc.ListUsers(ctx, principalOf(user))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAdminSetRole(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminUserService(f.store, f.hasher, nil, 6, nil, f.clock(), nil)
	ctx := context.Background()
	admin := principalOf(f.addUser(t, "admin", repository.RoleAdmin, 0))
	user := f.addUser(t, "user", repository.RoleUser, 0)

	view, err := svc.Apply(ctx, admin, ActionInput{UserID: user.ID, Action: ActionSetRole, Value: "VIP User", Days: daysPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, repository.RoleVIPUser, view.Status)
	require.NotNil(t, view.RoleExpiresAt)
	assert.Equal(t, f.now.Add(72*time.Hour).Unix(), *view.RoleExpiresAt)

	view, err = svc.Apply(ctx, admin, ActionInput{UserID: user.ID, Action: ActionChangeStatus, Value: "VIP User", Days: daysPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, repository.RoleUser, view.Status)
	assert.Nil(t, view.RoleExpiresAt)

	view, err = svc.Apply(ctx, admin, ActionInput{UserID: user.ID, Action: ActionSetRole, Value: "Support"})
	require.NoError(t, err)
	assert.Equal(t, repository.RoleSupport, view.Status)
	assert.Nil(t, view.RoleExpiresAt)

	_, err = svc.Apply(ctx, admin, ActionInput{UserID: user.ID, Action: ActionSetRole, Value: "Emperor"})
	assert.ErrorIs(t, err, ErrRoleInvalid)
	_, err = svc.Apply(ctx, admin, ActionInput{UserID: user.ID, Action: ActionSetRole, Value: "Super User", Days: daysPtr(-1)})
	assert.ErrorIs(t, err, ErrDaysInvalid)
	_, err = svc.Apply(ctx, admin, ActionInput{UserID: user.ID, Action: ActionChangeStatus, Value: "VIP User"})
	assert.ErrorIs(t, err, ErrDaysInvalid)
	unchanged := f.reload(t, user.ID)
	assert.Equal(t, repository.RoleSupport, unchanged.Role)
	_, err = svc.Apply(ctx, admin, ActionInput{UserID: admin.ID, Action: ActionSetRole, Value: "User"})
	assert.ErrorIs(t, err, ErrSelfAction)

	logs, err := f.store.UserLogs().ListByTarget(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}

func TestAdminBalanceActions(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminUserService(f.store, f.hasher, nil, 6, nil, f.clock(), nil)
	ctx := context.Background()
	admin := principalOf(f.addUser(t, "admin", repository.RoleAdmin, 0))
	user := f.addUser(t, "user", repository.RoleUser, 0)

	view, err := svc.Apply(ctx, admin, ActionInput{UserID: user.ID, Action: ActionChangeBalance, Value: "12.50"})
	require.NoError(t, err)
	assert.Equal(t, "12.5", view.Balance.String())

	view, err = svc.Apply(ctx, admin, ActionInput{UserID: user.ID, Action: ActionAddBalance, Value: "-2.5"})
	require.NoError(t, err)
	assert.Equal(t, "10", view.Balance.String())

	_, err = svc.Apply(ctx, admin, ActionInput{UserID: user.ID, Action: ActionAddBalance, Value: "-10.01"})
	assert.ErrorIs(t, err, ErrBalanceNegative)
	_, err = svc.Apply(ctx, admin, ActionInput{UserID: user.ID, Action: ActionSetBalance, Value: "-1"})
	assert.ErrorIs(t, err, ErrBalanceNegative)
	_, err = svc.Apply(ctx, admin, ActionInput{UserID: user.ID, Action: ActionSetBalance, Value: "lots"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Apply(ctx, admin, ActionInput{UserID: user.ID, Action: "teleport"})
	assert.ErrorIs(t, err, ErrActionInvalid)

	assert.Equal(t, int64(1000), f.reload(t, user.ID).BalanceCents)

	logs, err := f.store.UserLogs().ListByTarget(ctx, user.ID)
	require.NoError(t, err)
	types := map[repository.UserLogType]int{}
	for _, l := range logs {
		types[l.Type]++
	}
	assert.Equal(t, 1, types[repository.UserLogAdminBalanceSet])
	assert.Equal(t, 1, types[repository.UserLogAdminBalanceAdd])
}

func TestAdminDeleteCascades(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminUserService(f.store, f.hasher, nil, 6, nil, f.clock(), nil)
	accounts := NewAccountService(f.store, f.clock(), nil)
	ctx := context.Background()
	admin := principalOf(f.addUser(t, "admin", repository.RoleAdmin, 0))
	user := f.addUser(t, "user", repository.RoleUser, 0)

	_, err := accounts.Upload(ctx, user.ID, "a|b|c|d|US\ne|f|g|h|DE", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, admin, admin.ID), ErrSelfAction)
	require.NoError(t, svc.Delete(ctx, admin, user.ID))

	_, err = f.store.Users().FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	folders, err := f.store.Folders().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, folders)
	count, err := f.store.Accounts().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, svc.Delete(ctx, admin, user.ID), ErrUserNotFound)
}

func TestAdminEdit(t *testing.T) {
	f := newFixture(t)
	svc := NewAdminUserService(f.store, f.hasher, nil, 6, nil, f.clock(), nil)
	ctx := context.Background()
	admin := principalOf(f.addUser(t, "admin", repository.RoleAdmin, 0))
	user := f.addUser(t, "user", repository.RoleUser, 0)
	f.addUser(t, "taken", repository.RoleUser, 0)

	name, lang, pass := "renamed", "EN-us", "newpass1"
	view, err := svc.Edit(ctx, admin, user.ID, EditUserInput{Username: &name, Language: &lang, Password: &pass})
	require.NoError(t, err)
	assert.Equal(t, "renamed", view.Username)
	assert.Equal(t, "en", view.Language)
	require.NoError(t, f.hasher.Compare(f.reload(t, user.ID).Password, "newpass1"))

	taken := "taken"
	_, err = svc.Edit(ctx, admin, user.ID, EditUserInput{Username: &taken})
	assert.ErrorIs(t, err, ErrUsernameExists)
}
