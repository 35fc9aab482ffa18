package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HardPulse/mazpan/internal/repository"
)

func TestUpgradeChargesAndGrants(t *testing.T) {
	f := newFixture(t)
	svc := NewEntitlementService(f.store, EntitlementOptions{}, nil, f.clock(), nil)
	ctx := context.Background()
	u := f.addUser(t, "buyer", repository.RoleUser, 10000)

	res, err := svc.Upgrade(ctx, u.ID, repository.RoleSuperUser)
	require.NoError(t, err)
	assert.Equal(t, repository.RoleSuperUser, res.Role)
	assert.Equal(t, "75", res.Balance.String())
	assert.Equal(t, f.now.Add(30*24*time.Hour).Unix(), res.RoleExpiresAt)

	got := f.reload(t, u.ID)
	assert.Equal(t, int64(7500), got.BalanceCents)
	require.NotNil(t, got.RoleExpiresAt)

	logs, err := f.store.UserLogs().ListByTarget(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, repository.UserLogRolePurchase, logs[0].Type)
	assert.Equal(t, int64(2500), logs[0].AmountCents)
}

func TestUpgradePathsEnforced(t *testing.T) {
	f := newFixture(t)
	svc := NewEntitlementService(f.store, EntitlementOptions{}, nil, f.clock(), nil)
	ctx := context.Background()

	su := f.addUser(t, "super", repository.RoleSuperUser, 10000)
	_, err := svc.Upgrade(ctx, su.ID, repository.RoleSuperUser)
	assert.ErrorIs(t, err, ErrUpgradeNotAllowed)

	admin := f.addUser(t, "admin", repository.RoleAdmin, 10000)
	_, err = svc.Upgrade(ctx, admin.ID, repository.RoleVIPUser)
	assert.ErrorIs(t, err, ErrUpgradeNotAllowed)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpgradeInsufficientBalanceLeavesUserUntouched(t *testing.T) {
	f := newFixture(t)
	svc := NewEntitlementService(f.store, EntitlementOptions{}, nil, f.clock(), nil)
	u := f.addUser(t, "poor", repository.RoleUser, 2499)

	_, err := svc.Upgrade(context.Background(), u.ID, repository.RoleSuperUser)
	assert.ErrorIs(t, err, ErrRoleInsufficientBalance)

	got := f.reload(t, u.ID)
	assert.Equal(t, repository.RoleUser, got.Role)
	assert.Equal(t, int64(2499), got.BalanceCents)
}

func TestVIPSelfExtensionIsAdditive(t *testing.T) {
	f := newFixture(t)
	svc := NewEntitlementService(f.store, EntitlementOptions{VIPCap: 1}, nil, f.clock(), nil)
	ctx := context.Background()
	u := f.addUser(t, "vip", repository.RoleUser, 20000)

	first, err := svc.Upgrade(ctx, u.ID, repository.RoleVIPUser)
	require.NoError(t, err)

	// 名额已被自己占满，自我续期不应计入。
	f.advance(24 * time.Hour)
	second, err := svc.Upgrade(ctx, u.ID, repository.RoleVIPUser)
	require.NoError(t, err)
	assert.Equal(t, first.RoleExpiresAt+int64(30*24*3600), second.RoleExpiresAt)
	assert.Equal(t, int64(8000), f.reload(t, u.ID).BalanceCents)
}

func TestVIPCapRejectsBeforeCharging(t *testing.T) {
	f := newFixture(t)
	svc := NewEntitlementService(f.store, EntitlementOptions{VIPCap: 1}, nil, f.clock(), nil)
	ctx := context.Background()
	a := f.addUser(t, "first", repository.RoleUser, 6000)
	b := f.addUser(t, "second", repository.RoleUser, 6000)

	_, err := svc.Upgrade(ctx, a.ID, repository.RoleVIPUser)
	require.NoError(t, err)

	_, err = svc.Upgrade(ctx, b.ID, repository.RoleVIPUser)
	assert.ErrorIs(t, err, ErrVIPCapReached)
	assert.Equal(t, int64(6000), f.reload(t, b.ID).BalanceCents)

	info, err := svc.RoleInfo(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.VIPSlotsLeft)
}

func TestExpiredRoleIsDowngradedLazily(t *testing.T) {
	f := newFixture(t)
	svc := NewEntitlementService(f.store, EntitlementOptions{}, nil, f.clock(), nil)
	ctx := context.Background()
	u := f.addUser(t, "temp", repository.RoleUser, 2500)

	_, err := svc.Upgrade(ctx, u.ID, repository.RoleSuperUser)
	require.NoError(t, err)

	f.advance(31 * 24 * time.Hour)
	info, err := svc.RoleInfo(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.RoleUser, info.Role)
	assert.Nil(t, info.RoleExpiresAt)
	assert.Zero(t, info.RemainingSeconds)
	require.Len(t, info.Upgrades, 2)
	assert.False(t, info.Upgrades[0].Affordable)
}
