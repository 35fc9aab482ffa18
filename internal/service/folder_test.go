package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HardPulse/mazpan/internal/repository"
)

func TestFolderListProvisionsMain(t *testing.T) {
	f := newFixture(t)
	svc := NewFolderService(f.store, f.clock(), nil)
	u := f.addUser(t, "owner", repository.RoleUser, 0)

	folders, err := svc.List(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, MainFolderName, folders[0].Name)
	assert.True(t, folders[0].IsMain)
}

func TestFolderCreateValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewFolderService(f.store, f.clock(), nil)
	ctx := context.Background()
	u := f.addUser(t, "owner", repository.RoleUser, 0)

	_, err := svc.Create(ctx, u.ID, "   ")
	assert.ErrorIs(t, err, ErrFolderNameRequired)
	_, err = svc.Create(ctx, u.ID, "main")
	assert.ErrorIs(t, err, ErrFolderNameReserved)

	created, err := svc.Create(ctx, u.ID, "Fresh")
	require.NoError(t, err)
	assert.Equal(t, DefaultCooldownHours, created.CooldownHours)

	_, err = svc.SetCooldown(ctx, u.ID, created.ID, -1)
	assert.ErrorIs(t, err, ErrCooldownNegative)
	updated, err := svc.SetCooldown(ctx, u.ID, created.ID, 0)
	require.NoError(t, err)
	assert.Zero(t, updated.CooldownHours)
}

func TestFolderDeleteRehomesRecords(t *testing.T) {
	f := newFixture(t)
	folders := NewFolderService(f.store, f.clock(), nil)
	accounts := NewAccountService(f.store, f.clock(), nil)
	ctx := context.Background()
	u := f.addUser(t, "owner", repository.RoleUser, 0)

	extra, err := folders.Create(ctx, u.ID, "Extra")
	require.NoError(t, err)
	n, err := accounts.Upload(ctx, u.ID, "a@x.io:p\nb@x.io:p\n", extra.ID)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	moved, err := folders.Delete(ctx, u.ID, extra.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), moved)

	list, err := accounts.List(ctx, u.ID, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, rec := range list {
		assert.Equal(t, MainFolderName, rec.FolderName)
	}

	main, err := f.store.Folders().FindByName(ctx, u.ID, MainFolderName)
	require.NoError(t, err)
	_, err = folders.Delete(ctx, u.ID, main.ID)
	assert.ErrorIs(t, err, ErrMainFolderProtected)
}

func TestFolderOfAnotherUserIsNotFound(t *testing.T) {
	f := newFixture(t)
	svc := NewFolderService(f.store, f.clock(), nil)
	ctx := context.Background()
	owner := f.addUser(t, "owner", repository.RoleUser, 0)
	other := f.addUser(t, "other", repository.RoleUser, 0)

	folder, err := svc.Create(ctx, owner.ID, "Private")
	require.NoError(t, err)

	_, err = svc.Delete(ctx, other.ID, folder.ID)
	assert.ErrorIs(t, err, ErrFolderNotFound)
	_, err = svc.SetCooldown(ctx, other.ID, folder.ID, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}
