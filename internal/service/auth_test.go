package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HardPulse/mazpan/internal/auth/token"
	"github.com/HardPulse/mazpan/internal/cache"
	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/security"
)

func newAuthService(t *testing.T, f *fixture) AuthService {
	t.Helper()
	mgr, err := token.NewManager(token.Options{
		SigningKey: []byte("test-signing-key-0123456789abcdef"),
		Issuer:     "mazpan",
		Now:        func() time.Time { return f.now },
	})
	require.NoError(t, err)
	limiter, err := security.NewRateLimiter(cache.NewStore(cache.Options{}))
	require.NoError(t, err)
	return NewAuthService(f.store, f.hasher, mgr, limiter, nil, AuthOptions{LoginAttempts: 3, LoginWindow: time.Minute}, f.clock(), nil)
}

func TestRegisterCreatesPendingUser(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(t, f)
	ctx := context.Background()

	view, err := svc.Register(ctx, RegisterInput{Username: "  alice  ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, repository.RoleUser, view.Status)
	assert.False(t, view.Approved)
	assert.Equal(t, "ru", view.Language)
	assert.True(t, view.Balance.IsZero())

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUsernameExists)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Register(ctx, RegisterInput{Username: "al", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUsernameInvalid)

	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Password: "123"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestLoginRules(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(t, f)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Username: "alice", Password: "secret1"})
	assert.ErrorIs(t, err, ErrPendingApproval)

	u, err := f.store.Users().FindByUsername(ctx, "alice")
	require.NoError(t, err)
	u.Approved = true
	require.NoError(t, f.store.Users().Update(ctx, u))

	_, err = svc.Login(ctx, LoginInput{Username: "alice", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.NotEmpty(t, res.AccessToken)

	principal, err := svc.Verify(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, principal.ID)
	assert.Equal(t, repository.RoleUser, principal.Role)

	u.Blocked = true
	require.NoError(t, f.store.Users().Update(ctx, u))
	_, err = svc.Login(ctx, LoginInput{Username: "alice", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAccountBlocked)
	_, err = svc.Verify(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrAccountBlocked)

	_, err = svc.Verify(ctx, "garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestLoginThrottled(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(t, f)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, LoginInput{Username: "ghost", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := svc.Login(ctx, LoginInput{Username: "ghost", Password: "nope"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(t, f)
	ctx := context.Background()

	view, created, err := svc.EnsureAdmin(ctx, "root", "rootpass")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, repository.RoleAdmin, view.Status)
	assert.True(t, view.Approved)

	main, err := f.store.Folders().FindByName(ctx, view.ID, MainFolderName)
	require.NoError(t, err)
	assert.Equal(t, DefaultCooldownHours, main.CooldownHours)

	_, created, err = svc.EnsureAdmin(ctx, "root", "other-pass")
	require.NoError(t, err)
	assert.False(t, created)
}
