package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/repository/sqlstore"
	"github.com/HardPulse/mazpan/internal/support/hash"
	"github.com/HardPulse/mazpan/internal/testutil"
)

type fixture struct {
	store  *sqlstore.Store
	now    time.Time
	hasher hash.Hasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hasher, err := hash.NewBcryptHasher(4)
	require.NoError(t, err)
	return &fixture{
		store:  testutil.NewStore(t),
		now:    time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		hasher: hasher,
	}
}

func (f *fixture) clock() Clock {
	return func() time.Time { return f.now }
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) addUser(t *testing.T, name string, role repository.Role, balanceCents int64) *repository.User {
	t.Helper()
	u := &repository.User{
		ID:           newID(),
		Username:     name,
		Password:     "x",
		Role:         role,
		BalanceCents: balanceCents,
		Approved:     true,
		Language:     "ru",
		CreatedAt:    f.now.Unix(),
		UpdatedAt:    f.now.Unix(),
	}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) reload(t *testing.T, id string) *repository.User {
	t.Helper()
	u, err := f.store.Users().FindByID(context.Background(), id)
	require.NoError(t, err)
	return u
}
