package job

import (
	"context"
	"errors"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/service"
	"github.com/HardPulse/mazpan/internal/telemetry"
	"github.com/HardPulse/mazpan/internal/testutil"
)

type stubJob struct {
	err      error
	runs     int
	deadline bool
}

func (j *stubJob) Name() string { return "stub" }

func (j *stubJob) Run(ctx context.Context) error {
	j.runs++
	_, j.deadline = ctx.Deadline()
	return j.err
}

func TestRegisterValidates(t *testing.T) {
	s := NewScheduler(nil, 0)
	_, err := s.Register("@every 1h", nil)
	assert.Error(t, err)
	_, err = s.Register("", &stubJob{})
	assert.Error(t, err)
	_, err = s.Register("not a spec", &stubJob{})
	assert.Error(t, err)

	_, err = s.Register("0 3 * * *", &stubJob{})
	require.NoError(t, err)
	_, err = s.Register("@every 10m", &stubJob{})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries())
}

func TestRunNowAppliesTimeoutAndReportsErrors(t *testing.T) {
	s := NewScheduler(nil, time.Second)
	ok := &stubJob{}
	require.NoError(t, s.RunNow(context.Background(), ok))
	assert.Equal(t, 1, ok.runs)
	assert.True(t, ok.deadline)

	failed := promtestutil.ToFloat64(telemetry.JobRuns.WithLabelValues("stub", "error"))
	failing := &stubJob{err: errors.New("boom")}
	assert.EqualError(t, s.RunNow(context.Background(), failing), "boom")
	assert.Equal(t, failed+1, promtestutil.ToFloat64(telemetry.JobRuns.WithLabelValues("stub", "error")))
}

func TestStopWithoutStart(t *testing.T) {
	s := NewScheduler(nil, 0)
	ctx := s.Stop()
	select {
	case <-ctx.Done():
	default:
		t.Fatal("stop context should be done when scheduler never started")
	}
	s.Start()
	<-s.Stop().Done()
}

func TestRoleExpiryJobDowngradesExpiredRoles(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Minute).Unix()
	user := &repository.User{
		ID:            "u-1",
		Username:      "temp",
		Password:      "x",
		Role:          repository.RoleSuperUser,
		RoleExpiresAt: &expired,
		Approved:      true,
		Language:      "ru",
		CreatedAt:     now.Unix(),
		UpdatedAt:     now.Unix(),
	}
	require.NoError(t, store.Users().Create(ctx, user))

	entitlements := service.NewEntitlementService(store, service.EntitlementOptions{}, nil, func() time.Time { return now }, nil)
	require.NoError(t, NewScheduler(nil, 0).RunNow(ctx, NewRoleExpiryJob(entitlements)))

	got, err := store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.RoleUser, got.Role)
	assert.Nil(t, got.RoleExpiresAt)
}

func TestJobsRequireDependencies(t *testing.T) {
	assert.Error(t, NewBackupJob(nil).Run(context.Background()))
	assert.Error(t, NewRoleExpiryJob(nil).Run(context.Background()))
}
