package meter

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jimyag/vdp/internal/vdp/adapter"
	"github.com/jimyag/vdp/internal/vdp/repository"
	"github.com/jimyag/vdp/internal/vdp/repository/model"
)

func setupMeter(t *testing.T) (*Meter, *repository.Repository, *adapter.MockHypervisor) {
	t.Helper()

	repo, err := repository.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.Close()
	})

	hypervisor := &adapter.MockHypervisor{}
	return New(time.Hour, repo, hypervisor), repo, hypervisor
}

func seedPlan(t *testing.T, repo *repository.Repository) *model.Plan {
	t.Helper()
	now := time.Now()
	plan := &model.Plan{
		ID:         "plan-1",
		Name:       "small",
		VCPUs:      2,
		MemoryMB:   2048,
		DiskGB:     20,
		HourlyCost: 0.5,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, repository.NewPlanRepository(repo.DB()).Create(context.Background(), plan))
	return plan
}

func seedDeployment(t *testing.T, repo *repository.Repository, id, state string) *model.Deployment {
	t.Helper()
	now := time.Now()
	d := &model.Deployment{
		ID:         id,
		UserID:     "user-1",
		PlanID:     "plan-1",
		TemplateID: "tmpl-1",
		NodeID:     "node-1",
		State:      state,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, repository.NewDeploymentRepository(repo.DB()).Create(context.Background(), d))
	return d
}

func TestSampleAll(t *testing.T) {
	t.Parallel()

	t.Run("running deployment billed per interval", func(t *testing.T) {
		t.Parallel()
		m, repo, hypervisor := setupMeter(t)
		seedPlan(t, repo)
		seedDeployment(t, repo, "vd-1", "running")

		hypervisor.On("GetState", mock.Anything, "vd-1").Return(adapter.GuestRunning, nil)

		require.NoError(t, m.SampleAll(context.Background()))

		records, err := repository.NewUsageRepository(repo.DB()).ListByDeployment(context.Background(), "vd-1")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "running", records[0].ObservedState)
		assert.Equal(t, uint64(2), records[0].VCPUs)
		assert.InDelta(t, 0.5, records[0].Cost, 1e-9)
	})

	t.Run("stopped deployment sampled at zero cost", func(t *testing.T) {
		t.Parallel()
		m, repo, hypervisor := setupMeter(t)
		seedPlan(t, repo)
		seedDeployment(t, repo, "vd-2", "stopped")

		hypervisor.On("GetState", mock.Anything, "vd-2").Return(adapter.GuestStopped, nil)

		require.NoError(t, m.SampleAll(context.Background()))

		records, err := repository.NewUsageRepository(repo.DB()).ListByDeployment(context.Background(), "vd-2")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Zero(t, records[0].Cost)
	})

	t.Run("transitional states skipped", func(t *testing.T) {
		t.Parallel()
		m, repo, _ := setupMeter(t)
		seedPlan(t, repo)
		seedDeployment(t, repo, "vd-3", "provisioning")

		require.NoError(t, m.SampleAll(context.Background()))

		records, err := repository.NewUsageRepository(repo.DB()).ListByDeployment(context.Background(), "vd-3")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("drift flags deployment without repairing", func(t *testing.T) {
		t.Parallel()
		m, repo, hypervisor := setupMeter(t)
		seedPlan(t, repo)
		seedDeployment(t, repo, "vd-4", "running")

		// 库里 running，hypervisor 观测到已停
		hypervisor.On("GetState", mock.Anything, "vd-4").Return(adapter.GuestStopped, nil)

		require.NoError(t, m.SampleAll(context.Background()))

		d, err := repository.NewDeploymentRepository(repo.DB()).GetByID(context.Background(), "vd-4")
		require.NoError(t, err)
		assert.True(t, d.NeedsAttention)
		assert.Equal(t, "running", d.State)

		// 用量记录写的是 hypervisor 观测值，计费仍按库里的 running
		records, err := repository.NewUsageRepository(repo.DB()).ListByDeployment(context.Background(), "vd-4")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "stopped", records[0].ObservedState)
		assert.InDelta(t, 0.5, records[0].Cost, 1e-9)
	})

	t.Run("one failing deployment does not block others", func(t *testing.T) {
		t.Parallel()
		m, repo, hypervisor := setupMeter(t)
		seedPlan(t, repo)
		seedDeployment(t, repo, "vd-5", "running")
		seedDeployment(t, repo, "vd-6", "running")

		hypervisor.On("GetState", mock.Anything, "vd-5").Return(adapter.GuestUnknown, assert.AnError)
		hypervisor.On("GetState", mock.Anything, "vd-6").Return(adapter.GuestRunning, nil)

		require.NoError(t, m.SampleAll(context.Background()))

		records, err := repository.NewUsageRepository(repo.DB()).ListByDeployment(context.Background(), "vd-6")
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})
}
