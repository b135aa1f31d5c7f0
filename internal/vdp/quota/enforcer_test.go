package quota

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimyag/vdp/internal/vdp/entity"
	"github.com/jimyag/vdp/internal/vdp/repository"
	"github.com/jimyag/vdp/internal/vdp/repository/model"
	"github.com/jimyag/vdp/pkg/apierror"
)

type testEnv struct {
	enforcer       *Enforcer
	quotaRepo      repository.QuotaRepository
	deploymentRepo repository.DeploymentRepository
	planRepo       repository.PlanRepository
}

func setupEnforcer(t *testing.T) *testEnv {
	t.Helper()

	repo, err := repository.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	quotaRepo := repository.NewQuotaRepository(repo.DB())
	deploymentRepo := repository.NewDeploymentRepository(repo.DB())
	planRepo := repository.NewPlanRepository(repo.DB())

	require.NoError(t, planRepo.Create(context.Background(), &model.Plan{
		ID: "plan-small", Name: "small", VCPUs: 1, MemoryMB: 1024, DiskGB: 10,
		HourlyCost: 0.01, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))

	return &testEnv{
		enforcer:       NewEnforcer(quotaRepo, deploymentRepo, planRepo),
		quotaRepo:      quotaRepo,
		deploymentRepo: deploymentRepo,
		planRepo:       planRepo,
	}
}

func setQuota(t *testing.T, env *testEnv, userID string, maxVMs, maxVCPUs, maxMemMB, maxDiskGB uint64) {
	t.Helper()
	require.NoError(t, env.quotaRepo.Upsert(context.Background(), &model.Quota{
		UserID: userID, MaxVMs: maxVMs, MaxVCPUs: maxVCPUs,
		MaxMemoryMB: maxMemMB, MaxDiskGB: maxDiskGB,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))
}

func TestEnforcerReserve(t *testing.T) {
	t.Parallel()

	demand := entity.ResourceDemand{VCPUs: 1, MemoryMB: 1024, DiskGB: 10}

	t.Run("within quota succeeds", func(t *testing.T) {
		env := setupEnforcer(t)
		setQuota(t, env, "user-1", 2, 4, 4096, 100)

		token, err := env.enforcer.Reserve(context.Background(), "user-1", demand)
		require.NoError(t, err)
		token.Confirm()
	})

	t.Run("committed deployments count toward quota", func(t *testing.T) {
		env := setupEnforcer(t)
		setQuota(t, env, "user-2", 1, 4, 4096, 100)

		require.NoError(t, env.deploymentRepo.Create(context.Background(), &model.Deployment{
			ID: "vd-existing", UserID: "user-2", PlanID: "plan-small", TemplateID: "tmpl-1",
			State: "running", CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}))

		_, err := env.enforcer.Reserve(context.Background(), "user-2", demand)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apierror.ErrQuotaExceeded))
	})

	t.Run("terminal deployments do not count", func(t *testing.T) {
		env := setupEnforcer(t)
		setQuota(t, env, "user-3", 1, 4, 4096, 100)

		require.NoError(t, env.deploymentRepo.Create(context.Background(), &model.Deployment{
			ID: "vd-gone", UserID: "user-3", PlanID: "plan-small", TemplateID: "tmpl-1",
			State: "deleted", CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}))

		token, err := env.enforcer.Reserve(context.Background(), "user-3", demand)
		require.NoError(t, err)
		token.Release()
	})

	t.Run("released reservation frees quota", func(t *testing.T) {
		env := setupEnforcer(t)
		setQuota(t, env, "user-4", 1, 4, 4096, 100)

		token, err := env.enforcer.Reserve(context.Background(), "user-4", demand)
		require.NoError(t, err)

		_, err = env.enforcer.Reserve(context.Background(), "user-4", demand)
		require.Error(t, err)

		token.Release()

		token2, err := env.enforcer.Reserve(context.Background(), "user-4", demand)
		require.NoError(t, err)
		token2.Release()
	})

	t.Run("no quota record means unlimited", func(t *testing.T) {
		env := setupEnforcer(t)

		for i := 0; i < 10; i++ {
			token, err := env.enforcer.Reserve(context.Background(), "user-unmetered", demand)
			require.NoError(t, err)
			token.Confirm()
		}
	})

	t.Run("concurrent reserve admits exactly max_vms", func(t *testing.T) {
		env := setupEnforcer(t)
		setQuota(t, env, "user-race", 1, 100, 102400, 1000)

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := env.enforcer.Reserve(context.Background(), "user-race", demand); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, succeeded)
	})

	t.Run("users reserve independently under concurrency", func(t *testing.T) {
		env := setupEnforcer(t)
		setQuota(t, env, "user-a", 1, 100, 102400, 1000)
		setQuota(t, env, "user-b", 1, 100, 102400, 1000)

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := map[string]int{}
		for _, userID := range []string{"user-a", "user-b"} {
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(userID string) {
					defer wg.Done()
					if _, err := env.enforcer.Reserve(context.Background(), userID, demand); err == nil {
						mu.Lock()
						succeeded[userID]++
						mu.Unlock()
					}
				}(userID)
			}
		}
		wg.Wait()

		// 每个用户各自串行检查，互相不占用对方的额度
		assert.Equal(t, 1, succeeded["user-a"])
		assert.Equal(t, 1, succeeded["user-b"])
	})

	t.Run("confirm then release is a no-op", func(t *testing.T) {
		env := setupEnforcer(t)
		setQuota(t, env, "user-5", 1, 4, 4096, 100)

		token, err := env.enforcer.Reserve(context.Background(), "user-5", demand)
		require.NoError(t, err)
		token.Confirm()
		token.Release()

		// Confirm 后内存预留撤销，没有落库行，配额应可再次使用
		token2, err := env.enforcer.Reserve(context.Background(), "user-5", demand)
		require.NoError(t, err)
		token2.Release()
	})
}
