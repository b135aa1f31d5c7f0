// Package meter 周期采样部署用量并核对状态漂移
// 每个周期为 running、stopped 的部署各追加一条用量记录
// 库里状态与 hypervisor 观测不一致时只置位 needs_attention，不自动修复
package meter

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jimyag/vdp/internal/vdp/adapter"
	"github.com/jimyag/vdp/internal/vdp/entity"
	"github.com/jimyag/vdp/internal/vdp/repository"
	"github.com/jimyag/vdp/internal/vdp/repository/model"
)

// sampleConcurrency 单个周期内并发采样的部署数上限
const sampleConcurrency = 8

// Meter 用量计量器
type Meter struct {
	interval time.Duration

	deploymentRepo repository.DeploymentRepository
	planRepo       repository.PlanRepository
	usageRepo      repository.UsageRepository

	hypervisor adapter.HypervisorControlPlane
}

// New 创建计量器
func New(interval time.Duration, repo *repository.Repository, hypervisor adapter.HypervisorControlPlane) *Meter {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Meter{
		interval:       interval,
		deploymentRepo: repository.NewDeploymentRepository(repo.DB()),
		planRepo:       repository.NewPlanRepository(repo.DB()),
		usageRepo:      repository.NewUsageRepository(repo.DB()),
		hypervisor:     hypervisor,
	}
}

// Run 周期采样直到 ctx 取消
func (m *Meter) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	zerolog.Ctx(ctx).Info().Dur("interval", m.interval).Msg("usage meter started")
	for {
		select {
		case <-ctx.Done():
			zerolog.Ctx(ctx).Info().Msg("usage meter stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := m.SampleAll(ctx); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("usage sampling cycle failed")
			}
		}
	}
}

// SampleAll 采样一轮所有非终态部署
// 单个部署采样失败只记日志，不影响同周期的其他部署
func (m *Meter) SampleAll(ctx context.Context) error {
	deployments, err := m.deploymentRepo.ListNonTerminal(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sampleConcurrency)
	for _, d := range deployments {
		d := d
		switch entity.DeploymentState(d.State) {
		case entity.DeploymentStateRunning, entity.DeploymentStateStopped:
			// 稳定状态才计量，过渡状态跳过等下个周期
		default:
			continue
		}
		g.Go(func() error {
			if err := m.sampleOne(gctx, d, now); err != nil {
				zerolog.Ctx(gctx).Warn().Err(err).
					Str("deployment_id", d.ID).
					Msg("deployment sampling failed")
			}
			return nil
		})
	}
	return g.Wait()
}

// sampleOne 采样单个部署：核对漂移并追加用量记录
func (m *Meter) sampleOne(ctx context.Context, d *model.Deployment, sampledAt time.Time) error {
	plan, err := m.planRepo.GetByID(ctx, d.PlanID)
	if err != nil {
		return err
	}

	observed, err := m.hypervisor.GetState(ctx, d.ID)
	if err != nil {
		return err
	}
	if m.drifted(entity.DeploymentState(d.State), observed) && !d.NeedsAttention {
		zerolog.Ctx(ctx).Warn().
			Str("deployment_id", d.ID).
			Str("recorded_state", d.State).
			Str("observed_state", string(observed)).
			Msg("deployment state drift detected")
		d.NeedsAttention = true
		d.UpdatedAt = time.Now()
		if err := m.deploymentRepo.Update(ctx, d); err != nil {
			return err
		}
	}

	// stopped 不计费，记录保留用于审计
	cost := 0.0
	if d.State == string(entity.DeploymentStateRunning) {
		cost = plan.HourlyCost * m.interval.Hours()
	}

	return m.usageRepo.Create(ctx, &model.UsageRecord{
		DeploymentID:  d.ID,
		SampledAt:     sampledAt,
		ObservedState: string(observed),
		VCPUs:         plan.VCPUs,
		MemoryMB:      plan.MemoryMB,
		DiskGB:        plan.DiskGB,
		Cost:          cost,
		CreatedAt:     time.Now(),
	})
}

// drifted 库里状态和 hypervisor 观测是否矛盾
func (m *Meter) drifted(recorded entity.DeploymentState, observed adapter.GuestState) bool {
	switch recorded {
	case entity.DeploymentStateRunning:
		return observed != adapter.GuestRunning
	case entity.DeploymentStateStopped:
		// 停止的部署域定义仍在，absent 同样是漂移
		return observed != adapter.GuestStopped
	default:
		return false
	}
}
