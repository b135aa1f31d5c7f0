// Package quota 管理用户资源配额的检查和预留
// 预留在内存中记账，创建成功落库后转为已提交占用
package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jimyag/vdp/internal/vdp/entity"
	"github.com/jimyag/vdp/internal/vdp/repository"
	"github.com/jimyag/vdp/pkg/apierror"
)

// Enforcer 配额执行器
// 检查和预留在同一把用户锁内完成，并发创建不会突破配额
// 配额按用户独立，不同用户的检查互不阻塞
type Enforcer struct {
	locks          *keyedMutex
	quotaRepo      repository.QuotaRepository
	deploymentRepo repository.DeploymentRepository
	planRepo       repository.PlanRepository

	mu      sync.Mutex                // 只保护 pending 和 nextID
	pending map[string][]*reservation // 按用户分组的未落库预留
	nextID  uint64
}

// reservation 一笔未落库的预留
type reservation struct {
	id     uint64
	demand entity.ResourceDemand
}

// NewEnforcer 创建配额执行器
func NewEnforcer(quotaRepo repository.QuotaRepository, deploymentRepo repository.DeploymentRepository, planRepo repository.PlanRepository) *Enforcer {
	return &Enforcer{
		locks:          newKeyedMutex(),
		quotaRepo:      quotaRepo,
		deploymentRepo: deploymentRepo,
		planRepo:       planRepo,
		pending:        make(map[string][]*reservation),
	}
}

// Token 一次成功预留的凭据
// 创建落库后 Confirm，失败回滚时 Release，两者只能调用一次
type Token struct {
	enforcer *Enforcer
	userID   string
	id       uint64
	once     sync.Once
}

// Confirm 预留转为已提交
// 部署行已落库并计入非终态统计，内存预留随之撤销
func (t *Token) Confirm() {
	t.once.Do(func() {
		t.enforcer.drop(t.userID, t.id)
	})
}

// Release 撤销预留，创建失败回滚时调用
func (t *Token) Release() {
	t.once.Do(func() {
		t.enforcer.drop(t.userID, t.id)
	})
}

func (e *Enforcer) drop(userID string, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	list := e.pending[userID]
	for i, r := range list {
		if r.id == id {
			e.pending[userID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(e.pending[userID]) == 0 {
		delete(e.pending, userID)
	}
}

// Reserve 检查并预留配额
// 已提交占用（非终态部署）加未落库预留加本次需求超出配额时返回 ErrQuotaExceeded
// 用户没有配额记录视为不限额
// 检查含库查询，只串行同一用户的预留，不能全局持锁
func (e *Enforcer) Reserve(ctx context.Context, userID string, demand entity.ResourceDemand) (*Token, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	quota, err := e.quotaRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			quota = nil
		} else {
			return nil, apierror.WrapError(apierror.ErrInternalError, "query quota", err)
		}
	}

	if quota != nil {
		usage, err := e.committedUsage(ctx, userID)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		for _, r := range e.pending[userID] {
			usage = usage.Add(r.demand)
		}
		e.mu.Unlock()
		usage = usage.Add(demand)

		limit := &entity.Quota{
			UserID:      quota.UserID,
			MaxVMs:      quota.MaxVMs,
			MaxVCPUs:    quota.MaxVCPUs,
			MaxMemoryMB: quota.MaxMemoryMB,
			MaxDiskGB:   quota.MaxDiskGB,
		}
		if usage.Exceeds(limit) {
			zerolog.Ctx(ctx).Info().
				Str("user_id", userID).
				Uint64("want_vcpus", demand.VCPUs).
				Uint64("want_memory_mb", demand.MemoryMB).
				Uint64("want_disk_gb", demand.DiskGB).
				Msg("quota exceeded")
			return nil, apierror.WrapError(apierror.ErrQuotaExceeded, fmt.Sprintf("quota exceeded for user %s", userID), nil)
		}
	}

	e.mu.Lock()
	e.nextID++
	r := &reservation{id: e.nextID, demand: demand}
	e.pending[userID] = append(e.pending[userID], r)
	e.mu.Unlock()

	return &Token{enforcer: e, userID: userID, id: r.id}, nil
}

// committedUsage 统计用户所有非终态部署占用的资源
func (e *Enforcer) committedUsage(ctx context.Context, userID string) (entity.QuotaUsage, error) {
	var usage entity.QuotaUsage

	deployments, err := e.deploymentRepo.ListNonTerminalByUser(ctx, userID)
	if err != nil {
		return usage, apierror.WrapError(apierror.ErrInternalError, "list deployments for quota", err)
	}

	// 套餐数量有限，简单缓存避免重复查询
	plans := make(map[string]entity.ResourceDemand)
	for _, d := range deployments {
		demand, ok := plans[d.PlanID]
		if !ok {
			plan, err := e.planRepo.GetByID(ctx, d.PlanID)
			if err != nil {
				return usage, apierror.WrapError(apierror.ErrInternalError, "load plan "+d.PlanID, err)
			}
			demand = entity.ResourceDemand{
				VCPUs:    plan.VCPUs,
				MemoryMB: plan.MemoryMB,
				DiskGB:   plan.DiskGB,
			}
			plans[d.PlanID] = demand
		}
		usage = usage.Add(demand)
	}

	return usage, nil
}
