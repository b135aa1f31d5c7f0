// Package orchestrator 实现部署生命周期编排
// 创建沿 pending、reserving、provisioning、defining、starting、running 推进
// 任一步失败按补偿动作逆序回滚并置为 failed
package orchestrator

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jimyag/vdp/internal/vdp/adapter"
	"github.com/jimyag/vdp/internal/vdp/entity"
	"github.com/jimyag/vdp/internal/vdp/network"
	"github.com/jimyag/vdp/internal/vdp/quota"
	"github.com/jimyag/vdp/internal/vdp/repository"
	"github.com/jimyag/vdp/internal/vdp/scheduler"
	"github.com/jimyag/vdp/pkg/apierror"
	"github.com/jimyag/vdp/pkg/idgen"
)

// Options 编排器配置
type Options struct {
	NetworkName        string        // libvirt NAT 网络名称
	AddressWaitTimeout time.Duration // 等待客户机拿到地址的上限
	AddressPollEvery   time.Duration // 地址轮询间隔
	StopWaitTimeout    time.Duration // 优雅关机等待上限，超时强制断电
}

func (o *Options) fillDefaults() {
	if o.NetworkName == "" {
		o.NetworkName = "default"
	}
	if o.AddressWaitTimeout <= 0 {
		o.AddressWaitTimeout = 90 * time.Second
	}
	if o.AddressPollEvery <= 0 {
		o.AddressPollEvery = 2 * time.Second
	}
	if o.StopWaitTimeout <= 0 {
		o.StopWaitTimeout = 30 * time.Second
	}
}

// Orchestrator 部署编排器
type Orchestrator struct {
	opts Options

	deploymentRepo repository.DeploymentRepository
	nodeRepo       repository.NodeRepository
	planRepo       repository.PlanRepository
	templateRepo   repository.TemplateRepository
	snapshotRepo   repository.SnapshotRepository
	usageRepo      repository.UsageRepository
	quotaRepo      repository.QuotaRepository

	capacity *scheduler.Manager
	net      *network.Coordinator
	quota    *quota.Enforcer

	hypervisor adapter.HypervisorControlPlane
	disk       adapter.DiskProvisioner
	renderer   adapter.GuestConfigRenderer

	idgen *idgen.Generator
	locks *keyedMutex
}

// New 创建编排器
func New(
	opts Options,
	repo *repository.Repository,
	capacity *scheduler.Manager,
	net *network.Coordinator,
	quotaEnforcer *quota.Enforcer,
	hypervisor adapter.HypervisorControlPlane,
	disk adapter.DiskProvisioner,
	renderer adapter.GuestConfigRenderer,
) *Orchestrator {
	opts.fillDefaults()
	return &Orchestrator{
		opts:           opts,
		deploymentRepo: repository.NewDeploymentRepository(repo.DB()),
		nodeRepo:       repository.NewNodeRepository(repo.DB()),
		planRepo:       repository.NewPlanRepository(repo.DB()),
		templateRepo:   repository.NewTemplateRepository(repo.DB()),
		snapshotRepo:   repository.NewSnapshotRepository(repo.DB()),
		usageRepo:      repository.NewUsageRepository(repo.DB()),
		quotaRepo:      repository.NewQuotaRepository(repo.DB()),
		capacity:       capacity,
		net:            net,
		quota:          quotaEnforcer,
		hypervisor:     hypervisor,
		disk:           disk,
		renderer:       renderer,
		idgen:          idgen.DefaultGenerator(),
		locks:          newKeyedMutex(),
	}
}

// Recover 启动时从数据库恢复容量账本和端口池
// 非终态部署占用的节点资源和端口重新标记为已用
func (o *Orchestrator) Recover(ctx context.Context) error {
	nodes, err := o.nodeRepo.List(ctx)
	if err != nil {
		return apierror.WrapError(apierror.ErrInternalError, "list nodes for recovery", err)
	}
	for _, n := range nodes {
		o.capacity.SetNode(*toNodeEntity(n))
	}

	deployments, err := o.deploymentRepo.ListNonTerminal(ctx)
	if err != nil {
		return apierror.WrapError(apierror.ErrInternalError, "list deployments for recovery", err)
	}

	logger := zerolog.Ctx(ctx)
	for _, d := range deployments {
		if d.NodeID == "" {
			continue
		}
		plan, err := o.planRepo.GetByID(ctx, d.PlanID)
		if err != nil {
			logger.Warn().Str("deployment_id", d.ID).Str("plan_id", d.PlanID).Err(err).
				Msg("plan missing during recovery, capacity not restored")
			continue
		}
		demand := entity.ResourceDemand{VCPUs: plan.VCPUs, MemoryMB: plan.MemoryMB, DiskGB: plan.DiskGB}
		if err := o.capacity.ReserveOn(d.NodeID, demand); err != nil {
			logger.Warn().Str("deployment_id", d.ID).Err(err).Msg("capacity recovery failed")
		}
		if d.SSHPort > 0 || d.ConsolePort > 0 {
			o.net.RestorePorts(d.NodeID, d.SSHPort, d.ConsolePort)
		}
	}

	logger.Info().
		Int("nodes", len(nodes)).
		Int("deployments", len(deployments)).
		Msg("orchestrator state recovered")
	return nil
}

// generateMAC 生成 QEMU 保留前缀 52:54:00 的随机 MAC
func generateMAC() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate mac: %w", err)
	}
	return fmt.Sprintf("52:54:00:%02x:%02x:%02x", buf[0], buf[1], buf[2]), nil
}

// passwordCharset 初始口令字符集，去掉了易混淆字符
const passwordCharset = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ23456789"

// generatePassword 生成 16 位随机初始口令
// 明文只在创建响应中返回一次，落库的是 bcrypt 哈希
func generatePassword() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = passwordCharset[int(b)%len(passwordCharset)]
	}
	return string(out), nil
}

// diskVolumeName 部署系统盘在存储池中的卷名
func diskVolumeName(deploymentID string) string {
	return deploymentID + ".qcow2"
}
