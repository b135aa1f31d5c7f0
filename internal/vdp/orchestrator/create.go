package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jimyag/vdp/internal/vdp/adapter"
	"github.com/jimyag/vdp/internal/vdp/entity"
	"github.com/jimyag/vdp/internal/vdp/repository/model"
	"github.com/jimyag/vdp/pkg/apierror"
	"github.com/jimyag/vdp/pkg/cloudinit"
)

// CreateDeployment 创建部署并推进到 running
// 任一步失败都会逆序回滚已获取的资源并把部署置为 failed
func (o *Orchestrator) CreateDeployment(ctx context.Context, req *entity.CreateDeploymentRequest) (*entity.CreateDeploymentResponse, error) {
	if req.UserID == "" || req.PlanID == "" || req.TemplateID == "" {
		return nil, apierror.WrapError(apierror.ErrInvalidParameterValue, "user_id, plan_id and template_id are required", nil)
	}

	plan, err := o.planRepo.GetByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.WrapError(apierror.ErrResourceNotFound, "plan not found: "+req.PlanID, nil)
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "load plan", err)
	}

	tmpl, err := o.templateRepo.GetByID(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.WrapError(apierror.ErrResourceNotFound, "template not found: "+req.TemplateID, nil)
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "load template", err)
	}

	id, err := o.idgen.GenerateDeploymentID()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "generate deployment id", err)
	}

	hostname := req.Name
	if hostname == "" {
		hostname = id
	}
	demand := entity.ResourceDemand{VCPUs: plan.VCPUs, MemoryMB: plan.MemoryMB, DiskGB: plan.DiskGB}

	logger := zerolog.Ctx(ctx).With().Str("deployment_id", id).Logger()
	ctx = logger.WithContext(ctx)
	logger.Info().
		Str("user_id", req.UserID).
		Str("plan_id", req.PlanID).
		Str("template_id", req.TemplateID).
		Msg("deployment accepted")

	// reserving：配额和节点容量预留
	// 两者都在各自的锁内完成检查加预占，并发请求不会超卖
	token, err := o.quota.Reserve(ctx, req.UserID, demand)
	if err != nil {
		return nil, err
	}

	nodeID, err := o.capacity.Reserve(demand)
	if err != nil {
		token.Release()
		return nil, err
	}

	rb := &rollback{}
	rb.add("release node capacity", func(context.Context) error {
		o.capacity.Release(nodeID, demand)
		return nil
	})

	node, err := o.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		rb.run(ctx)
		token.Release()
		return nil, apierror.WrapError(apierror.ErrInternalError, "load node "+nodeID, err)
	}

	password, err := generatePassword()
	if err != nil {
		rb.run(ctx)
		token.Release()
		return nil, apierror.WrapError(apierror.ErrInternalError, "generate credentials", err)
	}
	passwordHash, err := cloudinit.HashPassword(password)
	if err != nil {
		rb.run(ctx)
		token.Release()
		return nil, apierror.WrapError(apierror.ErrInternalError, "hash credentials", err)
	}
	mac, err := generateMAC()
	if err != nil {
		rb.run(ctx)
		token.Release()
		return nil, apierror.WrapError(apierror.ErrInternalError, "generate mac", err)
	}

	now := time.Now()
	row := &model.Deployment{
		ID:             id,
		UserID:         req.UserID,
		PlanID:         req.PlanID,
		TemplateID:     req.TemplateID,
		NodeID:         nodeID,
		State:          string(entity.DeploymentStateReserving),
		MAC:            mac,
		AuthorizedKeys: joinKeys(req.AuthorizedKeys),
		PasswordHash:   passwordHash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := o.deploymentRepo.Create(ctx, row); err != nil {
		rb.run(ctx)
		token.Release()
		return nil, apierror.WrapError(apierror.ErrInternalError, "persist deployment", err)
	}
	// 部署行已落库并计入非终态占用，内存预留转正
	token.Confirm()

	// provisioning：磁盘和启动配置
	if err := o.advance(ctx, id, entity.DeploymentStateProvisioning); err != nil {
		return nil, o.failDeployment(ctx, id, rb, err)
	}

	diskPath, err := o.disk.CreateCOWDisk(ctx, node.PoolName, diskVolumeName(id), tmpl.BackingPath, tmpl.BackingFormat, plan.DiskGB)
	if err != nil {
		return nil, o.failDeployment(ctx, id, rb,
			apierror.WrapError(apierror.ErrAdapterFailure, "create system disk", err))
	}
	rb.add("delete system disk", func(ctx context.Context) error {
		return o.disk.DeleteDisk(ctx, node.PoolName, diskVolumeName(id))
	})

	var seedISO string
	if tmpl.CloudInit {
		seedISO, err = o.renderer.RenderSeedISO(ctx, id, hostname, password, req.AuthorizedKeys, mac)
		if err != nil {
			return nil, o.failDeployment(ctx, id, rb,
				apierror.WrapError(apierror.ErrAdapterFailure, "render boot configuration", err))
		}
		rb.add("remove seed iso", func(ctx context.Context) error {
			return o.renderer.RemoveSeedISO(ctx, id)
		})
	}

	// defining：端口分配和客户机定义
	if err := o.advance(ctx, id, entity.DeploymentStateDefining); err != nil {
		return nil, o.failDeployment(ctx, id, rb, err)
	}

	sshPort, consolePort, err := o.net.AllocatePorts(nodeID)
	if err != nil {
		return nil, o.failDeployment(ctx, id, rb, err)
	}
	rb.add("release ports", func(context.Context) error {
		o.net.ReleasePorts(nodeID, sshPort, consolePort)
		return nil
	})

	guestUUID := uuid.NewString()
	spec := &adapter.GuestSpec{
		Name:        id,
		UUID:        guestUUID,
		VCPUs:       plan.VCPUs,
		MemoryMB:    plan.MemoryMB,
		DiskPath:    diskPath,
		SeedISOPath: seedISO,
		MAC:         mac,
		NetworkName: o.opts.NetworkName,
		ConsolePort: consolePort,
	}
	if err := o.hypervisor.Define(ctx, spec); err != nil {
		return nil, o.failDeployment(ctx, id, rb,
			apierror.WrapError(apierror.ErrAdapterFailure, "define guest", err))
	}
	rb.add("undefine guest", func(ctx context.Context) error {
		return o.hypervisor.Undefine(ctx, id)
	})

	// starting：启动并等待网络地址
	if err := o.advance(ctx, id, entity.DeploymentStateStarting); err != nil {
		return nil, o.failDeployment(ctx, id, rb, err)
	}

	if err := o.hypervisor.Start(ctx, id); err != nil {
		return nil, o.failDeployment(ctx, id, rb,
			apierror.WrapError(apierror.ErrAdapterFailure, "start guest", err))
	}

	privateIP, err := o.waitForAddress(ctx, id, mac)
	if err != nil {
		return nil, o.failDeployment(ctx, id, rb, err)
	}

	if err := o.net.InstallForwards(ctx, privateIP, sshPort, consolePort); err != nil {
		return nil, o.failDeployment(ctx, id, rb,
			apierror.WrapError(apierror.ErrAdapterFailure, "install port forwards", err))
	}
	rb.add("remove port forwards", func(ctx context.Context) error {
		return o.net.RemoveForwards(ctx, privateIP, sshPort, consolePort)
	})

	// running
	row.State = string(entity.DeploymentStateRunning)
	row.GuestUUID = guestUUID
	row.PrivateIP = privateIP
	row.SSHPort = sshPort
	row.ConsolePort = consolePort
	row.UpdatedAt = time.Now()
	if err := o.deploymentRepo.Update(ctx, row); err != nil {
		return nil, o.failDeployment(ctx, id, rb,
			apierror.WrapError(apierror.ErrInternalError, "persist running deployment", err))
	}

	logger.Info().
		Str("node_id", nodeID).
		Str("private_ip", privateIP).
		Int("ssh_port", sshPort).
		Int("console_port", consolePort).
		Msg("deployment running")

	return &entity.CreateDeploymentResponse{
		Deployment:      toDeploymentEntity(row),
		InitialPassword: password,
	}, nil
}

// advance 推进状态机并落库
func (o *Orchestrator) advance(ctx context.Context, id string, state entity.DeploymentState) error {
	if err := o.deploymentRepo.UpdateState(ctx, id, string(state)); err != nil {
		return apierror.WrapError(apierror.ErrInternalError, "persist state "+string(state), err)
	}
	zerolog.Ctx(ctx).Debug().Str("state", string(state)).Msg("deployment state advanced")
	return nil
}

// failDeployment 逆序回滚并把部署置为 failed，返回原始错误
// failed 是终态，行保留供排查，不再占用配额和容量
func (o *Orchestrator) failDeployment(ctx context.Context, id string, rb *rollback, cause error) error {
	zerolog.Ctx(ctx).Error().Err(cause).Msg("deployment failed, rolling back")
	rb.run(ctx)
	if err := o.deploymentRepo.UpdateState(ctx, id, string(entity.DeploymentStateFailed)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("persist failed state")
	}
	return cause
}

// waitForAddress 有界轮询等待客户机从 DHCP 拿到地址
func (o *Orchestrator) waitForAddress(ctx context.Context, id string, mac string) (string, error) {
	deadline := time.Now().Add(o.opts.AddressWaitTimeout)
	for {
		ip, err := o.hypervisor.GetAddress(ctx, id, mac)
		if err != nil {
			return "", apierror.WrapError(apierror.ErrAdapterFailure, "query guest address", err)
		}
		if ip != "" {
			return ip, nil
		}

		if time.Now().After(deadline) {
			return "", apierror.WrapError(apierror.ErrOperationTimeout,
				"guest did not obtain an address within the wait window", nil)
		}

		select {
		case <-ctx.Done():
			return "", apierror.WrapError(apierror.ErrOperationTimeout, "wait for guest address", ctx.Err())
		case <-time.After(o.opts.AddressPollEvery):
		}
	}
}
