package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jimyag/vdp/internal/vdp/adapter"
	"github.com/jimyag/vdp/internal/vdp/entity"
	"github.com/jimyag/vdp/internal/vdp/repository/model"
	"github.com/jimyag/vdp/pkg/apierror"
)

// getDeployment 取部署行，不存在映射为 ResourceNotFound
func (o *Orchestrator) getDeployment(ctx context.Context, id string) (*model.Deployment, error) {
	row, err := o.deploymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.WrapError(apierror.ErrResourceNotFound, "deployment not found: "+id, nil)
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "load deployment", err)
	}
	return row, nil
}

// StartDeployment 启动已停止的部署
// 端口在停止期间一直保留，重新启动后转发规则用同一对端口重装
func (o *Orchestrator) StartDeployment(ctx context.Context, req *entity.StartDeploymentRequest) (*entity.DeploymentStateChange, error) {
	unlock := o.locks.Lock(req.DeploymentID)
	defer unlock()

	row, err := o.getDeployment(ctx, req.DeploymentID)
	if err != nil {
		return nil, err
	}
	// 已在运行，重复启动是无操作成功
	if row.State == string(entity.DeploymentStateRunning) {
		return &entity.DeploymentStateChange{
			DeploymentID:  row.ID,
			PreviousState: entity.DeploymentStateRunning,
			CurrentState:  entity.DeploymentStateRunning,
		}, nil
	}
	if row.State != string(entity.DeploymentStateStopped) {
		return nil, apierror.WrapError(apierror.ErrIncorrectDeploymentState,
			"deployment must be stopped to start, current state: "+row.State, nil)
	}

	logger := zerolog.Ctx(ctx).With().Str("deployment_id", row.ID).Logger()
	ctx = logger.WithContext(ctx)

	if err := o.advance(ctx, row.ID, entity.DeploymentStateStarting); err != nil {
		return nil, err
	}

	revert := func(cause error) (*entity.DeploymentStateChange, error) {
		// 失败退回 stopped，启动可以重试
		if err := o.hypervisor.ForceStop(ctx, row.ID); err != nil {
			logger.Warn().Err(err).Msg("force stop after failed start")
		}
		if err := o.deploymentRepo.UpdateState(ctx, row.ID, string(entity.DeploymentStateStopped)); err != nil {
			logger.Error().Err(err).Msg("persist stopped state")
		}
		return nil, cause
	}

	if err := o.hypervisor.Start(ctx, row.ID); err != nil {
		return revert(apierror.WrapError(apierror.ErrAdapterFailure, "start guest", err))
	}

	// 重启后 DHCP 可能换地址，重新解析
	privateIP, err := o.waitForAddress(ctx, row.ID, row.MAC)
	if err != nil {
		return revert(err)
	}

	if err := o.net.InstallForwards(ctx, privateIP, row.SSHPort, row.ConsolePort); err != nil {
		return revert(apierror.WrapError(apierror.ErrAdapterFailure, "install port forwards", err))
	}

	row.State = string(entity.DeploymentStateRunning)
	row.PrivateIP = privateIP
	row.UpdatedAt = time.Now()
	if err := o.deploymentRepo.Update(ctx, row); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "persist running deployment", err)
	}

	logger.Info().Str("private_ip", privateIP).Msg("deployment started")
	return &entity.DeploymentStateChange{
		DeploymentID:  row.ID,
		PreviousState: entity.DeploymentStateStopped,
		CurrentState:  entity.DeploymentStateRunning,
	}, nil
}

// StopDeployment 停止运行中的部署
// 先优雅关机，超时强制断电；转发规则摘除，端口保留
func (o *Orchestrator) StopDeployment(ctx context.Context, req *entity.StopDeploymentRequest) (*entity.DeploymentStateChange, error) {
	unlock := o.locks.Lock(req.DeploymentID)
	defer unlock()

	row, err := o.getDeployment(ctx, req.DeploymentID)
	if err != nil {
		return nil, err
	}
	// 已经停止，重复停止是无操作成功
	if row.State == string(entity.DeploymentStateStopped) {
		return &entity.DeploymentStateChange{
			DeploymentID:  row.ID,
			PreviousState: entity.DeploymentStateStopped,
			CurrentState:  entity.DeploymentStateStopped,
		}, nil
	}
	if row.State != string(entity.DeploymentStateRunning) {
		return nil, apierror.WrapError(apierror.ErrIncorrectDeploymentState,
			"deployment must be running to stop, current state: "+row.State, nil)
	}

	logger := zerolog.Ctx(ctx).With().Str("deployment_id", row.ID).Logger()
	ctx = logger.WithContext(ctx)

	if err := o.shutdownGuest(ctx, row.ID); err != nil {
		return nil, apierror.WrapError(apierror.ErrAdapterFailure, "stop guest", err)
	}

	needsAttention := row.NeedsAttention
	if err := o.net.RemoveForwards(ctx, row.PrivateIP, row.SSHPort, row.ConsolePort); err != nil {
		// 客户机已经停了，残留规则标记出来等人工处理
		logger.Warn().Err(err).Msg("remove port forwards failed, flagging deployment")
		needsAttention = true
	}

	row.State = string(entity.DeploymentStateStopped)
	row.NeedsAttention = needsAttention
	row.UpdatedAt = time.Now()
	if err := o.deploymentRepo.Update(ctx, row); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "persist stopped deployment", err)
	}

	logger.Info().Msg("deployment stopped")
	return &entity.DeploymentStateChange{
		DeploymentID:  row.ID,
		PreviousState: entity.DeploymentStateRunning,
		CurrentState:  entity.DeploymentStateStopped,
	}, nil
}

// shutdownGuest 优雅关机，有界等待后强制断电
func (o *Orchestrator) shutdownGuest(ctx context.Context, name string) error {
	logger := zerolog.Ctx(ctx)

	if err := o.hypervisor.Shutdown(ctx, name); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown failed, forcing")
		return o.hypervisor.ForceStop(ctx, name)
	}

	deadline := time.Now().Add(o.opts.StopWaitTimeout)
	for time.Now().Before(deadline) {
		state, err := o.hypervisor.GetState(ctx, name)
		if err != nil {
			return err
		}
		if state == adapter.GuestStopped || state == adapter.GuestAbsent {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}

	logger.Warn().Str("domain", name).Msg("graceful shutdown timed out, forcing")
	return o.hypervisor.ForceStop(ctx, name)
}

// TerminateDeployment 删除部署
// 幂等：已删除的部署再次删除返回成功且无副作用
func (o *Orchestrator) TerminateDeployment(ctx context.Context, req *entity.TerminateDeploymentRequest) (*entity.DeploymentStateChange, error) {
	unlock := o.locks.Lock(req.DeploymentID)
	defer unlock()

	row, err := o.deploymentRepo.GetByID(ctx, req.DeploymentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.WrapError(apierror.ErrInternalError, "load deployment", err)
		}
		// 行已软删除：已删除的部署重复删除是无操作成功
		deleted, derr := o.deploymentRepo.GetByIDWithDeleted(ctx, req.DeploymentID)
		if derr != nil || deleted.State != string(entity.DeploymentStateDeleted) {
			return nil, apierror.WrapError(apierror.ErrResourceNotFound, "deployment not found: "+req.DeploymentID, nil)
		}
		return &entity.DeploymentStateChange{
			DeploymentID:  req.DeploymentID,
			PreviousState: entity.DeploymentStateDeleted,
			CurrentState:  entity.DeploymentStateDeleted,
		}, nil
	}

	previous := entity.DeploymentState(row.State)
	switch previous {
	case entity.DeploymentStateDeleting:
		return nil, apierror.WrapError(apierror.ErrIncorrectDeploymentState,
			"deployment is already being deleted", nil)
	case entity.DeploymentStateRunning, entity.DeploymentStateStopped, entity.DeploymentStateFailed:
		// 可删除
	default:
		return nil, apierror.WrapError(apierror.ErrIncorrectDeploymentState,
			"deployment cannot be deleted in state: "+row.State, nil)
	}

	logger := zerolog.Ctx(ctx).With().Str("deployment_id", row.ID).Logger()
	ctx = logger.WithContext(ctx)

	if err := o.advance(ctx, row.ID, entity.DeploymentStateDeleting); err != nil {
		return nil, err
	}

	// 资源清理逐项执行且各自幂等，失败不中断，残留记录告警
	if row.PrivateIP != "" && row.SSHPort > 0 {
		if err := o.net.RemoveForwards(ctx, row.PrivateIP, row.SSHPort, row.ConsolePort); err != nil {
			logger.Warn().Err(err).Msg("remove port forwards during terminate")
		}
	}

	if err := o.hypervisor.Undefine(ctx, row.ID); err != nil {
		logger.Warn().Err(err).Msg("undefine guest during terminate")
	}

	if node, err := o.nodeRepo.GetByID(ctx, row.NodeID); err == nil {
		if err := o.disk.DeleteDisk(ctx, node.PoolName, diskVolumeName(row.ID)); err != nil {
			logger.Warn().Err(err).Msg("delete system disk during terminate")
		}
	} else if row.NodeID != "" {
		logger.Warn().Err(err).Str("node_id", row.NodeID).Msg("node missing during terminate, disk not deleted")
	}

	if err := o.renderer.RemoveSeedISO(ctx, row.ID); err != nil {
		logger.Warn().Err(err).Msg("remove seed iso during terminate")
	}

	// failed 的部署在回滚时已经归还过端口和容量
	if previous != entity.DeploymentStateFailed {
		if row.SSHPort > 0 || row.ConsolePort > 0 {
			o.net.ReleasePorts(row.NodeID, row.SSHPort, row.ConsolePort)
		}
		if plan, err := o.planRepo.GetByID(ctx, row.PlanID); err == nil {
			o.capacity.Release(row.NodeID, entity.ResourceDemand{
				VCPUs:    plan.VCPUs,
				MemoryMB: plan.MemoryMB,
				DiskGB:   plan.DiskGB,
			})
		} else {
			logger.Warn().Err(err).Str("plan_id", row.PlanID).Msg("plan missing during terminate, capacity not released")
		}
	}

	// 客户机没了，快照一并失效
	if err := o.snapshotRepo.DisableByDeployment(ctx, row.ID); err != nil {
		logger.Warn().Err(err).Msg("disable snapshots during terminate")
	}

	if err := o.advance(ctx, row.ID, entity.DeploymentStateDeleted); err != nil {
		return nil, err
	}
	if err := o.deploymentRepo.Delete(ctx, row.ID); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "soft delete deployment", err)
	}

	logger.Info().Str("previous_state", string(previous)).Msg("deployment deleted")
	return &entity.DeploymentStateChange{
		DeploymentID:  row.ID,
		PreviousState: previous,
		CurrentState:  entity.DeploymentStateDeleted,
	}, nil
}

// DescribeDeployments 查询部署
func (o *Orchestrator) DescribeDeployments(ctx context.Context, req *entity.DescribeDeploymentsRequest) (*entity.DescribeDeploymentsResponse, error) {
	resp := &entity.DescribeDeploymentsResponse{Deployments: []entity.Deployment{}}

	if len(req.DeploymentIDs) > 0 {
		for _, id := range req.DeploymentIDs {
			row, err := o.getDeployment(ctx, id)
			if err != nil {
				return nil, err
			}
			resp.Deployments = append(resp.Deployments, *toDeploymentEntity(row))
		}
		return resp, nil
	}

	filters := map[string]interface{}{}
	if req.UserID != "" {
		filters["user_id"] = req.UserID
	}
	rows, err := o.deploymentRepo.List(ctx, filters)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "list deployments", err)
	}
	for _, row := range rows {
		resp.Deployments = append(resp.Deployments, *toDeploymentEntity(row))
	}
	return resp, nil
}
