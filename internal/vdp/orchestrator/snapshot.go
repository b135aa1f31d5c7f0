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

// CreateSnapshot 为部署创建快照
func (o *Orchestrator) CreateSnapshot(ctx context.Context, req *entity.CreateSnapshotRequest) (*entity.CreateSnapshotResponse, error) {
	unlock := o.locks.Lock(req.DeploymentID)
	defer unlock()

	row, err := o.getDeployment(ctx, req.DeploymentID)
	if err != nil {
		return nil, err
	}

	switch entity.DeploymentState(row.State) {
	case entity.DeploymentStateRunning, entity.DeploymentStateStopped:
		// 可以打快照
	default:
		return nil, apierror.WrapError(apierror.ErrIncorrectDeploymentState,
			"deployment must be running or stopped to snapshot, current state: "+row.State, nil)
	}

	id, err := o.idgen.GenerateSnapshotID()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "generate snapshot id", err)
	}
	name := req.Name
	if name == "" {
		name = id
	}

	if err := o.hypervisor.CreateSnapshot(ctx, row.ID, name); err != nil {
		return nil, apierror.WrapError(apierror.ErrAdapterFailure, "create snapshot", err)
	}

	now := time.Now()
	snap := &model.Snapshot{
		ID:           id,
		DeploymentID: row.ID,
		Name:         name,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := o.snapshotRepo.Create(ctx, snap); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "persist snapshot", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("deployment_id", row.ID).
		Str("snapshot_id", id).
		Msg("snapshot created")
	return &entity.CreateSnapshotResponse{Snapshot: toSnapshotEntity(snap)}, nil
}

// RestoreSnapshot 把部署恢复到指定快照
func (o *Orchestrator) RestoreSnapshot(ctx context.Context, req *entity.RestoreSnapshotRequest) (*entity.DeploymentStateChange, error) {
	snap, err := o.snapshotRepo.GetByID(ctx, req.SnapshotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.WrapError(apierror.ErrResourceNotFound, "snapshot not found: "+req.SnapshotID, nil)
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "load snapshot", err)
	}
	if !snap.Enabled {
		return nil, apierror.WrapError(apierror.ErrIncorrectDeploymentState,
			"snapshot is disabled because its deployment was deleted", nil)
	}

	unlock := o.locks.Lock(snap.DeploymentID)
	defer unlock()

	row, err := o.getDeployment(ctx, snap.DeploymentID)
	if err != nil {
		return nil, err
	}

	previous := entity.DeploymentState(row.State)
	switch previous {
	case entity.DeploymentStateRunning, entity.DeploymentStateStopped:
		// 可以恢复
	default:
		return nil, apierror.WrapError(apierror.ErrIncorrectDeploymentState,
			"deployment must be running or stopped to restore, current state: "+row.State, nil)
	}

	if err := o.hypervisor.RevertSnapshot(ctx, row.ID, snap.Name); err != nil {
		return nil, apierror.WrapError(apierror.ErrAdapterFailure, "revert snapshot", err)
	}

	// 恢复后客户机状态跟随快照，以 hypervisor 观测为准
	state, err := o.hypervisor.GetState(ctx, row.ID)
	if err == nil {
		current := entity.DeploymentStateStopped
		if state == adapter.GuestRunning {
			current = entity.DeploymentStateRunning
		}
		if string(current) != row.State {
			if err := o.deploymentRepo.UpdateState(ctx, row.ID, string(current)); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("persist state after restore")
			}
			row.State = string(current)
		}
	}

	zerolog.Ctx(ctx).Info().
		Str("deployment_id", row.ID).
		Str("snapshot_id", snap.ID).
		Msg("snapshot restored")
	return &entity.DeploymentStateChange{
		DeploymentID:  row.ID,
		PreviousState: previous,
		CurrentState:  entity.DeploymentState(row.State),
	}, nil
}

// DescribeSnapshots 查询某部署的快照
func (o *Orchestrator) DescribeSnapshots(ctx context.Context, req *entity.DescribeSnapshotsRequest) (*entity.DescribeSnapshotsResponse, error) {
	rows, err := o.snapshotRepo.ListByDeployment(ctx, req.DeploymentID)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "list snapshots", err)
	}

	resp := &entity.DescribeSnapshotsResponse{Snapshots: []entity.Snapshot{}}
	for _, row := range rows {
		resp.Snapshots = append(resp.Snapshots, *toSnapshotEntity(row))
	}
	return resp, nil
}
