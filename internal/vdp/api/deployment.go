package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/vdp/internal/vdp/entity"
	"github.com/jimyag/vdp/pkg/ginx"
)

// DeploymentServiceInterface 定义部署服务的接口
type DeploymentServiceInterface interface {
	CreateDeployment(ctx context.Context, req *entity.CreateDeploymentRequest) (*entity.CreateDeploymentResponse, error)
	DescribeDeployments(ctx context.Context, req *entity.DescribeDeploymentsRequest) (*entity.DescribeDeploymentsResponse, error)
	StartDeployment(ctx context.Context, req *entity.StartDeploymentRequest) (*entity.DeploymentStateChange, error)
	StopDeployment(ctx context.Context, req *entity.StopDeploymentRequest) (*entity.DeploymentStateChange, error)
	TerminateDeployment(ctx context.Context, req *entity.TerminateDeploymentRequest) (*entity.DeploymentStateChange, error)
	CreateSnapshot(ctx context.Context, req *entity.CreateSnapshotRequest) (*entity.CreateSnapshotResponse, error)
	RestoreSnapshot(ctx context.Context, req *entity.RestoreSnapshotRequest) (*entity.DeploymentStateChange, error)
	DescribeSnapshots(ctx context.Context, req *entity.DescribeSnapshotsRequest) (*entity.DescribeSnapshotsResponse, error)
	DescribeUsage(ctx context.Context, req *entity.DescribeUsageRequest) (*entity.DescribeUsageResponse, error)
}

// Deployment 部署相关的 HTTP handler
type Deployment struct {
	service DeploymentServiceInterface
}

// NewDeployment 创建部署 handler
func NewDeployment(service DeploymentServiceInterface) *Deployment {
	return &Deployment{service: service}
}

// RegisterRoutes 注册部署相关路由
func (d *Deployment) RegisterRoutes(router *gin.RouterGroup) {
	deploymentRouter := router.Group("/deployments")
	deploymentRouter.POST("", ginx.Handle(d.CreateDeployment))
	deploymentRouter.POST("/describe", ginx.Handle(d.DescribeDeployments))
	deploymentRouter.POST("/start", ginx.Handle(d.StartDeployment))
	deploymentRouter.POST("/stop", ginx.Handle(d.StopDeployment))
	deploymentRouter.POST("/terminate", ginx.Handle(d.TerminateDeployment))

	snapshotRouter := deploymentRouter.Group("/snapshots")
	snapshotRouter.POST("/create", ginx.Handle(d.CreateSnapshot))
	snapshotRouter.POST("/restore", ginx.Handle(d.RestoreSnapshot))
	snapshotRouter.POST("/describe", ginx.Handle(d.DescribeSnapshots))

	router.POST("/usage/describe", ginx.Handle(d.DescribeUsage))
}

// CreateDeployment 创建部署
func (d *Deployment) CreateDeployment(ctx *gin.Context, req *entity.CreateDeploymentRequest) (*entity.CreateDeploymentResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("user_id", req.UserID).
		Str("plan_id", req.PlanID).
		Str("template_id", req.TemplateID).
		Msg("CreateDeployment called")

	resp, err := d.service.CreateDeployment(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create deployment")
		return nil, err
	}
	return resp, nil
}

// DescribeDeployments 查询部署
func (d *Deployment) DescribeDeployments(ctx *gin.Context, req *entity.DescribeDeploymentsRequest) (*entity.DescribeDeploymentsResponse, error) {
	return d.service.DescribeDeployments(ctx, req)
}

// StartDeployment 启动部署
func (d *Deployment) StartDeployment(ctx *gin.Context, req *entity.StartDeploymentRequest) (*entity.DeploymentStateChange, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("deployment_id", req.DeploymentID).Msg("StartDeployment called")

	change, err := d.service.StartDeployment(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to start deployment")
		return nil, err
	}
	return change, nil
}

// StopDeployment 停止部署
func (d *Deployment) StopDeployment(ctx *gin.Context, req *entity.StopDeploymentRequest) (*entity.DeploymentStateChange, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("deployment_id", req.DeploymentID).Msg("StopDeployment called")

	change, err := d.service.StopDeployment(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to stop deployment")
		return nil, err
	}
	return change, nil
}

// TerminateDeployment 删除部署
func (d *Deployment) TerminateDeployment(ctx *gin.Context, req *entity.TerminateDeploymentRequest) (*entity.DeploymentStateChange, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("deployment_id", req.DeploymentID).Msg("TerminateDeployment called")

	change, err := d.service.TerminateDeployment(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to terminate deployment")
		return nil, err
	}
	return change, nil
}

// CreateSnapshot 创建快照
func (d *Deployment) CreateSnapshot(ctx *gin.Context, req *entity.CreateSnapshotRequest) (*entity.CreateSnapshotResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("deployment_id", req.DeploymentID).Msg("CreateSnapshot called")

	resp, err := d.service.CreateSnapshot(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create snapshot")
		return nil, err
	}
	return resp, nil
}

// RestoreSnapshot 恢复快照
func (d *Deployment) RestoreSnapshot(ctx *gin.Context, req *entity.RestoreSnapshotRequest) (*entity.DeploymentStateChange, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("snapshot_id", req.SnapshotID).Msg("RestoreSnapshot called")

	change, err := d.service.RestoreSnapshot(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to restore snapshot")
		return nil, err
	}
	return change, nil
}

// DescribeSnapshots 查询快照
func (d *Deployment) DescribeSnapshots(ctx *gin.Context, req *entity.DescribeSnapshotsRequest) (*entity.DescribeSnapshotsResponse, error) {
	return d.service.DescribeSnapshots(ctx, req)
}

// DescribeUsage 查询用量
func (d *Deployment) DescribeUsage(ctx *gin.Context, req *entity.DescribeUsageRequest) (*entity.DescribeUsageResponse, error) {
	return d.service.DescribeUsage(ctx, req)
}
