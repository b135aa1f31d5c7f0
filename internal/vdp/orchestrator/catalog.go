package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jimyag/vdp/internal/vdp/entity"
	"github.com/jimyag/vdp/internal/vdp/repository/model"
	"github.com/jimyag/vdp/pkg/apierror"
)

// RegisterNode 注册计算节点并加入容量账本
func (o *Orchestrator) RegisterNode(ctx context.Context, req *entity.RegisterNodeRequest) (*entity.RegisterNodeResponse, error) {
	if req.Name == "" || req.TotalVCPUs == 0 || req.TotalMemMB == 0 || req.TotalDiskGB == 0 {
		return nil, apierror.WrapError(apierror.ErrInvalidParameterValue,
			"name, total_vcpus, total_mem_mb and total_disk_gb are required", nil)
	}

	id, err := o.idgen.GenerateNodeID()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "generate node id", err)
	}

	cpuRatio := req.CPURatio
	if cpuRatio < 1.0 {
		cpuRatio = 1.0
	}
	memRatio := req.MemoryRatio
	if memRatio < 1.0 {
		memRatio = 1.0
	}
	poolName := req.PoolName
	if poolName == "" {
		poolName = "default"
	}

	now := time.Now()
	row := &model.Node{
		ID:            id,
		Name:          req.Name,
		TotalVCPUs:    req.TotalVCPUs,
		TotalMemoryMB: req.TotalMemMB,
		TotalDiskGB:   req.TotalDiskGB,
		CPURatio:      cpuRatio,
		MemoryRatio:   memRatio,
		PoolName:      poolName,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := o.nodeRepo.Create(ctx, row); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "persist node", err)
	}

	node := toNodeEntity(row)
	o.capacity.SetNode(*node)

	zerolog.Ctx(ctx).Info().
		Str("node_id", id).
		Str("name", req.Name).
		Uint64("total_vcpus", req.TotalVCPUs).
		Msg("node registered")
	return &entity.RegisterNodeResponse{Node: node}, nil
}

// DescribeNodes 查询节点
func (o *Orchestrator) DescribeNodes(ctx context.Context) (*entity.DescribeNodesResponse, error) {
	rows, err := o.nodeRepo.List(ctx)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "list nodes", err)
	}

	resp := &entity.DescribeNodesResponse{Nodes: []entity.Node{}}
	for _, row := range rows {
		resp.Nodes = append(resp.Nodes, *toNodeEntity(row))
	}
	return resp, nil
}

// DescribeCapacity 查询各节点容量快照
func (o *Orchestrator) DescribeCapacity(ctx context.Context) (*entity.DescribeCapacityResponse, error) {
	return &entity.DescribeCapacityResponse{Nodes: o.capacity.Capacity()}, nil
}

// CreatePlan 创建套餐
func (o *Orchestrator) CreatePlan(ctx context.Context, req *entity.CreatePlanRequest) (*entity.CreatePlanResponse, error) {
	if req.Name == "" || req.VCPUs == 0 || req.MemoryMB == 0 || req.DiskGB == 0 {
		return nil, apierror.WrapError(apierror.ErrInvalidParameterValue,
			"name, vcpus, memory_mb and disk_gb are required", nil)
	}

	id, err := o.idgen.GeneratePlanID()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "generate plan id", err)
	}

	now := time.Now()
	row := &model.Plan{
		ID:         id,
		Name:       req.Name,
		VCPUs:      req.VCPUs,
		MemoryMB:   req.MemoryMB,
		DiskGB:     req.DiskGB,
		HourlyCost: req.HourlyCost,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := o.planRepo.Create(ctx, row); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "persist plan", err)
	}

	return &entity.CreatePlanResponse{Plan: toPlanEntity(row)}, nil
}

// DescribePlans 查询套餐
func (o *Orchestrator) DescribePlans(ctx context.Context) (*entity.DescribePlansResponse, error) {
	rows, err := o.planRepo.List(ctx)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "list plans", err)
	}

	resp := &entity.DescribePlansResponse{Plans: []entity.Plan{}}
	for _, row := range rows {
		resp.Plans = append(resp.Plans, *toPlanEntity(row))
	}
	return resp, nil
}

// RegisterTemplate 注册系统模板
func (o *Orchestrator) RegisterTemplate(ctx context.Context, req *entity.RegisterTemplateRequest) (*entity.RegisterTemplateResponse, error) {
	if req.Name == "" || req.BackingPath == "" {
		return nil, apierror.WrapError(apierror.ErrInvalidParameterValue,
			"name and backing_path are required", nil)
	}

	id, err := o.idgen.GenerateTemplateID()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "generate template id", err)
	}

	format := req.BackingFormat
	if format == "" {
		format = "qcow2"
	}
	family := req.OSFamily
	if family == "" {
		family = "linux"
	}

	now := time.Now()
	row := &model.Template{
		ID:            id,
		Name:          req.Name,
		BackingPath:   req.BackingPath,
		BackingFormat: format,
		OSFamily:      family,
		CloudInit:     req.CloudInit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := o.templateRepo.Create(ctx, row); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "persist template", err)
	}

	return &entity.RegisterTemplateResponse{Template: toTemplateEntity(row)}, nil
}

// DescribeTemplates 查询系统模板
func (o *Orchestrator) DescribeTemplates(ctx context.Context) (*entity.DescribeTemplatesResponse, error) {
	rows, err := o.templateRepo.List(ctx)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "list templates", err)
	}

	resp := &entity.DescribeTemplatesResponse{Templates: []entity.OSTemplate{}}
	for _, row := range rows {
		resp.Templates = append(resp.Templates, *toTemplateEntity(row))
	}
	return resp, nil
}

// SetQuota 设置用户配额，按用户覆盖写入
// 收紧配额不影响已存在的部署，只约束后续创建
func (o *Orchestrator) SetQuota(ctx context.Context, req *entity.SetQuotaRequest) (*entity.SetQuotaResponse, error) {
	if req.UserID == "" {
		return nil, apierror.WrapError(apierror.ErrInvalidParameterValue, "user_id is required", nil)
	}

	now := time.Now()
	row := &model.Quota{
		UserID:      req.UserID,
		MaxVMs:      req.MaxVMs,
		MaxVCPUs:    req.MaxVCPUs,
		MaxMemoryMB: req.MaxMemoryMB,
		MaxDiskGB:   req.MaxDiskGB,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := o.quotaRepo.Upsert(ctx, row); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "persist quota", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("user_id", req.UserID).
		Uint64("max_vms", req.MaxVMs).
		Msg("quota updated")
	return &entity.SetQuotaResponse{Quota: toQuotaEntity(row)}, nil
}

// DescribeQuota 查询用户配额，未设置时返回空配额
func (o *Orchestrator) DescribeQuota(ctx context.Context, req *entity.DescribeQuotaRequest) (*entity.DescribeQuotaResponse, error) {
	if req.UserID == "" {
		return nil, apierror.WrapError(apierror.ErrInvalidParameterValue, "user_id is required", nil)
	}

	row, err := o.quotaRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.DescribeQuotaResponse{}, nil
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "load quota", err)
	}
	return &entity.DescribeQuotaResponse{Quota: toQuotaEntity(row)}, nil
}

// DescribeUsage 查询某部署的用量记录
func (o *Orchestrator) DescribeUsage(ctx context.Context, req *entity.DescribeUsageRequest) (*entity.DescribeUsageResponse, error) {
	if _, err := o.getDeployment(ctx, req.DeploymentID); err != nil {
		// 已删除的部署仍可查历史用量
		if _, derr := o.deploymentRepo.GetByIDWithDeleted(ctx, req.DeploymentID); derr != nil {
			return nil, err
		}
	}

	rows, err := o.usageRepo.ListByDeployment(ctx, req.DeploymentID)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "list usage records", err)
	}

	resp := &entity.DescribeUsageResponse{Records: []entity.UsageRecord{}}
	for _, row := range rows {
		resp.Records = append(resp.Records, *toUsageRecordEntity(row))
		resp.TotalCost += row.Cost
	}
	return resp, nil
}
