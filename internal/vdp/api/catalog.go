package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/vdp/internal/vdp/entity"
	"github.com/jimyag/vdp/pkg/ginx"
)

// CatalogServiceInterface 定义节点、套餐、模板和配额管理的接口
type CatalogServiceInterface interface {
	RegisterNode(ctx context.Context, req *entity.RegisterNodeRequest) (*entity.RegisterNodeResponse, error)
	DescribeNodes(ctx context.Context) (*entity.DescribeNodesResponse, error)
	DescribeCapacity(ctx context.Context) (*entity.DescribeCapacityResponse, error)
	CreatePlan(ctx context.Context, req *entity.CreatePlanRequest) (*entity.CreatePlanResponse, error)
	DescribePlans(ctx context.Context) (*entity.DescribePlansResponse, error)
	RegisterTemplate(ctx context.Context, req *entity.RegisterTemplateRequest) (*entity.RegisterTemplateResponse, error)
	DescribeTemplates(ctx context.Context) (*entity.DescribeTemplatesResponse, error)
	SetQuota(ctx context.Context, req *entity.SetQuotaRequest) (*entity.SetQuotaResponse, error)
	DescribeQuota(ctx context.Context, req *entity.DescribeQuotaRequest) (*entity.DescribeQuotaResponse, error)
}

// Catalog 节点、套餐、模板和配额的 HTTP handler
type Catalog struct {
	service CatalogServiceInterface
}

// NewCatalog 创建目录 handler
func NewCatalog(service CatalogServiceInterface) *Catalog {
	return &Catalog{service: service}
}

// RegisterRoutes 注册目录相关路由
func (c *Catalog) RegisterRoutes(router *gin.RouterGroup) {
	nodeRouter := router.Group("/nodes")
	nodeRouter.POST("/register", ginx.Handle(c.RegisterNode))
	nodeRouter.POST("/describe", ginx.HandleNoReq(c.DescribeNodes))

	router.POST("/capacity/describe", ginx.HandleNoReq(c.DescribeCapacity))

	planRouter := router.Group("/plans")
	planRouter.POST("/create", ginx.Handle(c.CreatePlan))
	planRouter.POST("/describe", ginx.HandleNoReq(c.DescribePlans))

	templateRouter := router.Group("/templates")
	templateRouter.POST("/register", ginx.Handle(c.RegisterTemplate))
	templateRouter.POST("/describe", ginx.HandleNoReq(c.DescribeTemplates))

	quotaRouter := router.Group("/quotas")
	quotaRouter.POST("/set", ginx.Handle(c.SetQuota))
	quotaRouter.POST("/describe", ginx.Handle(c.DescribeQuota))
}

// RegisterNode 注册计算节点
func (c *Catalog) RegisterNode(ctx *gin.Context, req *entity.RegisterNodeRequest) (*entity.RegisterNodeResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("name", req.Name).Msg("RegisterNode called")

	resp, err := c.service.RegisterNode(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to register node")
		return nil, err
	}
	return resp, nil
}

// DescribeNodes 查询节点
func (c *Catalog) DescribeNodes(ctx *gin.Context) (*entity.DescribeNodesResponse, error) {
	return c.service.DescribeNodes(ctx)
}

// DescribeCapacity 查询集群容量
func (c *Catalog) DescribeCapacity(ctx *gin.Context) (*entity.DescribeCapacityResponse, error) {
	return c.service.DescribeCapacity(ctx)
}

// CreatePlan 创建套餐
func (c *Catalog) CreatePlan(ctx *gin.Context, req *entity.CreatePlanRequest) (*entity.CreatePlanResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("name", req.Name).Msg("CreatePlan called")

	resp, err := c.service.CreatePlan(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create plan")
		return nil, err
	}
	return resp, nil
}

// DescribePlans 查询套餐
func (c *Catalog) DescribePlans(ctx *gin.Context) (*entity.DescribePlansResponse, error) {
	return c.service.DescribePlans(ctx)
}

// RegisterTemplate 注册系统模板
func (c *Catalog) RegisterTemplate(ctx *gin.Context, req *entity.RegisterTemplateRequest) (*entity.RegisterTemplateResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("name", req.Name).Msg("RegisterTemplate called")

	resp, err := c.service.RegisterTemplate(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to register template")
		return nil, err
	}
	return resp, nil
}

// DescribeTemplates 查询系统模板
func (c *Catalog) DescribeTemplates(ctx *gin.Context) (*entity.DescribeTemplatesResponse, error) {
	return c.service.DescribeTemplates(ctx)
}

// SetQuota 设置用户配额
func (c *Catalog) SetQuota(ctx *gin.Context, req *entity.SetQuotaRequest) (*entity.SetQuotaResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("user_id", req.UserID).Msg("SetQuota called")

	resp, err := c.service.SetQuota(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to set quota")
		return nil, err
	}
	return resp, nil
}

// DescribeQuota 查询用户配额
func (c *Catalog) DescribeQuota(ctx *gin.Context, req *entity.DescribeQuotaRequest) (*entity.DescribeQuotaResponse, error) {
	return c.service.DescribeQuota(ctx, req)
}
