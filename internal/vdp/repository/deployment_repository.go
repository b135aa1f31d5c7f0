package repository

import (
	"context"

	"github.com/jimyag/vdp/internal/vdp/repository/model"
	"gorm.io/gorm"
)

// DeploymentRepository 部署仓库接口
type DeploymentRepository interface {
	Create(ctx context.Context, deployment *model.Deployment) error
	GetByID(ctx context.Context, id string) (*model.Deployment, error)
	List(ctx context.Context, filters map[string]interface{}) ([]*model.Deployment, error)
	ListNonTerminal(ctx context.Context) ([]*model.Deployment, error)
	ListNonTerminalByUser(ctx context.Context, userID string) ([]*model.Deployment, error)
	Update(ctx context.Context, deployment *model.Deployment) error
	UpdateState(ctx context.Context, id string, state string) error
	Delete(ctx context.Context, id string) error
	GetByIDWithDeleted(ctx context.Context, id string) (*model.Deployment, error)
}

type deploymentRepository struct {
	db *gorm.DB
}

// NewDeploymentRepository 创建部署仓库
func NewDeploymentRepository(db *gorm.DB) DeploymentRepository {
	return &deploymentRepository{db: db}
}

// terminalStates 终态列表，终态部署不占用配额和容量
var terminalStates = []string{"deleted", "failed"}

// Create 创建部署
func (r *deploymentRepository) Create(ctx context.Context, deployment *model.Deployment) error {
	return r.db.WithContext(ctx).Create(deployment).Error
}

// GetByID 根据 ID 获取部署（自动过滤已删除）
func (r *deploymentRepository) GetByID(ctx context.Context, id string) (*model.Deployment, error) {
	var deployment model.Deployment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&deployment).Error; err != nil {
		return nil, err
	}
	return &deployment, nil
}

// List 列出部署
func (r *deploymentRepository) List(ctx context.Context, filters map[string]interface{}) ([]*model.Deployment, error) {
	var deployments []*model.Deployment
	query := r.db.WithContext(ctx).Model(&model.Deployment{})

	// 应用过滤器
	if userID, ok := filters["user_id"]; ok {
		query = query.Where("user_id = ?", userID)
	}
	if state, ok := filters["state"]; ok {
		query = query.Where("state = ?", state)
	}
	if nodeID, ok := filters["node_id"]; ok {
		query = query.Where("node_id = ?", nodeID)
	}

	if err := query.Order("created_at").Find(&deployments).Error; err != nil {
		return nil, err
	}

	return deployments, nil
}

// ListNonTerminal 列出所有非终态部署（启动时恢复容量、端口占用用）
func (r *deploymentRepository) ListNonTerminal(ctx context.Context) ([]*model.Deployment, error) {
	var deployments []*model.Deployment
	if err := r.db.WithContext(ctx).
		Where("state NOT IN ?", terminalStates).
		Find(&deployments).Error; err != nil {
		return nil, err
	}
	return deployments, nil
}

// ListNonTerminalByUser 列出某用户的非终态部署（配额统计用）
func (r *deploymentRepository) ListNonTerminalByUser(ctx context.Context, userID string) ([]*model.Deployment, error) {
	var deployments []*model.Deployment
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND state NOT IN ?", userID, terminalStates).
		Find(&deployments).Error; err != nil {
		return nil, err
	}
	return deployments, nil
}

// Update 更新部署
func (r *deploymentRepository) Update(ctx context.Context, deployment *model.Deployment) error {
	return r.db.WithContext(ctx).Save(deployment).Error
}

// UpdateState 只更新状态字段
func (r *deploymentRepository) UpdateState(ctx context.Context, id string, state string) error {
	return r.db.WithContext(ctx).
		Model(&model.Deployment{}).
		Where("id = ?", id).
		Update("state", state).Error
}

// Delete 软删除部署
func (r *deploymentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Deployment{}, "id = ?", id).Error
}

// GetByIDWithDeleted 根据 ID 获取部署（包含已删除的记录）
func (r *deploymentRepository) GetByIDWithDeleted(ctx context.Context, id string) (*model.Deployment, error) {
	var deployment model.Deployment
	if err := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).First(&deployment).Error; err != nil {
		return nil, err
	}
	return &deployment, nil
}
