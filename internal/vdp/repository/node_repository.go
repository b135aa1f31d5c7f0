package repository

import (
	"context"

	"github.com/jimyag/vdp/internal/vdp/repository/model"
	"gorm.io/gorm"
)

// NodeRepository 节点仓库接口
type NodeRepository interface {
	Create(ctx context.Context, node *model.Node) error
	GetByID(ctx context.Context, id string) (*model.Node, error)
	GetByName(ctx context.Context, name string) (*model.Node, error)
	List(ctx context.Context) ([]*model.Node, error)
	ListActive(ctx context.Context) ([]*model.Node, error)
	Update(ctx context.Context, node *model.Node) error
	Delete(ctx context.Context, id string) error
}

type nodeRepository struct {
	db *gorm.DB
}

// NewNodeRepository 创建节点仓库
func NewNodeRepository(db *gorm.DB) NodeRepository {
	return &nodeRepository{db: db}
}

// Create 创建节点
func (r *nodeRepository) Create(ctx context.Context, node *model.Node) error {
	return r.db.WithContext(ctx).Create(node).Error
}

// GetByID 根据 ID 获取节点
func (r *nodeRepository) GetByID(ctx context.Context, id string) (*model.Node, error) {
	var node model.Node
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&node).Error; err != nil {
		return nil, err
	}
	return &node, nil
}

// GetByName 根据名称获取节点
func (r *nodeRepository) GetByName(ctx context.Context, name string) (*model.Node, error) {
	var node model.Node
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&node).Error; err != nil {
		return nil, err
	}
	return &node, nil
}

// List 列出所有节点
func (r *nodeRepository) List(ctx context.Context) ([]*model.Node, error) {
	var nodes []*model.Node
	if err := r.db.WithContext(ctx).Order("id").Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

// ListActive 列出参与调度的节点
func (r *nodeRepository) ListActive(ctx context.Context) ([]*model.Node, error) {
	var nodes []*model.Node
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

// Update 更新节点
func (r *nodeRepository) Update(ctx context.Context, node *model.Node) error {
	return r.db.WithContext(ctx).Save(node).Error
}

// Delete 软删除节点
func (r *nodeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Node{}, "id = ?", id).Error
}
