package repository

import (
	"context"

	"github.com/jimyag/vdp/internal/vdp/repository/model"
	"gorm.io/gorm"
)

// SnapshotRepository 快照仓库接口
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *model.Snapshot) error
	GetByID(ctx context.Context, id string) (*model.Snapshot, error)
	ListByDeployment(ctx context.Context, deploymentID string) ([]*model.Snapshot, error)
	Update(ctx context.Context, snapshot *model.Snapshot) error
	DisableByDeployment(ctx context.Context, deploymentID string) error
	Delete(ctx context.Context, id string) error
}

type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository 创建快照仓库
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Create 创建快照记录
func (r *snapshotRepository) Create(ctx context.Context, snapshot *model.Snapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

// GetByID 根据 ID 获取快照
func (r *snapshotRepository) GetByID(ctx context.Context, id string) (*model.Snapshot, error) {
	var snapshot model.Snapshot
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&snapshot).Error; err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ListByDeployment 列出某部署的快照
func (r *snapshotRepository) ListByDeployment(ctx context.Context, deploymentID string) ([]*model.Snapshot, error) {
	var snapshots []*model.Snapshot
	if err := r.db.WithContext(ctx).
		Where("deployment_id = ?", deploymentID).
		Order("created_at").
		Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

// Update 更新快照
func (r *snapshotRepository) Update(ctx context.Context, snapshot *model.Snapshot) error {
	return r.db.WithContext(ctx).Save(snapshot).Error
}

// DisableByDeployment 部署删除后批量失效其快照
func (r *snapshotRepository) DisableByDeployment(ctx context.Context, deploymentID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Snapshot{}).
		Where("deployment_id = ?", deploymentID).
		Update("enabled", false).Error
}

// Delete 软删除快照
func (r *snapshotRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Snapshot{}, "id = ?", id).Error
}
