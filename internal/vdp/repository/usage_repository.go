package repository

import (
	"context"

	"github.com/jimyag/vdp/internal/vdp/repository/model"
	"gorm.io/gorm"
)

// UsageRepository 用量记录仓库接口
// 记录只追加，不提供更新和删除
type UsageRepository interface {
	Create(ctx context.Context, record *model.UsageRecord) error
	ListByDeployment(ctx context.Context, deploymentID string) ([]*model.UsageRecord, error)
}

type usageRepository struct {
	db *gorm.DB
}

// NewUsageRepository 创建用量记录仓库
func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// Create 追加一条用量记录
func (r *usageRepository) Create(ctx context.Context, record *model.UsageRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// ListByDeployment 按采样时间列出某部署的用量记录
func (r *usageRepository) ListByDeployment(ctx context.Context, deploymentID string) ([]*model.UsageRecord, error) {
	var records []*model.UsageRecord
	if err := r.db.WithContext(ctx).
		Where("deployment_id = ?", deploymentID).
		Order("sampled_at").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
