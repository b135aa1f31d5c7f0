package repository

import (
	"context"

	"github.com/jimyag/vdp/internal/vdp/repository/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuotaRepository 配额仓库接口
type QuotaRepository interface {
	Upsert(ctx context.Context, quota *model.Quota) error
	GetByUserID(ctx context.Context, userID string) (*model.Quota, error)
}

type quotaRepository struct {
	db *gorm.DB
}

// NewQuotaRepository 创建配额仓库
func NewQuotaRepository(db *gorm.DB) QuotaRepository {
	return &quotaRepository{db: db}
}

// Upsert 按用户覆盖写入配额
func (r *quotaRepository) Upsert(ctx context.Context, quota *model.Quota) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"max_vms", "max_vcpus", "max_memory_mb", "max_disk_gb", "updated_at",
		}),
	}).Create(quota).Error
}

// GetByUserID 根据用户 ID 获取配额
func (r *quotaRepository) GetByUserID(ctx context.Context, userID string) (*model.Quota, error) {
	var quota model.Quota
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&quota).Error; err != nil {
		return nil, err
	}
	return &quota, nil
}
