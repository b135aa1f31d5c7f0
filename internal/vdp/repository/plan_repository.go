package repository

import (
	"context"

	"github.com/jimyag/vdp/internal/vdp/repository/model"
	"gorm.io/gorm"
)

// PlanRepository 套餐仓库接口
type PlanRepository interface {
	Create(ctx context.Context, plan *model.Plan) error
	GetByID(ctx context.Context, id string) (*model.Plan, error)
	GetByName(ctx context.Context, name string) (*model.Plan, error)
	List(ctx context.Context) ([]*model.Plan, error)
}

type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository 创建套餐仓库
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// Create 创建套餐
func (r *planRepository) Create(ctx context.Context, plan *model.Plan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

// GetByID 根据 ID 获取套餐
func (r *planRepository) GetByID(ctx context.Context, id string) (*model.Plan, error) {
	var plan model.Plan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByName 根据名称获取套餐
func (r *planRepository) GetByName(ctx context.Context, name string) (*model.Plan, error) {
	var plan model.Plan
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// List 列出所有套餐
func (r *planRepository) List(ctx context.Context) ([]*model.Plan, error) {
	var plans []*model.Plan
	if err := r.db.WithContext(ctx).Order("created_at").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}
