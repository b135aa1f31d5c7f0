package repository

import (
	"context"

	"github.com/jimyag/vdp/internal/vdp/repository/model"
	"gorm.io/gorm"
)

// TemplateRepository 系统模板仓库接口
type TemplateRepository interface {
	Create(ctx context.Context, template *model.Template) error
	GetByID(ctx context.Context, id string) (*model.Template, error)
	GetByName(ctx context.Context, name string) (*model.Template, error)
	List(ctx context.Context) ([]*model.Template, error)
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository 创建系统模板仓库
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

// Create 创建模板
func (r *templateRepository) Create(ctx context.Context, template *model.Template) error {
	return r.db.WithContext(ctx).Create(template).Error
}

// GetByID 根据 ID 获取模板
func (r *templateRepository) GetByID(ctx context.Context, id string) (*model.Template, error) {
	var template model.Template
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&template).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// GetByName 根据名称获取模板
func (r *templateRepository) GetByName(ctx context.Context, name string) (*model.Template, error) {
	var template model.Template
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&template).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// List 列出所有模板
func (r *templateRepository) List(ctx context.Context) ([]*model.Template, error) {
	var templates []*model.Template
	if err := r.db.WithContext(ctx).Order("created_at").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}
