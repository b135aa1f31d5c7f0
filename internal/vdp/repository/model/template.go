package model

import (
	"time"

	"gorm.io/gorm"
)

// Template 系统模板表
type Template struct {
	ID            string         `gorm:"primaryKey;type:text;column:id" json:"id"` // tmpl-{id}
	Name          string         `gorm:"type:text;not null;uniqueIndex:idx_templates_name;column:name" json:"name"`
	BackingPath   string         `gorm:"type:text;not null;column:backing_path" json:"backing_path"`     // 基础镜像路径
	BackingFormat string         `gorm:"type:text;not null;column:backing_format" json:"backing_format"` // qcow2、raw
	OSFamily      string         `gorm:"type:text;not null;column:os_family" json:"os_family"`
	CloudInit     bool           `gorm:"type:integer;not null;default:1;column:cloud_init" json:"cloud_init"`
	CreatedAt     time.Time      `gorm:"type:datetime;not null;column:created_at" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"type:datetime;index:idx_templates_deleted_at;column:deleted_at" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (Template) TableName() string {
	return "templates"
}
