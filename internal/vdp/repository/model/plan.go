package model

import (
	"time"

	"gorm.io/gorm"
)

// Plan 套餐表
type Plan struct {
	ID         string         `gorm:"primaryKey;type:text;column:id" json:"id"` // plan-{id}
	Name       string         `gorm:"type:text;not null;uniqueIndex:idx_plans_name;column:name" json:"name"`
	VCPUs      uint64         `gorm:"type:integer;not null;column:vcpus" json:"vcpus"`
	MemoryMB   uint64         `gorm:"type:integer;not null;column:memory_mb" json:"memory_mb"`
	DiskGB     uint64         `gorm:"type:integer;not null;column:disk_gb" json:"disk_gb"`
	HourlyCost float64        `gorm:"type:real;not null;column:hourly_cost" json:"hourly_cost"`
	CreatedAt  time.Time      `gorm:"type:datetime;not null;column:created_at" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"type:datetime;index:idx_plans_deleted_at;column:deleted_at" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (Plan) TableName() string {
	return "plans"
}
