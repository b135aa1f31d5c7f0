package model

import (
	"time"
)

// Quota 用户配额表
// 不做软删除，配额按用户覆盖写入
type Quota struct {
	UserID      string    `gorm:"primaryKey;type:text;column:user_id" json:"user_id"`
	MaxVMs      uint64    `gorm:"type:integer;not null;column:max_vms" json:"max_vms"`
	MaxVCPUs    uint64    `gorm:"type:integer;not null;column:max_vcpus" json:"max_vcpus"`
	MaxMemoryMB uint64    `gorm:"type:integer;not null;column:max_memory_mb" json:"max_memory_mb"`
	MaxDiskGB   uint64    `gorm:"type:integer;not null;column:max_disk_gb" json:"max_disk_gb"`
	CreatedAt   time.Time `gorm:"type:datetime;not null;column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
}

// TableName 指定表名
func (Quota) TableName() string {
	return "quotas"
}
