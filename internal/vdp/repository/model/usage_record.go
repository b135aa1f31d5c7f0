package model

import (
	"time"
)

// UsageRecord 用量记录表
// 只追加，创建后不修改不删除
type UsageRecord struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	DeploymentID  string    `gorm:"type:text;not null;index:idx_usage_records_deployment_id;column:deployment_id" json:"deployment_id"`
	SampledAt     time.Time `gorm:"type:datetime;not null;index:idx_usage_records_sampled_at;column:sampled_at" json:"sampled_at"`
	ObservedState string    `gorm:"type:text;not null;column:observed_state" json:"observed_state"`
	VCPUs         uint64    `gorm:"type:integer;not null;column:vcpus" json:"vcpus"`
	MemoryMB      uint64    `gorm:"type:integer;not null;column:memory_mb" json:"memory_mb"`
	DiskGB        uint64    `gorm:"type:integer;not null;column:disk_gb" json:"disk_gb"`
	Cost          float64   `gorm:"type:real;not null;column:cost" json:"cost"`
	CreatedAt     time.Time `gorm:"type:datetime;not null;column:created_at" json:"created_at"`
}

// TableName 指定表名
func (UsageRecord) TableName() string {
	return "usage_records"
}
