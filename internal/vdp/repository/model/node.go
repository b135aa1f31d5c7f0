package model

import (
	"time"

	"gorm.io/gorm"
)

// Node 计算节点表
type Node struct {
	ID            string         `gorm:"primaryKey;type:text;column:id" json:"id"`               // node-{id}
	Name          string         `gorm:"type:text;not null;uniqueIndex:idx_nodes_name;column:name" json:"name"`
	TotalVCPUs    uint64         `gorm:"type:integer;not null;column:total_vcpus" json:"total_vcpus"`
	TotalMemoryMB uint64         `gorm:"type:integer;not null;column:total_memory_mb" json:"total_memory_mb"`
	TotalDiskGB   uint64         `gorm:"type:integer;not null;column:total_disk_gb" json:"total_disk_gb"`
	CPURatio      float64        `gorm:"type:real;not null;default:1;column:cpu_ratio" json:"cpu_ratio"`       // CPU 超售比
	MemoryRatio   float64        `gorm:"type:real;not null;default:1;column:memory_ratio" json:"memory_ratio"` // 内存超售比
	PoolName      string         `gorm:"type:text;not null;column:pool_name" json:"pool_name"`                 // 节点上的存储池名称
	Active        bool           `gorm:"type:integer;not null;default:1;column:active" json:"active"`          // 下线节点不参与调度
	CreatedAt     time.Time      `gorm:"type:datetime;not null;column:created_at" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"type:datetime;index:idx_nodes_deleted_at;column:deleted_at" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (Node) TableName() string {
	return "nodes"
}
