package model

import (
	"time"

	"gorm.io/gorm"
)

// Snapshot 快照表
type Snapshot struct {
	ID           string         `gorm:"primaryKey;type:text;column:id" json:"id"` // snap-{id}
	DeploymentID string         `gorm:"type:text;not null;index:idx_snapshots_deployment_id;column:deployment_id" json:"deployment_id"`
	Name         string         `gorm:"type:text;not null;column:name" json:"name"` // hypervisor 侧快照名
	Enabled      bool           `gorm:"type:integer;not null;default:1;column:enabled" json:"enabled"`
	CreatedAt    time.Time      `gorm:"type:datetime;not null;column:created_at" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"type:datetime;index:idx_snapshots_deleted_at;column:deleted_at" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (Snapshot) TableName() string {
	return "snapshots"
}
