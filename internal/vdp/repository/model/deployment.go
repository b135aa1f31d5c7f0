package model

import (
	"time"

	"gorm.io/gorm"
)

// Deployment 部署表
type Deployment struct {
	ID             string         `gorm:"primaryKey;type:text;column:id" json:"id"`                                            // vd-{id}
	UserID         string         `gorm:"type:text;not null;index:idx_deployments_user_id;column:user_id" json:"user_id"`      // 归属用户
	PlanID         string         `gorm:"type:text;not null;column:plan_id" json:"plan_id"`                                    // 关联 plans.id
	TemplateID     string         `gorm:"type:text;not null;column:template_id" json:"template_id"`                            // 关联 templates.id
	NodeID         string         `gorm:"type:text;index:idx_deployments_node_id;column:node_id" json:"node_id"`               // 调度到的节点
	State          string         `gorm:"type:text;not null;index:idx_deployments_state;column:state" json:"state"`            // 状态机当前状态
	GuestUUID      string         `gorm:"type:text;column:guest_uuid" json:"guest_uuid"`                                       // Libvirt Domain UUID
	PrivateIP      string         `gorm:"type:text;column:private_ip" json:"private_ip"`                                       // DHCP 分配的内网 IP
	MAC            string         `gorm:"type:text;column:mac" json:"mac"`                                                     // 52:54:00 前缀
	SSHPort        int            `gorm:"type:integer;column:ssh_port" json:"ssh_port"`                                        // 节点上的 SSH 转发端口
	ConsolePort    int            `gorm:"type:integer;column:console_port" json:"console_port"`                                // 节点上的 VNC 转发端口
	AuthorizedKeys string         `gorm:"type:text;column:authorized_keys" json:"authorized_keys"`                             // 换行分隔的公钥
	PasswordHash   string         `gorm:"type:text;column:password_hash" json:"-"`                                             // 初始口令的 bcrypt 哈希，明文不落库
	NeedsAttention bool           `gorm:"type:integer;not null;default:0;column:needs_attention" json:"needs_attention"`       // 计量器发现状态漂移时置位
	CreatedAt      time.Time      `gorm:"type:datetime;not null;index:idx_deployments_created_at;column:created_at" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"type:datetime;index:idx_deployments_deleted_at;column:deleted_at" json:"deleted_at,omitempty"` // 软删除
}

// TableName 指定表名
func (Deployment) TableName() string {
	return "deployments"
}
