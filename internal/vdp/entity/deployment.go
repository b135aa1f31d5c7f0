// Package entity 定义业务实体
package entity

// DeploymentState 部署生命周期状态
type DeploymentState string

const (
	DeploymentStatePending      DeploymentState = "pending"      // 已接受，尚无副作用
	DeploymentStateReserving    DeploymentState = "reserving"    // 配额与节点预留中
	DeploymentStateProvisioning DeploymentState = "provisioning" // 磁盘与启动配置创建中
	DeploymentStateDefining     DeploymentState = "defining"     // 端口分配与客户机定义中
	DeploymentStateStarting     DeploymentState = "starting"     // 已启动，等待网络地址
	DeploymentStateRunning      DeploymentState = "running"      // 运行中，可达
	DeploymentStateStopped      DeploymentState = "stopped"      // 已停止，端口保留
	DeploymentStateDeleting     DeploymentState = "deleting"     // 删除中
	DeploymentStateDeleted      DeploymentState = "deleted"      // 终态：已删除
	DeploymentStateFailed       DeploymentState = "failed"       // 终态：失败，已回滚
)

// IsTerminal 是否为终态
func (s DeploymentState) IsTerminal() bool {
	return s == DeploymentStateDeleted || s == DeploymentStateFailed
}

// Deployment 虚拟机部署
type Deployment struct {
	ID             string          `json:"id"`              // 部署 ID：vd-{递增 ID}
	UserID         string          `json:"user_id"`         // 所属用户
	PlanID         string          `json:"plan_id"`         // 套餐 ID
	TemplateID     string          `json:"template_id"`     // 系统模板 ID
	NodeID         string          `json:"node_id"`         // 所在计算节点
	State          DeploymentState `json:"state"`           // 生命周期状态
	GuestUUID      string          `json:"guest_uuid"`      // 客户机 UUID
	PrivateIP      string          `json:"private_ip"`      // 分配的私有 IP
	MAC            string          `json:"mac"`             // 生成的 MAC 地址
	SSHPort        int             `json:"ssh_port"`        // 分配的 SSH 端口
	ConsolePort    int             `json:"console_port"`    // 分配的控制台端口
	AuthorizedKeys []string        `json:"authorized_keys"` // 授权的 SSH 公钥
	NeedsAttention bool            `json:"needs_attention"` // 与 hypervisor 实际状态存在漂移
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

// CreateDeploymentRequest 创建部署请求
type CreateDeploymentRequest struct {
	UserID         string   `json:"user_id"`                   // 用户 ID（必填）
	PlanID         string   `json:"plan_id"`                   // 套餐 ID（必填）
	TemplateID     string   `json:"template_id"`               // 系统模板 ID（必填）
	Name           string   `json:"name,omitempty"`            // 主机名（可选，默认部署 ID）
	AuthorizedKeys []string `json:"authorized_keys,omitempty"` // SSH 公钥列表（可选）
}

// CreateDeploymentResponse 创建部署响应
type CreateDeploymentResponse struct {
	Deployment *Deployment `json:"deployment"`
	// InitialPassword 初始密码明文，仅在创建响应中返回一次，持久化的是 bcrypt 哈希
	InitialPassword string `json:"initial_password,omitempty"`
}

// StartDeploymentRequest 启动部署请求
type StartDeploymentRequest struct {
	DeploymentID string `json:"deployment_id"`
}

// StopDeploymentRequest 停止部署请求
type StopDeploymentRequest struct {
	DeploymentID string `json:"deployment_id"`
}

// TerminateDeploymentRequest 删除部署请求
type TerminateDeploymentRequest struct {
	DeploymentID string `json:"deployment_id"`
}

// DeploymentStateChange 状态变更结果
type DeploymentStateChange struct {
	DeploymentID  string          `json:"deployment_id"`
	PreviousState DeploymentState `json:"previous_state"`
	CurrentState  DeploymentState `json:"current_state"`
}

// DescribeDeploymentsRequest 查询部署请求
type DescribeDeploymentsRequest struct {
	DeploymentIDs []string `json:"deployment_ids,omitempty"` // 指定 ID 列表（可选）
	UserID        string   `json:"user_id,omitempty"`        // 按用户过滤（可选）
}

// DescribeDeploymentsResponse 查询部署响应
type DescribeDeploymentsResponse struct {
	Deployments []Deployment `json:"deployments"`
}
