package entity

// UsageRecord 用量采样记录
// 由计量器按固定周期追加，创建后不可变
type UsageRecord struct {
	ID            uint64          `json:"id"`
	DeploymentID  string          `json:"deployment_id"`
	SampledAt     string          `json:"sampled_at"`
	ObservedState DeploymentState `json:"observed_state"` // 采样时观测到的状态
	VCPUs         uint64          `json:"vcpus"`
	MemoryMB      uint64          `json:"memory_mb"`
	DiskGB        uint64          `json:"disk_gb"`
	Cost          float64         `json:"cost"` // 本周期累计费用，stopped 为 0
}

// DescribeUsageRequest 查询用量记录请求
type DescribeUsageRequest struct {
	DeploymentID string `json:"deployment_id"`
}

// DescribeUsageResponse 查询用量记录响应
type DescribeUsageResponse struct {
	Records   []UsageRecord `json:"records"`
	TotalCost float64       `json:"total_cost"` // 所有记录的费用合计
}
