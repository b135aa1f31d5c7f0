package entity

// Quota 用户资源配额
// 与该用户所有非终态部署的资源总和比较
type Quota struct {
	UserID      string `json:"user_id"`
	MaxVMs      uint64 `json:"max_vms"`
	MaxVCPUs    uint64 `json:"max_vcpus"`
	MaxMemoryMB uint64 `json:"max_memory_mb"`
	MaxDiskGB   uint64 `json:"max_disk_gb"`
}

// QuotaUsage 用户当前已占用的资源
type QuotaUsage struct {
	VMs      uint64 `json:"vms"`
	VCPUs    uint64 `json:"vcpus"`
	MemoryMB uint64 `json:"memory_mb"`
	DiskGB   uint64 `json:"disk_gb"`
}

// Add 叠加一个需求
func (u QuotaUsage) Add(d ResourceDemand) QuotaUsage {
	return QuotaUsage{
		VMs:      u.VMs + 1,
		VCPUs:    u.VCPUs + d.VCPUs,
		MemoryMB: u.MemoryMB + d.MemoryMB,
		DiskGB:   u.DiskGB + d.DiskGB,
	}
}

// Exceeds 是否超出配额
func (u QuotaUsage) Exceeds(q *Quota) bool {
	return u.VMs > q.MaxVMs ||
		u.VCPUs > q.MaxVCPUs ||
		u.MemoryMB > q.MaxMemoryMB ||
		u.DiskGB > q.MaxDiskGB
}

// SetQuotaRequest 设置用户配额请求，按用户覆盖写入
type SetQuotaRequest struct {
	UserID      string `json:"user_id"`
	MaxVMs      uint64 `json:"max_vms"`
	MaxVCPUs    uint64 `json:"max_vcpus"`
	MaxMemoryMB uint64 `json:"max_memory_mb"`
	MaxDiskGB   uint64 `json:"max_disk_gb"`
}

// SetQuotaResponse 设置用户配额响应
type SetQuotaResponse struct {
	Quota *Quota `json:"quota"`
}

// DescribeQuotaRequest 查询用户配额请求
type DescribeQuotaRequest struct {
	UserID string `json:"user_id"`
}

// DescribeQuotaResponse 查询用户配额响应
// Quota 为空表示未设置配额，不限制
type DescribeQuotaResponse struct {
	Quota *Quota `json:"quota,omitempty"`
}
