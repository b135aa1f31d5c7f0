package entity

// Plan 部署套餐
// 被部署引用后不可修改
type Plan struct {
	ID         string  `json:"id"`   // 套餐 ID：plan-{递增 ID}
	Name       string  `json:"name"` // 套餐名称，例如 small、medium
	VCPUs      uint64  `json:"vcpus"`
	MemoryMB   uint64  `json:"memory_mb"`
	DiskGB     uint64  `json:"disk_gb"`
	HourlyCost float64 `json:"hourly_cost"` // 每小时费用
	CreatedAt  string  `json:"created_at"`
}

// Demand 套餐对应的资源需求
func (p *Plan) Demand() ResourceDemand {
	return ResourceDemand{
		VCPUs:    p.VCPUs,
		MemoryMB: p.MemoryMB,
		DiskGB:   p.DiskGB,
	}
}

// CreatePlanRequest 创建套餐请求
type CreatePlanRequest struct {
	Name       string  `json:"name"`
	VCPUs      uint64  `json:"vcpus"`
	MemoryMB   uint64  `json:"memory_mb"`
	DiskGB     uint64  `json:"disk_gb"`
	HourlyCost float64 `json:"hourly_cost"`
}

// CreatePlanResponse 创建套餐响应
type CreatePlanResponse struct {
	Plan *Plan `json:"plan"`
}

// DescribePlansResponse 查询套餐响应
type DescribePlansResponse struct {
	Plans []Plan `json:"plans"`
}
