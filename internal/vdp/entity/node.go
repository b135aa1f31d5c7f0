package entity

// Node 计算节点
type Node struct {
	ID          string  `json:"id"`           // 节点 ID：node-{递增 ID}
	Name        string  `json:"name"`         // 节点名称
	TotalVCPUs  uint64  `json:"total_vcpus"`  // 物理 vCPU 总数
	TotalMemMB  uint64  `json:"total_mem_mb"` // 物理内存（MB）
	TotalDiskGB uint64  `json:"total_disk_gb"`
	CPURatio    float64 `json:"cpu_ratio"`    // CPU 超售比（>= 1.0）
	MemoryRatio float64 `json:"memory_ratio"` // 内存超售比（>= 1.0），磁盘不超售
	Active      bool    `json:"active"`       // 是否参与调度
	PoolName    string  `json:"pool_name"`    // 磁盘所在存储池
	CreatedAt   string  `json:"created_at"`
}

// NodeCapacity 节点容量快照
// 由调度器生成，available 为超售后的剩余可分配量
type NodeCapacity struct {
	NodeID           string `json:"node_id"`
	TotalVCPUs       uint64 `json:"total_vcpus"`
	TotalMemMB       uint64 `json:"total_mem_mb"`
	TotalDiskGB      uint64 `json:"total_disk_gb"`
	AvailableVCPUs   uint64 `json:"available_vcpus"`
	AvailableMemMB   uint64 `json:"available_mem_mb"`
	AvailableDiskGB  uint64 `json:"available_disk_gb"`
	RunningGuests    int    `json:"running_guests"`
	Active           bool   `json:"active"`
}

// ResourceDemand 一次放置请求的资源需求
type ResourceDemand struct {
	VCPUs    uint64 `json:"vcpus"`
	MemoryMB uint64 `json:"memory_mb"`
	DiskGB   uint64 `json:"disk_gb"`
}

// RegisterNodeRequest 注册计算节点请求
type RegisterNodeRequest struct {
	Name        string  `json:"name"`
	TotalVCPUs  uint64  `json:"total_vcpus"`
	TotalMemMB  uint64  `json:"total_mem_mb"`
	TotalDiskGB uint64  `json:"total_disk_gb"`
	CPURatio    float64 `json:"cpu_ratio,omitempty"`    // 默认 1.0
	MemoryRatio float64 `json:"memory_ratio,omitempty"` // 默认 1.0
	PoolName    string  `json:"pool_name,omitempty"`    // 默认 default
}

// RegisterNodeResponse 注册计算节点响应
type RegisterNodeResponse struct {
	Node *Node `json:"node"`
}

// DescribeNodesResponse 查询节点响应
type DescribeNodesResponse struct {
	Nodes []Node `json:"nodes"`
}

// DescribeCapacityResponse 集群容量响应
type DescribeCapacityResponse struct {
	Nodes []NodeCapacity `json:"nodes"`
}
