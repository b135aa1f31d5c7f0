package entity

// Snapshot 部署快照
type Snapshot struct {
	ID           string `json:"id"`            // 快照 ID：snap-{递增 ID}
	DeploymentID string `json:"deployment_id"` // 所属部署
	Name         string `json:"name"`          // 快照名称（hypervisor 侧标识）
	Enabled      bool   `json:"enabled"`       // 部署删除后置为 false
	CreatedAt    string `json:"created_at"`
}

// CreateSnapshotRequest 创建快照请求
type CreateSnapshotRequest struct {
	DeploymentID string `json:"deployment_id"`
	Name         string `json:"name,omitempty"` // 可选，默认快照 ID
}

// CreateSnapshotResponse 创建快照响应
type CreateSnapshotResponse struct {
	Snapshot *Snapshot `json:"snapshot"`
}

// RestoreSnapshotRequest 恢复快照请求
type RestoreSnapshotRequest struct {
	SnapshotID string `json:"snapshot_id"`
}

// DescribeSnapshotsRequest 查询快照请求
type DescribeSnapshotsRequest struct {
	DeploymentID string `json:"deployment_id"`
}

// DescribeSnapshotsResponse 查询快照响应
type DescribeSnapshotsResponse struct {
	Snapshots []Snapshot `json:"snapshots"`
}
