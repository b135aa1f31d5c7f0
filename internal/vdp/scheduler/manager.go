package scheduler

import (
	"sort"
	"sync"

	"github.com/jimyag/vdp/internal/vdp/entity"
	"github.com/jimyag/vdp/pkg/apierror"
)

// Manager 维护各节点的容量账本
// 检查和预占在同一把锁内完成，并发创建不会超卖
type Manager struct {
	mu    sync.Mutex
	nodes map[string]*nodeLedger
}

// nodeLedger 单节点容量账本，available 为超售后的剩余量
type nodeLedger struct {
	node      entity.Node
	effVCPUs  uint64
	effMemMB  uint64
	availVCPU uint64
	availMem  uint64
	availDisk uint64
	guests    int
}

// NewManager 创建容量管理器
func NewManager() *Manager {
	return &Manager{nodes: make(map[string]*nodeLedger)}
}

// effective 超售后的可分配总量，磁盘不超售
func effective(total uint64, ratio float64) uint64 {
	if ratio < 1.0 {
		ratio = 1.0
	}
	return uint64(float64(total) * ratio)
}

// SetNode 注册或更新节点
// 更新只调整总量，已预占的量保持不变
func (m *Manager) SetNode(node entity.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()

	effVCPUs := effective(node.TotalVCPUs, node.CPURatio)
	effMemMB := effective(node.TotalMemMB, node.MemoryRatio)

	if existing, ok := m.nodes[node.ID]; ok {
		usedVCPU := existing.effVCPUs - existing.availVCPU
		usedMem := existing.effMemMB - existing.availMem
		usedDisk := existing.node.TotalDiskGB - existing.availDisk
		existing.node = node
		existing.effVCPUs = effVCPUs
		existing.effMemMB = effMemMB
		existing.availVCPU = saturatingSub(effVCPUs, usedVCPU)
		existing.availMem = saturatingSub(effMemMB, usedMem)
		existing.availDisk = saturatingSub(node.TotalDiskGB, usedDisk)
		return
	}

	m.nodes[node.ID] = &nodeLedger{
		node:      node,
		effVCPUs:  effVCPUs,
		effMemMB:  effMemMB,
		availVCPU: effVCPUs,
		availMem:  effMemMB,
		availDisk: node.TotalDiskGB,
	}
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// Reserve 选择节点并原子预占资源
// 没有节点能容纳时返回 ErrInsufficientCapacity
func (m *Manager) Reserve(demand entity.ResourceDemand) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	nodeID, ok := SelectNode(m.capacityLocked(), demand)
	if !ok {
		return "", apierror.WrapError(apierror.ErrInsufficientCapacity, "no node can hold the requested resources", nil)
	}

	m.reserveLocked(nodeID, demand)
	return nodeID, nil
}

// ReserveOn 在指定节点上预占资源，启动恢复已有部署时使用
func (m *Manager) ReserveOn(nodeID string, demand entity.ResourceDemand) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ledger, ok := m.nodes[nodeID]
	if !ok {
		return apierror.WrapError(apierror.ErrResourceNotFound, "node not found: "+nodeID, nil)
	}
	if ledger.availVCPU < demand.VCPUs ||
		ledger.availMem < demand.MemoryMB ||
		ledger.availDisk < demand.DiskGB {
		return apierror.WrapError(apierror.ErrInsufficientCapacity, "node "+nodeID+" cannot hold the requested resources", nil)
	}

	m.reserveLocked(nodeID, demand)
	return nil
}

func (m *Manager) reserveLocked(nodeID string, demand entity.ResourceDemand) {
	ledger := m.nodes[nodeID]
	ledger.availVCPU -= demand.VCPUs
	ledger.availMem -= demand.MemoryMB
	ledger.availDisk -= demand.DiskGB
	ledger.guests++
}

// Release 归还预占的资源，部署删除或回滚时调用
func (m *Manager) Release(nodeID string, demand entity.ResourceDemand) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ledger, ok := m.nodes[nodeID]
	if !ok {
		return
	}

	ledger.availVCPU = min64(ledger.availVCPU+demand.VCPUs, ledger.effVCPUs)
	ledger.availMem = min64(ledger.availMem+demand.MemoryMB, ledger.effMemMB)
	ledger.availDisk = min64(ledger.availDisk+demand.DiskGB, ledger.node.TotalDiskGB)
	if ledger.guests > 0 {
		ledger.guests--
	}
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// Capacity 按节点 ID 排序返回容量快照
func (m *Manager) Capacity() []entity.NodeCapacity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.capacityLocked()
}

func (m *Manager) capacityLocked() []entity.NodeCapacity {
	out := make([]entity.NodeCapacity, 0, len(m.nodes))
	for _, ledger := range m.nodes {
		out = append(out, entity.NodeCapacity{
			NodeID:          ledger.node.ID,
			TotalVCPUs:      ledger.effVCPUs,
			TotalMemMB:      ledger.effMemMB,
			TotalDiskGB:     ledger.node.TotalDiskGB,
			AvailableVCPUs:  ledger.availVCPU,
			AvailableMemMB:  ledger.availMem,
			AvailableDiskGB: ledger.availDisk,
			RunningGuests:   ledger.guests,
			Active:          ledger.node.Active,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}
