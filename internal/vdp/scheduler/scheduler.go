// Package scheduler 负责把部署放置到计算节点上
// 采用 best-fit：选择放置后剩余资源最少的节点，减少碎片
package scheduler

import (
	"sort"

	"github.com/jimyag/vdp/internal/vdp/entity"
)

// SelectNode 在候选节点中选出最合适的一个
// 返回节点 ID，没有节点能容纳时 ok 为 false
//
// 打分为放置后三个维度剩余量占总量的比例之和，分数最低者胜出
// 分数相同按节点 ID 字典序取最小，保证选择确定性
func SelectNode(nodes []entity.NodeCapacity, demand entity.ResourceDemand) (string, bool) {
	type candidate struct {
		nodeID string
		score  float64
	}

	var candidates []candidate
	for _, n := range nodes {
		if !n.Active {
			continue
		}
		if n.AvailableVCPUs < demand.VCPUs ||
			n.AvailableMemMB < demand.MemoryMB ||
			n.AvailableDiskGB < demand.DiskGB {
			continue
		}

		score := 0.0
		if n.TotalVCPUs > 0 {
			score += float64(n.AvailableVCPUs-demand.VCPUs) / float64(n.TotalVCPUs)
		}
		if n.TotalMemMB > 0 {
			score += float64(n.AvailableMemMB-demand.MemoryMB) / float64(n.TotalMemMB)
		}
		if n.TotalDiskGB > 0 {
			score += float64(n.AvailableDiskGB-demand.DiskGB) / float64(n.TotalDiskGB)
		}

		candidates = append(candidates, candidate{nodeID: n.NodeID, score: score})
	}

	if len(candidates) == 0 {
		return "", false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		return candidates[i].nodeID < candidates[j].nodeID
	})

	return candidates[0].nodeID, true
}
