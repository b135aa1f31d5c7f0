package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jimyag/vdp/internal/vdp/entity"
)

func TestSelectNode(t *testing.T) {
	t.Parallel()

	t.Run("best fit prefers tighter node", func(t *testing.T) {
		// A 剩余宽裕，B 放下后剩得更少，应选 B
		nodes := []entity.NodeCapacity{
			{NodeID: "node-a", TotalVCPUs: 8, TotalMemMB: 16384, TotalDiskGB: 200, AvailableVCPUs: 1, AvailableMemMB: 8192, AvailableDiskGB: 100, Active: true},
			{NodeID: "node-b", TotalVCPUs: 8, TotalMemMB: 16384, TotalDiskGB: 200, AvailableVCPUs: 4, AvailableMemMB: 4096, AvailableDiskGB: 50, Active: true},
		}
		demand := entity.ResourceDemand{VCPUs: 1, MemoryMB: 2048, DiskGB: 20}

		got, ok := SelectNode(nodes, demand)
		assert.True(t, ok)
		assert.Equal(t, "node-b", got)
	})

	t.Run("no node can hold demand", func(t *testing.T) {
		nodes := []entity.NodeCapacity{
			{NodeID: "node-a", TotalVCPUs: 4, TotalMemMB: 8192, TotalDiskGB: 100, AvailableVCPUs: 0, AvailableMemMB: 8192, AvailableDiskGB: 100, Active: true},
		}
		demand := entity.ResourceDemand{VCPUs: 1, MemoryMB: 1024, DiskGB: 10}

		_, ok := SelectNode(nodes, demand)
		assert.False(t, ok)
	})

	t.Run("inactive node skipped", func(t *testing.T) {
		nodes := []entity.NodeCapacity{
			{NodeID: "node-a", TotalVCPUs: 4, TotalMemMB: 8192, TotalDiskGB: 100, AvailableVCPUs: 4, AvailableMemMB: 8192, AvailableDiskGB: 100, Active: false},
		}
		demand := entity.ResourceDemand{VCPUs: 1, MemoryMB: 1024, DiskGB: 10}

		_, ok := SelectNode(nodes, demand)
		assert.False(t, ok)
	})

	t.Run("tie broken by node id", func(t *testing.T) {
		nodes := []entity.NodeCapacity{
			{NodeID: "node-b", TotalVCPUs: 4, TotalMemMB: 4096, TotalDiskGB: 50, AvailableVCPUs: 4, AvailableMemMB: 4096, AvailableDiskGB: 50, Active: true},
			{NodeID: "node-a", TotalVCPUs: 4, TotalMemMB: 4096, TotalDiskGB: 50, AvailableVCPUs: 4, AvailableMemMB: 4096, AvailableDiskGB: 50, Active: true},
		}
		demand := entity.ResourceDemand{VCPUs: 1, MemoryMB: 1024, DiskGB: 10}

		got, ok := SelectNode(nodes, demand)
		assert.True(t, ok)
		assert.Equal(t, "node-a", got)
	})

	t.Run("exact fit wins", func(t *testing.T) {
		nodes := []entity.NodeCapacity{
			{NodeID: "node-big", TotalVCPUs: 16, TotalMemMB: 32768, TotalDiskGB: 500, AvailableVCPUs: 16, AvailableMemMB: 32768, AvailableDiskGB: 500, Active: true},
			{NodeID: "node-snug", TotalVCPUs: 2, TotalMemMB: 2048, TotalDiskGB: 20, AvailableVCPUs: 2, AvailableMemMB: 2048, AvailableDiskGB: 20, Active: true},
		}
		demand := entity.ResourceDemand{VCPUs: 2, MemoryMB: 2048, DiskGB: 20}

		got, ok := SelectNode(nodes, demand)
		assert.True(t, ok)
		assert.Equal(t, "node-snug", got)
	})
}
