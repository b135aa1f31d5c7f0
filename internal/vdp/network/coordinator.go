package network

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jimyag/vdp/internal/vdp/adapter"
)

const (
	// GuestSSHPort 客户机内 SSH 服务端口
	GuestSSHPort = 22
	// GuestConsolePort 客户机内控制台服务端口
	GuestConsolePort = 5900
)

// PortRange 端口池区间配置
type PortRange struct {
	SSHStart     int
	SSHEnd       int
	ConsoleStart int
	ConsoleEnd   int
}

// Coordinator 按节点管理端口池，并通过防火墙适配器安装转发规则
// 端口在创建时分配、删除时释放，停止只摘规则不还端口
type Coordinator struct {
	mu           sync.Mutex
	firewall     adapter.HostFirewall
	ranges       PortRange
	sshPools     map[string]*Pool
	consolePools map[string]*Pool
}

// NewCoordinator 创建网络协调器
func NewCoordinator(firewall adapter.HostFirewall, ranges PortRange) *Coordinator {
	return &Coordinator{
		firewall:     firewall,
		ranges:       ranges,
		sshPools:     make(map[string]*Pool),
		consolePools: make(map[string]*Pool),
	}
}

// poolsFor 取该节点的端口池，首次访问时创建
func (c *Coordinator) poolsFor(nodeID string) (*Pool, *Pool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ssh, ok := c.sshPools[nodeID]
	if !ok {
		ssh = NewPool(c.ranges.SSHStart, c.ranges.SSHEnd)
		c.sshPools[nodeID] = ssh
	}
	console, ok := c.consolePools[nodeID]
	if !ok {
		console = NewPool(c.ranges.ConsoleStart, c.ranges.ConsoleEnd)
		c.consolePools[nodeID] = console
	}
	return ssh, console
}

// AllocatePorts 在指定节点上分配一对 SSH、控制台端口
// 控制台分配失败时归还已分配的 SSH 端口
func (c *Coordinator) AllocatePorts(nodeID string) (sshPort int, consolePort int, err error) {
	sshPool, consolePool := c.poolsFor(nodeID)

	sshPort, err = sshPool.Allocate()
	if err != nil {
		return 0, 0, err
	}

	consolePort, err = consolePool.Allocate()
	if err != nil {
		sshPool.Release(sshPort)
		return 0, 0, err
	}

	return sshPort, consolePort, nil
}

// ReleasePorts 归还端口对
func (c *Coordinator) ReleasePorts(nodeID string, sshPort, consolePort int) {
	sshPool, consolePool := c.poolsFor(nodeID)
	sshPool.Release(sshPort)
	consolePool.Release(consolePort)
}

// RestorePorts 启动时把存量部署占用的端口标记回池中
func (c *Coordinator) RestorePorts(nodeID string, sshPort, consolePort int) {
	sshPool, consolePool := c.poolsFor(nodeID)
	sshPool.Restore(sshPort)
	consolePool.Restore(consolePort)
}

// InstallForwards 安装 SSH 和控制台的转发规则
// SSH 转发到客户机 22，控制台转发到客户机 5900
func (c *Coordinator) InstallForwards(ctx context.Context, guestIP string, sshPort, consolePort int) error {
	if err := c.firewall.InstallForward(ctx, &adapter.ForwardRule{
		HostPort:  sshPort,
		GuestIP:   guestIP,
		GuestPort: GuestSSHPort,
		Protocol:  "tcp",
	}); err != nil {
		return err
	}

	if err := c.firewall.InstallForward(ctx, &adapter.ForwardRule{
		HostPort:  consolePort,
		GuestIP:   guestIP,
		GuestPort: GuestConsolePort,
		Protocol:  "tcp",
	}); err != nil {
		// 摘掉已装的 SSH 规则，保持整体原子
		if rmErr := c.firewall.RemoveForward(ctx, &adapter.ForwardRule{
			HostPort:  sshPort,
			GuestIP:   guestIP,
			GuestPort: GuestSSHPort,
			Protocol:  "tcp",
		}); rmErr != nil {
			zerolog.Ctx(ctx).Warn().Err(rmErr).Int("ssh_port", sshPort).Msg("rollback ssh forward failed")
		}
		return err
	}

	return nil
}

// RemoveForwards 移除转发规则，规则不存在视为成功
func (c *Coordinator) RemoveForwards(ctx context.Context, guestIP string, sshPort, consolePort int) error {
	if err := c.firewall.RemoveForward(ctx, &adapter.ForwardRule{
		HostPort:  sshPort,
		GuestIP:   guestIP,
		GuestPort: GuestSSHPort,
		Protocol:  "tcp",
	}); err != nil {
		return err
	}

	return c.firewall.RemoveForward(ctx, &adapter.ForwardRule{
		HostPort:  consolePort,
		GuestIP:   guestIP,
		GuestPort: GuestConsolePort,
		Protocol:  "tcp",
	})
}
