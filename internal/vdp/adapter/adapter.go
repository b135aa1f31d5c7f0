// Package adapter 封装对宿主机能力的调用：hypervisor、磁盘、启动配置、防火墙
// 上层编排只依赖这里的接口，方便测试时替换
package adapter

import (
	"context"
)

// GuestState hypervisor 观测到的客户机状态
type GuestState string

const (
	// GuestRunning 客户机运行中
	GuestRunning GuestState = "running"
	// GuestStopped 客户机已定义但未运行
	GuestStopped GuestState = "stopped"
	// GuestAbsent hypervisor 上不存在该客户机
	GuestAbsent GuestState = "absent"
	// GuestUnknown 其他中间状态（paused、shutting-down 等）
	GuestUnknown GuestState = "unknown"
)

// GuestSpec 定义客户机所需的全部参数
type GuestSpec struct {
	Name        string // 域名称，使用部署 ID
	UUID        string // 域 UUID
	VCPUs       uint64
	MemoryMB    uint64
	DiskPath    string // 系统盘路径
	SeedISOPath string // cloud-init seed ISO 路径，可为空
	MAC         string // 网卡 MAC
	NetworkName string // libvirt NAT 网络名称
	ConsolePort int    // VNC 监听端口
}

// HypervisorControlPlane hypervisor 控制面
type HypervisorControlPlane interface {
	// Define 定义持久化客户机，不启动
	Define(ctx context.Context, spec *GuestSpec) error
	// Start 启动已定义的客户机
	Start(ctx context.Context, name string) error
	// Shutdown 发送 ACPI 关机信号
	Shutdown(ctx context.Context, name string) error
	// ForceStop 强制断电
	ForceStop(ctx context.Context, name string) error
	// Undefine 删除客户机定义，运行中的先强制断电
	Undefine(ctx context.Context, name string) error
	// GetState 查询客户机状态，不存在返回 GuestAbsent 而非错误
	GetState(ctx context.Context, name string) (GuestState, error)
	// GetAddress 按 MAC 查询 DHCP 租约中的 IPv4 地址，未分配返回空串
	GetAddress(ctx context.Context, name string, mac string) (string, error)
	// CreateSnapshot 创建快照
	CreateSnapshot(ctx context.Context, name string, snapshotName string) error
	// RevertSnapshot 恢复到指定快照
	RevertSnapshot(ctx context.Context, name string, snapshotName string) error
}

// DiskProvisioner 客户机磁盘供给
type DiskProvisioner interface {
	// CreateCOWDisk 基于模板镜像创建写时复制系统盘，返回磁盘路径
	CreateCOWDisk(ctx context.Context, pool string, volumeName string, backingPath string, backingFormat string, sizeGB uint64) (string, error)
	// DeleteDisk 删除系统盘，不存在视为成功
	DeleteDisk(ctx context.Context, pool string, volumeName string) error
	// DiskExists 查询磁盘是否存在
	DiskExists(ctx context.Context, pool string, volumeName string) (bool, error)
}

// ForwardRule 宿主机端口到客户机的转发规则
type ForwardRule struct {
	HostPort  int    // 宿主机端口
	GuestIP   string // 客户机内网 IP
	GuestPort int    // 客户机端口
	Protocol  string // 默认 tcp
}

// HostFirewall 宿主机防火墙，负责 NAT 端口转发
type HostFirewall interface {
	// InstallForward 安装转发规则，重复安装需保持幂等
	InstallForward(ctx context.Context, rule *ForwardRule) error
	// RemoveForward 移除转发规则，规则不存在视为成功
	RemoveForward(ctx context.Context, rule *ForwardRule) error
}

// GuestConfigRenderer 客户机启动配置渲染
type GuestConfigRenderer interface {
	// RenderSeedISO 渲染 cloud-init seed ISO 并写盘，返回 ISO 路径
	RenderSeedISO(ctx context.Context, deploymentID string, hostname string, password string, sshKeys []string, mac string) (string, error)
	// RemoveSeedISO 删除 seed ISO，不存在视为成功
	RemoveSeedISO(ctx context.Context, deploymentID string) error
}
