package adapter

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/digitalocean/go-libvirt"
	"github.com/rs/zerolog"
)

// LibvirtHypervisor 基于 libvirt 的控制面实现
type LibvirtHypervisor struct {
	conn *libvirt.Libvirt
}

var _ HypervisorControlPlane = (*LibvirtHypervisor)(nil)

// NewLibvirtHypervisor 连接指定 URI 的 libvirt
// uri 为空时连接本机 qemu:///system
func NewLibvirtHypervisor(uri string) (*LibvirtHypervisor, error) {
	if uri == "" {
		uri = string(libvirt.QEMUSystem)
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse libvirt uri %s: %w", uri, err)
	}
	conn, err := libvirt.ConnectToURI(parsed)
	if err != nil {
		return nil, fmt.Errorf("connect libvirt %s: %w", uri, err)
	}
	return &LibvirtHypervisor{conn: conn}, nil
}

// NewLibvirtHypervisorWithConn 复用已有连接（磁盘供给共用同一连接）
func NewLibvirtHypervisorWithConn(conn *libvirt.Libvirt) *LibvirtHypervisor {
	return &LibvirtHypervisor{conn: conn}
}

// Conn 返回底层连接，磁盘供给共用同一连接
func (h *LibvirtHypervisor) Conn() *libvirt.Libvirt {
	return h.conn
}

// Close 断开 libvirt 连接
func (h *LibvirtHypervisor) Close() error {
	return h.conn.Disconnect()
}

// Define 定义持久化客户机
func (h *LibvirtHypervisor) Define(ctx context.Context, spec *GuestSpec) error {
	xmlBytes, err := xml.MarshalIndent(buildDomainXML(spec), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal domain XML: %w", err)
	}

	if _, err := h.conn.DomainDefineXML(string(xmlBytes)); err != nil {
		return fmt.Errorf("define domain %s: %w", spec.Name, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("domain", spec.Name).
		Uint64("vcpus", spec.VCPUs).
		Uint64("memory_mb", spec.MemoryMB).
		Msg("domain defined")
	return nil
}

// Start 启动客户机
func (h *LibvirtHypervisor) Start(ctx context.Context, name string) error {
	dom, err := h.conn.DomainLookupByName(name)
	if err != nil {
		return fmt.Errorf("lookup domain %s: %w", name, err)
	}
	if err := h.conn.DomainCreate(dom); err != nil {
		return fmt.Errorf("start domain %s: %w", name, err)
	}
	return nil
}

// Shutdown 发送 ACPI 关机信号，客户机可能延迟关闭
func (h *LibvirtHypervisor) Shutdown(ctx context.Context, name string) error {
	dom, err := h.conn.DomainLookupByName(name)
	if err != nil {
		return fmt.Errorf("lookup domain %s: %w", name, err)
	}
	if err := h.conn.DomainShutdown(dom); err != nil {
		return fmt.Errorf("shutdown domain %s: %w", name, err)
	}
	return nil
}

// ForceStop 强制断电
func (h *LibvirtHypervisor) ForceStop(ctx context.Context, name string) error {
	dom, err := h.conn.DomainLookupByName(name)
	if err != nil {
		return fmt.Errorf("lookup domain %s: %w", name, err)
	}
	if err := h.conn.DomainDestroy(dom); err != nil {
		return fmt.Errorf("destroy domain %s: %w", name, err)
	}
	return nil
}

// Undefine 删除客户机定义
// 不存在视为成功，保证回滚和删除可重入
func (h *LibvirtHypervisor) Undefine(ctx context.Context, name string) error {
	dom, err := h.conn.DomainLookupByName(name)
	if err != nil {
		// 域不存在说明已经清理过
		return nil
	}

	state, _, err := h.conn.DomainGetState(dom, 0)
	if err == nil && libvirt.DomainState(state) == libvirt.DomainRunning {
		if err := h.conn.DomainDestroy(dom); err != nil {
			return fmt.Errorf("destroy running domain %s: %w", name, err)
		}
		zerolog.Ctx(ctx).Warn().Str("domain", name).Msg("running domain destroyed before undefine")
	}

	flags := libvirt.DomainUndefineManagedSave |
		libvirt.DomainUndefineSnapshotsMetadata |
		libvirt.DomainUndefineNvram
	if err := h.conn.DomainUndefineFlags(dom, flags); err != nil {
		return fmt.Errorf("undefine domain %s: %w", name, err)
	}
	return nil
}

// GetState 查询客户机状态
func (h *LibvirtHypervisor) GetState(ctx context.Context, name string) (GuestState, error) {
	dom, err := h.conn.DomainLookupByName(name)
	if err != nil {
		return GuestAbsent, nil
	}

	state, _, err := h.conn.DomainGetState(dom, 0)
	if err != nil {
		return GuestUnknown, fmt.Errorf("get domain state %s: %w", name, err)
	}

	switch libvirt.DomainState(state) {
	case libvirt.DomainRunning:
		return GuestRunning, nil
	case libvirt.DomainShutoff, libvirt.DomainCrashed:
		return GuestStopped, nil
	default:
		return GuestUnknown, nil
	}
}

// GetAddress 按 MAC 查询 DHCP 租约中的 IPv4 地址
func (h *LibvirtHypervisor) GetAddress(ctx context.Context, name string, mac string) (string, error) {
	dom, err := h.conn.DomainLookupByName(name)
	if err != nil {
		return "", fmt.Errorf("lookup domain %s: %w", name, err)
	}

	ifaces, err := h.conn.DomainInterfaceAddresses(dom, uint32(libvirt.DomainInterfaceAddressesSrcLease), 0)
	if err != nil {
		return "", fmt.Errorf("query interface addresses %s: %w", name, err)
	}

	mac = strings.ToLower(mac)
	for _, iface := range ifaces {
		matched := mac == ""
		for _, hw := range iface.Hwaddr {
			if strings.ToLower(hw) == mac {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, addr := range iface.Addrs {
			if libvirt.IPAddrType(addr.Type) == libvirt.IPAddrTypeIpv4 && addr.Addr != "" {
				return addr.Addr, nil
			}
		}
	}

	// 租约未生成，由调用方轮询重试
	return "", nil
}

// snapshotXML 快照定义，只需要名称
type snapshotXML struct {
	XMLName xml.Name `xml:"domainsnapshot"`
	Name    string   `xml:"name"`
}

// CreateSnapshot 创建快照
func (h *LibvirtHypervisor) CreateSnapshot(ctx context.Context, name string, snapshotName string) error {
	dom, err := h.conn.DomainLookupByName(name)
	if err != nil {
		return fmt.Errorf("lookup domain %s: %w", name, err)
	}

	xmlBytes, err := xml.Marshal(&snapshotXML{Name: snapshotName})
	if err != nil {
		return fmt.Errorf("marshal snapshot XML: %w", err)
	}

	if _, err := h.conn.DomainSnapshotCreateXML(dom, string(xmlBytes), 0); err != nil {
		return fmt.Errorf("create snapshot %s on %s: %w", snapshotName, name, err)
	}
	return nil
}

// RevertSnapshot 恢复到指定快照
func (h *LibvirtHypervisor) RevertSnapshot(ctx context.Context, name string, snapshotName string) error {
	dom, err := h.conn.DomainLookupByName(name)
	if err != nil {
		return fmt.Errorf("lookup domain %s: %w", name, err)
	}

	snap, err := h.conn.DomainSnapshotLookupByName(dom, snapshotName, 0)
	if err != nil {
		return fmt.Errorf("lookup snapshot %s on %s: %w", snapshotName, name, err)
	}

	if err := h.conn.DomainRevertToSnapshot(snap, 0); err != nil {
		return fmt.Errorf("revert snapshot %s on %s: %w", snapshotName, name, err)
	}
	return nil
}
