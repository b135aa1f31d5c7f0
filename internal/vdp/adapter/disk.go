package adapter

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/digitalocean/go-libvirt"
	"github.com/rs/zerolog"
)

// LibvirtDiskProvisioner 基于 libvirt 存储池的磁盘供给实现
type LibvirtDiskProvisioner struct {
	conn *libvirt.Libvirt
}

var _ DiskProvisioner = (*LibvirtDiskProvisioner)(nil)

// NewLibvirtDiskProvisioner 复用 hypervisor 的 libvirt 连接
func NewLibvirtDiskProvisioner(conn *libvirt.Libvirt) *LibvirtDiskProvisioner {
	return &LibvirtDiskProvisioner{conn: conn}
}

// volumeXML 存储卷定义
// https://libvirt.org/formatstorage.html
type volumeXML struct {
	XMLName      xml.Name            `xml:"volume"`
	Type         string              `xml:"type,attr"`
	Name         string              `xml:"name"`
	Capacity     volumeSize          `xml:"capacity"`
	Allocation   volumeSize          `xml:"allocation"`
	Target       volumeTarget        `xml:"target"`
	BackingStore *volumeBackingStore `xml:"backingStore,omitempty"`
}

type volumeSize struct {
	Unit  string `xml:"unit,attr"`
	Value uint64 `xml:",chardata"`
}

type volumeTarget struct {
	Format volumeFormat `xml:"format"`
}

type volumeFormat struct {
	Type string `xml:"type,attr"`
}

type volumeBackingStore struct {
	Path   string       `xml:"path"`
	Format volumeFormat `xml:"format"`
}

// CreateCOWDisk 基于模板镜像创建写时复制系统盘
// 模板镜像只读共享，客户机写入落在新卷上
func (p *LibvirtDiskProvisioner) CreateCOWDisk(ctx context.Context, poolName string, volumeName string, backingPath string, backingFormat string, sizeGB uint64) (string, error) {
	if backingFormat == "" {
		backingFormat = "qcow2"
	}

	pool, err := p.conn.StoragePoolLookupByName(poolName)
	if err != nil {
		return "", fmt.Errorf("lookup storage pool %s: %w", poolName, err)
	}

	volXML := &volumeXML{
		Type: "file",
		Name: volumeName,
		Capacity: volumeSize{
			Unit:  "G",
			Value: sizeGB,
		},
		Allocation: volumeSize{
			Unit:  "G",
			Value: 0,
		},
		Target: volumeTarget{
			Format: volumeFormat{Type: "qcow2"},
		},
		BackingStore: &volumeBackingStore{
			Path:   backingPath,
			Format: volumeFormat{Type: backingFormat},
		},
	}

	xmlBytes, err := xml.MarshalIndent(volXML, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal volume XML: %w", err)
	}

	vol, err := p.conn.StorageVolCreateXML(pool, string(xmlBytes), 0)
	if err != nil {
		return "", fmt.Errorf("create volume %s: %w", volumeName, err)
	}

	path, err := p.conn.StorageVolGetPath(vol)
	if err != nil {
		return "", fmt.Errorf("get volume path %s: %w", volumeName, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("pool", poolName).
		Str("volume", volumeName).
		Str("backing", backingPath).
		Uint64("size_gb", sizeGB).
		Msg("cow disk created")
	return path, nil
}

// DeleteDisk 删除系统盘，不存在视为成功
func (p *LibvirtDiskProvisioner) DeleteDisk(ctx context.Context, poolName string, volumeName string) error {
	pool, err := p.conn.StoragePoolLookupByName(poolName)
	if err != nil {
		return fmt.Errorf("lookup storage pool %s: %w", poolName, err)
	}

	vol, err := p.conn.StorageVolLookupByName(pool, volumeName)
	if err != nil {
		// 卷不存在说明已经清理过
		return nil
	}

	if err := p.conn.StorageVolDelete(vol, libvirt.StorageVolDeleteNormal); err != nil {
		return fmt.Errorf("delete volume %s: %w", volumeName, err)
	}
	return nil
}

// DiskExists 查询磁盘是否存在
func (p *LibvirtDiskProvisioner) DiskExists(ctx context.Context, poolName string, volumeName string) (bool, error) {
	pool, err := p.conn.StoragePoolLookupByName(poolName)
	if err != nil {
		return false, fmt.Errorf("lookup storage pool %s: %w", poolName, err)
	}

	if _, err := p.conn.StorageVolLookupByName(pool, volumeName); err != nil {
		return false, nil
	}
	return true, nil
}
