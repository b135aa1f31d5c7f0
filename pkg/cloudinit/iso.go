package cloudinit

import (
	"bytes"
	"fmt"

	"github.com/kdomanski/iso9660"
)

// GenerateISO 生成 cloud-init NoCloud seed ISO
//
// ISO 根目录包含三个文件：
//   - user-data: #cloud-config YAML（主机名、SSH 公钥、密码）
//   - meta-data: 实例元数据（instance-id、local-hostname）
//   - network-config: netplan v2 网络配置
//
// 卷标必须是 "CIDATA"（NoCloud datasource 要求，大写）
// https://cloudinit.readthedocs.io/en/latest/reference/datasources/nocloud.html
func (g *Generator) GenerateISO(config *Config, mac string) ([]byte, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	userData, err := g.GenerateUserData(config)
	if err != nil {
		return nil, fmt.Errorf("generate user-data: %w", err)
	}

	metaData, err := g.GenerateMetaData(config.Hostname)
	if err != nil {
		return nil, fmt.Errorf("generate meta-data: %w", err)
	}

	networkConfig, err := g.GenerateNetworkConfig(mac)
	if err != nil {
		return nil, fmt.Errorf("generate network-config: %w", err)
	}

	writer, err := iso9660.NewWriter()
	if err != nil {
		return nil, fmt.Errorf("create ISO writer: %w", err)
	}
	defer func() {
		// 清理 writer 的临时文件，失败不影响已生成的 ISO
		_ = writer.Cleanup()
	}()

	if err := writer.AddFile(bytes.NewReader([]byte(userData)), "user-data"); err != nil {
		return nil, fmt.Errorf("add user-data: %w", err)
	}
	if err := writer.AddFile(bytes.NewReader([]byte(metaData)), "meta-data"); err != nil {
		return nil, fmt.Errorf("add meta-data: %w", err)
	}
	if err := writer.AddFile(bytes.NewReader([]byte(networkConfig)), "network-config"); err != nil {
		return nil, fmt.Errorf("add network-config: %w", err)
	}

	var buf bytes.Buffer
	if err := writer.WriteTo(&buf, "CIDATA"); err != nil {
		return nil, fmt.Errorf("write ISO image: %w", err)
	}

	return buf.Bytes(), nil
}
