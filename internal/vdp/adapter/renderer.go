package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/jimyag/vdp/pkg/cloudinit"
)

// CloudInitRenderer 渲染 cloud-init seed ISO 并写入数据目录
type CloudInitRenderer struct {
	generator *cloudinit.Generator
	dataDir   string
}

var _ GuestConfigRenderer = (*CloudInitRenderer)(nil)

// NewCloudInitRenderer 创建渲染器，seed ISO 写到 dataDir 下
func NewCloudInitRenderer(dataDir string) *CloudInitRenderer {
	return &CloudInitRenderer{
		generator: cloudinit.NewGenerator(),
		dataDir:   dataDir,
	}
}

func (r *CloudInitRenderer) isoPath(deploymentID string) string {
	return filepath.Join(r.dataDir, deploymentID+"-seed.iso")
}

// RenderSeedISO 渲染 seed ISO 并写盘
// 口令在渲染时哈希，明文不落盘
func (r *CloudInitRenderer) RenderSeedISO(ctx context.Context, deploymentID string, hostname string, password string, sshKeys []string, mac string) (string, error) {
	if err := os.MkdirAll(r.dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}

	isoData, err := r.generator.GenerateISO(&cloudinit.Config{
		Hostname:          hostname,
		Password:          password,
		SSHAuthorizedKeys: sshKeys,
	}, mac)
	if err != nil {
		return "", fmt.Errorf("generate seed ISO for %s: %w", deploymentID, err)
	}

	path := r.isoPath(deploymentID)
	if err := os.WriteFile(path, isoData, 0o644); err != nil {
		return "", fmt.Errorf("write seed ISO %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("deployment_id", deploymentID).
		Str("path", path).
		Msg("seed iso rendered")
	return path, nil
}

// RemoveSeedISO 删除 seed ISO，不存在视为成功
func (r *CloudInitRenderer) RemoveSeedISO(ctx context.Context, deploymentID string) error {
	err := os.Remove(r.isoPath(deploymentID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove seed ISO for %s: %w", deploymentID, err)
	}
	return nil
}
