// Package vdp 提供 VDP 服务器的主入口和初始化逻辑
package vdp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jimmicro/grace"
	"github.com/rs/zerolog"

	"github.com/jimyag/vdp/internal/vdp/adapter"
	"github.com/jimyag/vdp/internal/vdp/api"
	"github.com/jimyag/vdp/internal/vdp/config"
	"github.com/jimyag/vdp/internal/vdp/meter"
	"github.com/jimyag/vdp/internal/vdp/network"
	"github.com/jimyag/vdp/internal/vdp/orchestrator"
	"github.com/jimyag/vdp/internal/vdp/quota"
	"github.com/jimyag/vdp/internal/vdp/repository"
	"github.com/jimyag/vdp/internal/vdp/scheduler"
)

type Server struct {
	cfg  *config.Config
	repo *repository.Repository

	hypervisor *adapter.LibvirtHypervisor
	api        *api.API
	meter      *meterService
}

func New(cfg *config.Config) (*Server, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	ctx := logger.WithContext(context.Background())

	// 1. 持久层
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	logger.Info().Str("db_path", cfg.DBPath).Msg("Repository opened")

	// 2. 适配器，hypervisor 和磁盘供给共用一条 libvirt 连接
	hypervisor, err := adapter.NewLibvirtHypervisor(cfg.LibvirtURI)
	if err != nil {
		return nil, fmt.Errorf("connect libvirt: %w", err)
	}
	disk := adapter.NewLibvirtDiskProvisioner(hypervisor.Conn())
	firewall := adapter.NewIptablesFirewall()
	renderer := adapter.NewCloudInitRenderer(filepath.Join(cfg.DataDir, "seed"))

	// 3. 调度、网络、配额
	capacity := scheduler.NewManager()
	net := network.NewCoordinator(firewall, network.PortRange{
		SSHStart:     cfg.SSHPortStart,
		SSHEnd:       cfg.SSHPortEnd,
		ConsoleStart: cfg.ConsolePortStart,
		ConsoleEnd:   cfg.ConsolePortEnd,
	})
	enforcer := quota.NewEnforcer(
		repository.NewQuotaRepository(repo.DB()),
		repository.NewDeploymentRepository(repo.DB()),
		repository.NewPlanRepository(repo.DB()),
	)

	// 4. 编排器，启动前从库里恢复容量账本和端口池
	orch := orchestrator.New(orchestrator.Options{
		NetworkName: cfg.NetworkName,
	}, repo, capacity, net, enforcer, hypervisor, disk, renderer)
	if err := orch.Recover(ctx); err != nil {
		return nil, fmt.Errorf("recover orchestrator state: %w", err)
	}

	server := &Server{
		cfg:        cfg,
		repo:       repo,
		hypervisor: hypervisor,
		api:        api.New(cfg.Address, orch, logger),
		meter:      &meterService{meter: meter.New(cfg.MeterInterval, repo, hypervisor)},
	}
	return server, nil
}

func (s *Server) Run(ctx context.Context) error {
	services := []grace.Grace{
		s.api,
		s.meter,
	}

	shepherd := grace.NewShepherd(
		services,
		grace.WithTimeout(30*time.Second),
		grace.WithLogger(&zerologLogger{}),
	)

	shepherd.Start(ctx)
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.api.Shutdown(ctx); err != nil {
		return err
	}
	if err := s.hypervisor.Close(); err != nil {
		return err
	}
	return s.repo.Close()
}

// Name 实现 grace.Grace 接口
func (s *Server) Name() string {
	return "VDP Server"
}

// meterService 把计量器包装成 grace 管理的服务
type meterService struct {
	meter  *meter.Meter
	cancel context.CancelFunc
}

func (m *meterService) Run(ctx context.Context) error {
	ctx, m.cancel = context.WithCancel(ctx)
	if err := m.meter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (m *meterService) Shutdown(ctx context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	return nil
}

func (m *meterService) Name() string {
	return "usage-meter"
}

// zerologLogger 实现 grace.Logger 接口
type zerologLogger struct{}

func (l *zerologLogger) Info(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Info()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}

func (l *zerologLogger) Error(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Error()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}
