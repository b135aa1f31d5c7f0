package adapter

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockHypervisor HypervisorControlPlane 的 mock 实现，测试用
type MockHypervisor struct {
	mock.Mock
}

var _ HypervisorControlPlane = (*MockHypervisor)(nil)

func (m *MockHypervisor) Define(ctx context.Context, spec *GuestSpec) error {
	args := m.Called(ctx, spec)
	return args.Error(0)
}

func (m *MockHypervisor) Start(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockHypervisor) Shutdown(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockHypervisor) ForceStop(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockHypervisor) Undefine(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockHypervisor) GetState(ctx context.Context, name string) (GuestState, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(GuestState), args.Error(1)
}

func (m *MockHypervisor) GetAddress(ctx context.Context, name string, mac string) (string, error) {
	args := m.Called(ctx, name, mac)
	return args.String(0), args.Error(1)
}

func (m *MockHypervisor) CreateSnapshot(ctx context.Context, name string, snapshotName string) error {
	args := m.Called(ctx, name, snapshotName)
	return args.Error(0)
}

func (m *MockHypervisor) RevertSnapshot(ctx context.Context, name string, snapshotName string) error {
	args := m.Called(ctx, name, snapshotName)
	return args.Error(0)
}

// MockDiskProvisioner DiskProvisioner 的 mock 实现，测试用
type MockDiskProvisioner struct {
	mock.Mock
}

var _ DiskProvisioner = (*MockDiskProvisioner)(nil)

func (m *MockDiskProvisioner) CreateCOWDisk(ctx context.Context, pool string, volumeName string, backingPath string, backingFormat string, sizeGB uint64) (string, error) {
	args := m.Called(ctx, pool, volumeName, backingPath, backingFormat, sizeGB)
	return args.String(0), args.Error(1)
}

func (m *MockDiskProvisioner) DeleteDisk(ctx context.Context, pool string, volumeName string) error {
	args := m.Called(ctx, pool, volumeName)
	return args.Error(0)
}

func (m *MockDiskProvisioner) DiskExists(ctx context.Context, pool string, volumeName string) (bool, error) {
	args := m.Called(ctx, pool, volumeName)
	return args.Bool(0), args.Error(1)
}

// MockFirewall HostFirewall 的 mock 实现，测试用
type MockFirewall struct {
	mock.Mock
}

var _ HostFirewall = (*MockFirewall)(nil)

func (m *MockFirewall) InstallForward(ctx context.Context, rule *ForwardRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockFirewall) RemoveForward(ctx context.Context, rule *ForwardRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

// MockRenderer GuestConfigRenderer 的 mock 实现，测试用
type MockRenderer struct {
	mock.Mock
}

var _ GuestConfigRenderer = (*MockRenderer)(nil)

func (m *MockRenderer) RenderSeedISO(ctx context.Context, deploymentID string, hostname string, password string, sshKeys []string, mac string) (string, error) {
	args := m.Called(ctx, deploymentID, hostname, password, sshKeys, mac)
	return args.String(0), args.Error(1)
}

func (m *MockRenderer) RemoveSeedISO(ctx context.Context, deploymentID string) error {
	args := m.Called(ctx, deploymentID)
	return args.Error(0)
}
