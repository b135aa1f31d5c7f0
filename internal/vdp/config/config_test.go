package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:7777", cfg.Address)
	assert.Equal(t, "qemu:///system", cfg.LibvirtURI)
	assert.Equal(t, "default", cfg.NetworkName)
	assert.Equal(t, 42000, cfg.SSHPortStart)
	assert.Equal(t, 42999, cfg.SSHPortEnd)
	assert.Equal(t, 5*time.Minute, cfg.MeterInterval)
	assert.NotEmpty(t, cfg.DataDir)
	assert.NotEmpty(t, cfg.DBPath)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("VDP_ADDRESS", "127.0.0.1:8080")
	t.Setenv("VDP_DB_PATH", "/tmp/custom.db")
	t.Setenv("LIBVIRT_URI", "qemu+ssh://root@kvm-1/system")
	t.Setenv("VDP_SSH_PORT_START", "50000")
	t.Setenv("VDP_METER_INTERVAL", "30s")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Address)
	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.Equal(t, "qemu+ssh://root@kvm-1/system", cfg.LibvirtURI)
	assert.Equal(t, 50000, cfg.SSHPortStart)
	assert.Equal(t, 30*time.Second, cfg.MeterInterval)
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("VDP_SSH_PORT_START", "not-a-number")
	t.Setenv("VDP_METER_INTERVAL", "soon")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 42000, cfg.SSHPortStart)
	assert.Equal(t, 5*time.Minute, cfg.MeterInterval)
}
