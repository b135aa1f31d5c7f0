// Package config 提供 VDP 的环境变量配置
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	// Address 是 HTTP 服务监听地址
	// 可以通过环境变量 VDP_ADDRESS 配置
	Address string

	// DBPath 是 SQLite 数据库文件路径
	// 可以通过环境变量 VDP_DB_PATH 配置
	// 默认：{DataDir}/vdp.db
	DBPath string

	// LibvirtURI 是 libvirt 连接 URI
	// 支持以下格式：
	// - qemu:///system (本地系统连接，默认)
	// - qemu+ssh://user@host/system (SSH 远程连接)
	// - qemu+tcp://host/system (TCP 远程连接)
	// 可以通过环境变量 LIBVIRT_URI 配置
	LibvirtURI string

	// DataDir 是 VDP 数据目录
	// 用于存储 seed ISO 等运行期文件
	// 可以通过环境变量 VDP_DATA_DIR 配置
	// 默认：~/.local/share/vdp
	DataDir string

	// NetworkName 是客户机接入的 libvirt NAT 网络
	// 可以通过环境变量 VDP_NETWORK 配置
	NetworkName string

	// SSH 转发端口区间，闭区间
	SSHPortStart int
	SSHPortEnd   int

	// 控制台转发端口区间，闭区间
	ConsolePortStart int
	ConsolePortEnd   int

	// MeterInterval 是用量采样周期
	// 可以通过环境变量 VDP_METER_INTERVAL 配置，Go duration 格式
	MeterInterval time.Duration
}

func New() (*Config, error) {
	dataDir := getDataDir()
	cfg := &Config{
		Address:          getEnv("VDP_ADDRESS", "0.0.0.0:7777"),
		DBPath:           getEnv("VDP_DB_PATH", filepath.Join(dataDir, "vdp.db")),
		LibvirtURI:       getLibvirtURI(),
		DataDir:          dataDir,
		NetworkName:      getEnv("VDP_NETWORK", "default"),
		SSHPortStart:     getEnvInt("VDP_SSH_PORT_START", 42000),
		SSHPortEnd:       getEnvInt("VDP_SSH_PORT_END", 42999),
		ConsolePortStart: getEnvInt("VDP_CONSOLE_PORT_START", 43000),
		ConsolePortEnd:   getEnvInt("VDP_CONSOLE_PORT_END", 43999),
		MeterInterval:    getEnvDuration("VDP_METER_INTERVAL", 5*time.Minute),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getLibvirtURI 获取 libvirt URI，优先使用环境变量
func getLibvirtURI() string {
	if uri := os.Getenv("LIBVIRT_URI"); uri != "" {
		return uri
	}
	if uri := os.Getenv("VDP_LIBVIRT_URI"); uri != "" {
		return uri
	}
	return "qemu:///system"
}

// getDataDir 获取数据目录，优先使用环境变量
func getDataDir() string {
	if dir := os.Getenv("VDP_DATA_DIR"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "vdp")
	}
	return filepath.Join(".", "data")
}
