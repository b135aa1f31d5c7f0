package cloudinit

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Generator cloud-init 配置生成器
type Generator struct{}

// NewGenerator 创建新的 cloud-init 生成器
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateMetaData 生成 meta-data 文件内容
func (g *Generator) GenerateMetaData(hostname string) (string, error) {
	if hostname == "" {
		hostname = "localhost"
	}

	instanceID, err := generateInstanceID()
	if err != nil {
		return "", err
	}

	metaData := &MetaData{
		InstanceID:    instanceID,
		LocalHostname: hostname,
	}

	yamlData, err := yaml.Marshal(metaData)
	if err != nil {
		return "", fmt.Errorf("marshal meta-data to YAML: %w", err)
	}

	return string(yamlData), nil
}

// GenerateUserData 生成 user-data 文件内容
// 密码在这里哈希，明文不会出现在渲染结果中
func (g *Generator) GenerateUserData(config *Config) (string, error) {
	if config == nil {
		return "", fmt.Errorf("config is required")
	}

	userData := &UserData{
		Hostname:        config.Hostname,
		ManageEtcHosts:  true,
		DisableRoot:     false,
		SSHPasswordAuth: true,
		Timezone:        config.Timezone,
		ChPasswdExpire:  &ChPass{Expire: false},
	}

	username := config.Username
	if username == "" {
		username = "root"
	}

	user := User{
		Name:              username,
		LockPasswd:        false,
		Shell:             "/bin/bash",
		Sudo:              "ALL=(ALL) NOPASSWD:ALL",
		SSHAuthorizedKeys: config.SSHAuthorizedKeys,
	}

	if config.Password != "" {
		hashed, err := HashPassword(config.Password)
		if err != nil {
			return "", fmt.Errorf("hash password for user %s: %w", username, err)
		}
		user.HashedPasswd = hashed
	}

	userData.Users = []User{user}

	yamlData, err := yaml.Marshal(userData)
	if err != nil {
		return "", fmt.Errorf("marshal user-data to YAML: %w", err)
	}

	// 添加 cloud-config header
	return "#cloud-config\n" + string(yamlData), nil
}

// GenerateNetworkConfig 生成 network-config 文件内容
// NAT 模式下客户机通过 DHCP 获取地址，按 MAC 匹配网卡
func (g *Generator) GenerateNetworkConfig(mac string) (string, error) {
	eth := Ethernet{
		DHCP4: true,
	}
	if mac != "" {
		eth.Match = &EthMatch{MACAddress: mac}
	}

	networkData := &NetworkData{
		Version: 2,
		Ethernets: map[string]Ethernet{
			"eth0": eth,
		},
	}

	yamlData, err := yaml.Marshal(networkData)
	if err != nil {
		return "", fmt.Errorf("marshal network-config to YAML: %w", err)
	}

	return string(yamlData), nil
}

// HashPassword 使用 bcrypt 加密密码
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// generateInstanceID 生成随机的 instance-id
func generateInstanceID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("i-%x", b), nil
}
