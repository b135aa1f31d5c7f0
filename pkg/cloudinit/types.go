// Package cloudinit 提供客户机启动配置（cloud-init NoCloud）的生成
package cloudinit

// Config 客户机启动配置
// 由编排器填充，渲染为 user-data / meta-data / network-config 三个文件
type Config struct {
	// Hostname 客户机主机名
	Hostname string
	// Username 默认用户名（默认 root）
	Username string
	// Password 默认用户的明文密码（渲染时进行哈希）
	Password string
	// SSHAuthorizedKeys 授权的 SSH 公钥列表
	SSHAuthorizedKeys []string
	// NetworkMode 网络模式，目前仅支持 "nat"（DHCP）
	NetworkMode string
	// Timezone 时区（可选）
	Timezone string
}

// MetaData NoCloud meta-data 文件结构
type MetaData struct {
	InstanceID    string `yaml:"instance-id"`
	LocalHostname string `yaml:"local-hostname"`
}

// UserData NoCloud user-data（#cloud-config）文件结构
type UserData struct {
	Hostname          string   `yaml:"hostname,omitempty"`
	ManageEtcHosts    bool     `yaml:"manage_etc_hosts,omitempty"`
	DisableRoot       bool     `yaml:"disable_root"`
	SSHPasswordAuth   bool     `yaml:"ssh_pwauth"`
	Timezone          string   `yaml:"timezone,omitempty"`
	Users             []User   `yaml:"users,omitempty"`
	ChPasswdExpire    *ChPass  `yaml:"chpasswd,omitempty"`
	SSHAuthorizedKeys []string `yaml:"ssh_authorized_keys,omitempty"`
}

// User cloud-init 用户配置
type User struct {
	Name              string   `yaml:"name"`
	LockPasswd        bool     `yaml:"lock_passwd"`
	HashedPasswd      string   `yaml:"hashed_passwd,omitempty"`
	Sudo              string   `yaml:"sudo,omitempty"`
	Shell             string   `yaml:"shell,omitempty"`
	SSHAuthorizedKeys []string `yaml:"ssh_authorized_keys,omitempty"`
}

// ChPass chpasswd 配置
type ChPass struct {
	Expire bool `yaml:"expire"`
}

// NetworkData NoCloud network-config（netplan v2）文件结构
type NetworkData struct {
	Version   int                 `yaml:"version"`
	Ethernets map[string]Ethernet `yaml:"ethernets"`
}

// Ethernet netplan 以太网配置
type Ethernet struct {
	DHCP4 bool     `yaml:"dhcp4"`
	Match *EthMatch `yaml:"match,omitempty"`
}

// EthMatch 按 MAC 匹配网卡
type EthMatch struct {
	MACAddress string `yaml:"macaddress"`
}
