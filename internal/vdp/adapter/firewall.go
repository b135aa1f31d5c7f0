package adapter

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// IptablesFirewall 基于 iptables 的端口转发实现
// 转发规则写在 nat 表 PREROUTING 链（DNAT）和 filter 表 FORWARD 链
type IptablesFirewall struct {
	binary string
}

var _ HostFirewall = (*IptablesFirewall)(nil)

// NewIptablesFirewall 创建防火墙适配器
func NewIptablesFirewall() *IptablesFirewall {
	return &IptablesFirewall{binary: "iptables"}
}

func (f *IptablesFirewall) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, f.binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", f.binary, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// ruleExists 用 -C 检查规则是否已存在
func (f *IptablesFirewall) ruleExists(ctx context.Context, args []string) bool {
	cmd := exec.CommandContext(ctx, f.binary, args...)
	return cmd.Run() == nil
}

// dnatArgs DNAT 规则参数，action 为 -A、-D 或 -C
func dnatArgs(action string, rule *ForwardRule) []string {
	return []string{
		"-t", "nat", action, "PREROUTING",
		"-p", rule.Protocol,
		"--dport", strconv.Itoa(rule.HostPort),
		"-j", "DNAT",
		"--to-destination", fmt.Sprintf("%s:%d", rule.GuestIP, rule.GuestPort),
	}
}

// forwardArgs FORWARD 放行规则参数
func forwardArgs(action string, rule *ForwardRule) []string {
	return []string{
		action, "FORWARD",
		"-p", rule.Protocol,
		"-d", rule.GuestIP,
		"--dport", strconv.Itoa(rule.GuestPort),
		"-j", "ACCEPT",
	}
}

// InstallForward 安装转发规则，已存在时跳过
func (f *IptablesFirewall) InstallForward(ctx context.Context, rule *ForwardRule) error {
	if rule.Protocol == "" {
		rule.Protocol = "tcp"
	}

	for _, build := range []func(string, *ForwardRule) []string{dnatArgs, forwardArgs} {
		if f.ruleExists(ctx, build("-C", rule)) {
			continue
		}
		if err := f.run(ctx, build("-A", rule)...); err != nil {
			return err
		}
	}

	zerolog.Ctx(ctx).Debug().
		Int("host_port", rule.HostPort).
		Str("guest_ip", rule.GuestIP).
		Int("guest_port", rule.GuestPort).
		Msg("forward rule installed")
	return nil
}

// RemoveForward 移除转发规则，规则不存在视为成功
func (f *IptablesFirewall) RemoveForward(ctx context.Context, rule *ForwardRule) error {
	if rule.Protocol == "" {
		rule.Protocol = "tcp"
	}

	for _, build := range []func(string, *ForwardRule) []string{dnatArgs, forwardArgs} {
		if !f.ruleExists(ctx, build("-C", rule)) {
			continue
		}
		if err := f.run(ctx, build("-D", rule)...); err != nil {
			return err
		}
	}
	return nil
}
