// Package network 管理宿主机转发端口的分配和 NAT 规则的安装
package network

import (
	"sync"

	"github.com/jimyag/vdp/pkg/apierror"
)

// Pool 单节点上一段连续端口的分配池
// 总是分配可用端口中最小的一个，释放后可复用
type Pool struct {
	mu    sync.Mutex
	start int
	end   int // 闭区间
	used  map[int]bool
}

// NewPool 创建端口池，区间为 [start, end]
func NewPool(start, end int) *Pool {
	return &Pool{
		start: start,
		end:   end,
		used:  make(map[int]bool),
	}
}

// Allocate 分配最小可用端口
// 池耗尽时返回 ErrPortPoolExhausted
func (p *Pool) Allocate() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for port := p.start; port <= p.end; port++ {
		if !p.used[port] {
			p.used[port] = true
			return port, nil
		}
	}
	return 0, apierror.WrapError(apierror.ErrPortPoolExhausted, "no free port in pool", nil)
}

// Release 释放端口，未分配的端口释放是无操作
func (p *Pool) Release(port int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.used, port)
}

// Restore 把端口标记为已占用，启动时按存量部署恢复池状态
// 端口不在区间内时忽略
func (p *Pool) Restore(port int) {
	if port < p.start || port > p.end {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.used[port] = true
}

// Free 剩余可用端口数
func (p *Pool) Free() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.end - p.start + 1 - len(p.used)
}
