package orchestrator

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// rollbackStep 一个补偿动作
// 实现必须幂等：资源已不存在时返回成功
type rollbackStep struct {
	name string
	fn   func(ctx context.Context) error
}

// rollback 补偿动作栈
// 资源每获取一项就压入对应的补偿动作，失败时逆序执行
type rollback struct {
	steps []rollbackStep
}

const (
	rollbackRetries = 3
	rollbackBackoff = 500 * time.Millisecond
)

// add 压入补偿动作
func (r *rollback) add(name string, fn func(ctx context.Context) error) {
	r.steps = append(r.steps, rollbackStep{name: name, fn: fn})
}

// run 逆序执行所有补偿动作
// 单步失败重试后仍失败则记录并继续，保证其余资源尽量释放
func (r *rollback) run(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	for i := len(r.steps) - 1; i >= 0; i-- {
		step := r.steps[i]

		var err error
		for attempt := 1; attempt <= rollbackRetries; attempt++ {
			if err = step.fn(ctx); err == nil {
				break
			}
			logger.Warn().
				Err(err).
				Str("step", step.name).
				Int("attempt", attempt).
				Msg("rollback step failed")
			if attempt < rollbackRetries {
				time.Sleep(rollbackBackoff * time.Duration(attempt))
			}
		}
		if err != nil {
			// 放弃该步，剩余补偿继续执行，残留资源靠人工或计量器发现
			logger.Error().
				Err(err).
				Str("step", step.name).
				Msg("rollback step abandoned after retries")
		}
	}
	r.steps = nil
}
