// Package apierror 提供统一的错误类型，用于所有服务的错误处理
//
// 错误分类遵循编排核心的错误模型：
//   - QuotaExceeded / InsufficientCapacity / PortPoolExhausted
//     表示当前请求无法被满足，不应盲目重试
//   - AdapterFailure / OperationTimeout
//     触发回滚路径后上报给调用方
//   - IncorrectDeploymentState
//     调用方编程错误，立即上报且无副作用
//   - ResourceNotFound / InternalError
//
// 使用 errors.Is 按 Code 判断错误类型：
//
//	if errors.Is(err, apierror.ErrQuotaExceeded) { ... }
package apierror
