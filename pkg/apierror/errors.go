package apierror

// 编排核心的预定义错误
// Code 命名参考 AWS EC2 错误码风格
var (
	// ErrQuotaExceeded 用户配额不足
	// 请求的部署会使 vm 数量、vCPU、内存或磁盘超过该用户的配额上限
	// 调用方不应重试，除非配额提升或释放了已有部署
	ErrQuotaExceeded = &Error{
		Code:       "QuotaExceeded",
		Message:    "The requested deployment would exceed your resource quota. Delete existing deployments or request a quota increase.",
		HTTPStatus: 403,
	}

	// ErrInsufficientCapacity 没有任何计算节点能容纳请求的资源
	// 这不是瞬时故障，在集群容量变化前重试没有意义
	ErrInsufficientCapacity = &Error{
		Code:       "InsufficientCapacity",
		Message:    "There is not enough capacity on any compute node to fulfill your request. Wait for capacity to become available or choose a smaller plan.",
		HTTPStatus: 409,
	}

	// ErrPortPoolExhausted 节点的 SSH 或控制台端口池已耗尽
	ErrPortPoolExhausted = &Error{
		Code:       "PortPoolExhausted",
		Message:    "No free ports remain in the node port pool. Wait for existing deployments to be deleted.",
		HTTPStatus: 409,
	}

	// ErrAdapterFailure 能力适配器调用失败
	// 编排器已执行回滚，部署处于 failed 状态
	ErrAdapterFailure = &Error{
		Code:       "AdapterFailure",
		Message:    "A capability adapter call failed. The deployment has been rolled back.",
		HTTPStatus: 502,
	}

	// ErrOperationTimeout 有界等待超时（例如等待客户机网络地址）
	// 编排器已执行回滚
	ErrOperationTimeout = &Error{
		Code:       "OperationTimeout",
		Message:    "The operation did not complete within the bounded wait. The deployment has been rolled back.",
		HTTPStatus: 504,
	}

	// ErrIncorrectDeploymentState 部署当前状态不允许该操作
	// 调用方编程错误，无副作用
	ErrIncorrectDeploymentState = &Error{
		Code:       "IncorrectDeploymentState",
		Message:    "The deployment is not in a state that allows the requested operation.",
		HTTPStatus: 409,
	}

	// ErrInvalidParameterValue 请求参数非法
	ErrInvalidParameterValue = &Error{
		Code:       "InvalidParameterValue",
		Message:    "A parameter in the request is missing or invalid.",
		HTTPStatus: 400,
	}

	// ErrResourceNotFound 请求的资源不存在
	ErrResourceNotFound = &Error{
		Code:       "ResourceNotFound",
		Message:    "The specified resource does not exist.",
		HTTPStatus: 404,
	}

	// ErrInternalError 发生了内部错误
	ErrInternalError = &Error{
		Code:       "InternalError",
		Message:    "An internal error has occurred. Retry your request, but if the problem persists, contact the operator.",
		HTTPStatus: 500,
	}
)
