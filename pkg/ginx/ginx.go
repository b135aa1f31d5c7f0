// Package ginx 提供 gin handler 适配器
// 把 func(ctx, *Req) (*Resp, error) 形式的业务 handler 适配成 gin.HandlerFunc
// 错误统一按 apierror 的错误码和 HTTP 状态码渲染
package ginx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jimyag/vdp/pkg/apierror"
)

// ErrorBody 错误响应体
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse 错误响应外层
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Handle 适配带请求体的 handler，请求体按 JSON 绑定
func Handle[TReq any, TResp any](fn func(*gin.Context, *TReq) (TResp, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req := new(TReq)
		if ctx.Request.ContentLength > 0 {
			if err := ctx.ShouldBindJSON(req); err != nil {
				RenderError(ctx, apierror.WrapError(apierror.ErrInvalidParameterValue, "malformed request body", err))
				return
			}
		}

		resp, err := fn(ctx, req)
		if err != nil {
			RenderError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, resp)
	}
}

// HandleNoReq 适配无请求体的 handler
func HandleNoReq[TResp any](fn func(*gin.Context) (TResp, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		resp, err := fn(ctx)
		if err != nil {
			RenderError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, resp)
	}
}

// RenderError 渲染错误响应
// apierror 按自带状态码渲染，其他错误一律 500
func RenderError(ctx *gin.Context, err error) {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		ctx.JSON(apiErr.HTTPStatus, ErrorResponse{Error: ErrorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		}})
		return
	}
	ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: ErrorBody{
		Code:    apierror.ErrInternalError.Code,
		Message: err.Error(),
	}})
}
