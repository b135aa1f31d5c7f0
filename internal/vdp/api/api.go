// Package api 暴露部署编排的 HTTP 接口
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/vdp/internal/vdp/orchestrator"
)

// API HTTP 服务
type API struct {
	engine *gin.Engine
	server *http.Server

	deployment *Deployment
	catalog    *Catalog
}

// New 创建 API 服务
func New(addr string, orch *orchestrator.Orchestrator, logger zerolog.Logger) *API {
	engine := newEngine(logger)

	api := &API{
		engine:     engine,
		deployment: NewDeployment(orch),
		catalog:    NewCatalog(orch),
	}
	root := engine.Group("/api")
	api.deployment.RegisterRoutes(root)
	api.catalog.RegisterRoutes(root)

	api.server = &http.Server{
		Addr:    addr,
		Handler: engine,
	}
	return api
}

// newEngine 组装带日志注入的 gin 引擎
// handler 直接收 *gin.Context，取值需要回落到 Request.Context()
func newEngine(logger zerolog.Logger) *gin.Engine {
	engine := gin.New()
	engine.ContextWithFallback = true
	engine.Use(gin.Recovery(), requestLogger(logger))
	return engine
}

// requestLogger 把带请求字段的 logger 注入请求上下文
// 下游通过 zerolog.Ctx(ctx) 取用
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reqLogger := logger.With().
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Logger()
		ctx.Request = ctx.Request.WithContext(reqLogger.WithContext(ctx.Request.Context()))
		ctx.Next()
	}
}

// Run 启动 HTTP 服务，阻塞直到服务关闭
func (a *API) Run(ctx context.Context) error {
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Name 实现 grace.Grace 接口
func (a *API) Name() string {
	return "vdp-api"
}
