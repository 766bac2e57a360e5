// Package router 组装gin引擎:全局中间件、业务路由、运维路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/xiebiao/bookstore-inventory/docs" // swagger文档注册
	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-inventory/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-inventory/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-inventory/pkg/response"
)

// New 创建并配置Gin引擎
//
// 中间件顺序:Recovery → Tracing → RequestLogger → Metrics → 路由
// RequestLogger在Tracing之后,日志才能带上trace_id
func New(
	cfg *config.Config,
	log *zap.Logger,
	bookHandler *handler.BookHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode:
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.Tracing(),
		middleware.RequestLogger(log, cfg.Server.SlowThreshold),
		middleware.Metrics(),
	)

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 生产环境不暴露Swagger
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	{
		books := v1.Group("/books")
		{
			// 公开接口:查询与顾客购买
			books.GET("", bookHandler.ListBooks)
			books.GET("/:id", bookHandler.GetBook)
			books.PUT("/:id", bookHandler.PurchaseBook)

			// 库存管理,auth.enabled=true时要求管理员Token
			admin := books.Group("", authMiddleware.RequireAdmin())
			admin.POST("", bookHandler.CreateBook)
			admin.PATCH("/:id", bookHandler.UpdateBook)
			admin.DELETE("/:id", bookHandler.DeleteBook)
		}
	}

	return r
}
