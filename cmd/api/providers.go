package main

import (
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookstore-inventory/internal/application/book"
	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookstore-inventory/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-inventory/pkg/jwt"
	"github.com/xiebiao/bookstore-inventory/pkg/logger"
)

// App 进程级依赖,由InitializeApp组装
type App struct {
	Config *config.Config
	Log    *zap.Logger
	Engine *gin.Engine
}

func newApp(cfg *config.Config, log *zap.Logger, engine *gin.Engine) *App {
	return &App{Config: cfg, Log: log, Engine: engine}
}

// provideLogger 从配置创建Logger并替换zap全局Logger
func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return nil, nil, err
	}

	undo := zap.ReplaceGlobals(log)
	cleanup := func() {
		_ = log.Sync()
		undo()
	}
	return log, cleanup, nil
}

// provideBookCache Redis未开启时client为nil,使用NopCache
func provideBookCache(cfg *config.Config, client *goredis.Client, log *zap.Logger) appbook.BookCache {
	if client == nil {
		return appbook.NopCache{}
	}
	return redis.NewBookCache(client, cfg.Redis.CacheTTL, log)
}

// provideJWTManager jwt.NewManager只需要Auth配置,Wire无法自动从Config提取
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenExpire)
}

func provideAuthMiddleware(cfg *config.Config, manager *jwt.Manager) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(manager, cfg.Auth.Enabled)
}
