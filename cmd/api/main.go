package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-inventory/pkg/metrics"
	"github.com/xiebiao/bookstore-inventory/pkg/tracing"
)

// @title           Bookstore Inventory API
// @version         1.0
// @description     图书库存服务:上架、查询、更新、下架、购买(库存核销)
// @host            localhost:8080
// @BasePath        /
//
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                管理员Token,格式: Bearer <token>
func main() {
	app, cleanup, err := InitializeApp()
	if err != nil {
		log.Fatalf("初始化应用失败: %v", err)
	}
	defer cleanup()

	if err := run(app); err != nil {
		app.Log.Error("服务异常退出", zap.Error(err))
		cleanup()
		log.Fatal(err)
	}
}

// run 启动HTTP服务,收到SIGINT/SIGTERM后优雅关闭
func run(app *App) error {
	cfg := app.Config

	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
	}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				app.Log.Warn("关闭链路追踪失败", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		app.Log.Info("服务启动",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.Server.Mode),
			zap.String("database", cfg.Database.Driver),
			zap.Bool("redis", cfg.Redis.Enabled),
			zap.Bool("mq", cfg.MQ.Enabled),
			zap.Bool("auth", cfg.Auth.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	app.Log.Info("收到退出信号,开始优雅关闭", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	app.Log.Info("服务已停止")
	return nil
}
