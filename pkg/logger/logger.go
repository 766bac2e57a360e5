// Package logger 基于zap的结构化日志
//
// 使用示例：
//
//	log, err := logger.New(logger.Options{Level: "info", Format: "json", Output: "stdout"})
//	if err != nil {
//	    panic(err)
//	}
//	defer log.Sync()
//	log.Info("服务启动", zap.Int("port", 8080))
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 日志配置
type Options struct {
	Level        string // debug | info | warn | error
	Format       string // console | json
	Output       string // stdout | stderr | /path/to/file
	EnableCaller bool
}

// New 创建zap Logger
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(defaultString(opts.Level, "info")))
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", opts.Level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(defaultString(opts.Format, "json")) {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("无效的日志格式: %s", opts.Format)
	}

	output := defaultString(opts.Output, "stdout")
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableCaller = !opts.EnableCaller
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// NewNop 测试或未配置日志时使用
func NewNop() *zap.Logger {
	return zap.NewNop()
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
