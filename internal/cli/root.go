// Package cli bookctl运维命令:迁移、种子数据、签发Token、订阅库存事件
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-inventory/pkg/logger"
)

// RootOptions 全局参数
type RootOptions struct {
	ConfigPath string // 为空时按config.Load规则查找
	Verbose    bool
}

// NewRootCommand 创建bookctl根命令
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:          "bookctl",
		Short:        "bookctl - 图书库存服务运维工具",
		Long:         "bookctl 管理图书库存服务的数据库迁移、演示数据、管理员Token与库存事件订阅。",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "配置文件路径(默认 ./config/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "输出debug日志")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))

	return cmd
}

func (o *RootOptions) loadConfig() (*config.Config, error) {
	return config.LoadFrom(o.ConfigPath)
}

// newLogger 命令行日志固定输出到stderr,stdout只留给命令结果
func (o *RootOptions) newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if o.Verbose {
		level = "debug"
	}
	return logger.New(logger.Options{
		Level:  level,
		Format: "console",
		Output: "stderr",
	})
}
