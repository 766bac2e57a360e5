package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/persistence/migrations"
	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/persistence/mysql"
)

// NewMigrateCommand 数据库迁移命令
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "版本化数据库迁移",
		Long: `执行 migrations/sql/<driver> 下嵌入的迁移脚本。

生产环境应关闭 database.auto_migrate,在发布前执行 migrate up。

Examples:
  bookctl migrate up
  bookctl migrate steps -- -1
  bookctl migrate version -c config/config.prod.yaml`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "执行所有未应用的迁移",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(rootOpts, func(m *migrations.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "回滚所有迁移(会删除books表)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(rootOpts, func(m *migrations.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "steps N",
		Short: "N>0向前执行N个版本,N<0回滚N个版本",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n == 0 {
				return fmt.Errorf("无效的步数 %q", args[0])
			}
			return withMigrator(rootOpts, func(m *migrations.Migrator) error {
				if err := m.Steps(n); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "显示当前迁移版本",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(rootOpts, func(m *migrations.Migrator) error {
				return printVersion(cmd, m)
			})
		},
	})

	return cmd
}

// withMigrator 打开数据库并创建迁移执行器
// 迁移时关闭auto_migrate,表结构完全由脚本决定
func withMigrator(rootOpts *RootOptions, fn func(m *migrations.Migrator) error) error {
	cfg, err := rootOpts.loadConfig()
	if err != nil {
		return err
	}
	log, err := rootOpts.newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg.Database.AutoMigrate = false
	db, cleanup, err := mysql.NewDB(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	m, err := migrations.New(sqlDB, cfg.Database.Driver, log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	return fn(m)
}

func printVersion(cmd *cobra.Command, m *migrations.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if dirty {
		fmt.Fprintf(cmd.OutOrStdout(), "version: %d (dirty)\n", version)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version: %d\n", version)
	return nil
}
