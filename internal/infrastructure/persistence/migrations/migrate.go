// Package migrations 版本化的数据库迁移
//
// 迁移脚本按驱动分目录嵌入二进制(sql/mysql、sql/sqlite),命名规则:
//
//	{version}_{title}.up.sql
//	{version}_{title}.down.sql
//
// 生产环境关闭database.auto_migrate,通过 bookctl migrate up 执行。
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/config"
)

//go:embed sql
var sqlFS embed.FS

// Migrator 迁移执行器
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New 基于已打开的连接创建迁移执行器
// 注意:Close会同时关闭传入的db
func New(db *sql.DB, driver string, log *zap.Logger) (*Migrator, error) {
	src, err := iofs.New(sqlFS, "sql/"+driver)
	if err != nil {
		return nil, fmt.Errorf("加载迁移脚本失败: %w", err)
	}

	var dbDriver database.Driver
	switch driver {
	case config.DriverMySQL:
		dbDriver, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case config.DriverSQLite:
		dbDriver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("初始化迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, dbDriver)
	if err != nil {
		return nil, fmt.Errorf("初始化迁移失败: %w", err)
	}

	return &Migrator{m: m, log: log}, nil
}

// Up 执行所有未应用的迁移
func (m *Migrator) Up() error {
	return m.run("up", m.m.Up)
}

// Down 回滚所有迁移
func (m *Migrator) Down() error {
	return m.run("down", m.m.Down)
}

// Steps n>0向前执行n个版本,n<0回滚n个版本
func (m *Migrator) Steps(n int) error {
	return m.run(fmt.Sprintf("steps(%d)", n), func() error { return m.m.Steps(n) })
}

// Version 当前版本,dirty表示上次迁移中途失败
func (m *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close 释放源与数据库连接
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (m *Migrator) run(op string, fn func() error) error {
	err := fn()
	if errors.Is(err, migrate.ErrNoChange) {
		m.log.Info("数据库已是最新版本", zap.String("op", op))
		return nil
	}
	if err != nil {
		return fmt.Errorf("迁移%s失败: %w", op, err)
	}

	version, dirty, _ := m.Version()
	m.log.Info("迁移完成", zap.String("op", op), zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
