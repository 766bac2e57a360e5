package mysql

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架,生产使用MySQL,本地开发与测试可切换为SQLite
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. auto_migrate=true时自动迁移表结构,生产环境应关闭并使用 bookctl migrate
// 5. 返回的cleanup在进程退出时关闭连接池
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	dialector, err := newDialector(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	if cfg.Database.Driver == config.DriverSQLite {
		// SQLite同一时刻只允许一个写事务,单连接避免"database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Info("数据库连接成功", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		if err := autoMigrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	cleanup := func() {
		if err := sqlDB.Close(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
			return
		}
		log.Info("数据库连接已关闭")
	}

	return db, cleanup, nil
}

func newDialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		return mysql.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

// autoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&BookModel{})
}

// BookModel GORM图书模型
// 设计说明:
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/book/entity.go是领域实体，不依赖GORM
// 3. 表结构与migrations/sql下的版本化脚本保持一致
type BookModel struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"index:idx_search;size:60;not null;comment:书名"`
	Author    string         `gorm:"index:idx_search;size:30;not null;comment:作者"`
	Quantity  int            `gorm:"not null;default:0;comment:库存数量"`
	Price     float64        `gorm:"type:decimal(10,2);not null;default:0;comment:单价"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}
