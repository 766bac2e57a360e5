//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 修改Provider后运行 `wire gen ./cmd/api` 重新生成wire_gen.go
// 带cleanup的Provider(数据库、Redis、MQ、Logger)由Wire按逆序串联关闭

package main

import (
	"github.com/google/wire"

	appbook "github.com/xiebiao/bookstore-inventory/internal/application/book"
	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/messaging"
	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookstore-inventory/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-inventory/internal/interface/http/router"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,
	provideLogger,
	mysql.NewDB,
	redis.NewClient,
	provideBookCache,
	messaging.NewEventPublisher,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewBookRepository,
	mysql.NewTxManager,
	wire.Bind(new(book.Transactor), new(*mysql.TxManager)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	book.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewPurchaseBookUseCase,
)

// interfaceSet 接口层依赖
var interfaceSet = wire.NewSet(
	provideJWTManager,
	provideAuthMiddleware,
	handler.NewBookHandler,
	router.New,
)

// InitializeApp 初始化整个应用
// 返回的cleanup按创建的逆序释放资源
func InitializeApp() (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
		newApp,
	)
	return nil, nil, nil
}
