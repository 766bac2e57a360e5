package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
	"github.com/xiebiao/bookstore-inventory/pkg/tracing"
)

// GetBookUseCase 图书详情查询用例
// Cache-Aside:先查缓存,未命中查数据库并按版本回填
// 缓存故障时降级为直接查数据库,且不回填
type GetBookUseCase struct {
	bookService book.Service
	cache       BookCache
	log         *zap.Logger
}

// NewGetBookUseCase 创建详情查询用例
func NewGetBookUseCase(bookService book.Service, cache BookCache, log *zap.Logger) *GetBookUseCase {
	return &GetBookUseCase{
		bookService: bookService,
		cache:       cache,
		log:         log,
	}
}

// Execute 执行详情查询用例
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "GetBook")
	defer span.End()
	span.SetAttributes(attribute.Int64("book.id", int64(id)))

	if err := book.ValidateID(id); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	cached, version, err := uc.cache.Get(ctx, id)
	cacheOK := err == nil
	if !cacheOK {
		uc.log.Warn("读取图书缓存失败,降级查询数据库", zap.Uint("book_id", id), zap.Error(err))
	}
	if cached != nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return toBookResponse(cached), nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	if cacheOK {
		if err := uc.cache.Set(ctx, b, version); err != nil {
			uc.log.Warn("写入图书缓存失败", zap.Uint("book_id", id), zap.Error(err))
		}
	}
	return toBookResponse(b), nil
}
