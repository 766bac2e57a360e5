package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
	"github.com/xiebiao/bookstore-inventory/pkg/metrics"
	"github.com/xiebiao/bookstore-inventory/pkg/tracing"
)

// UpdateBookUseCase 图书部分更新用例
// 只覆盖请求中出现的字段,更新后删除详情缓存
type UpdateBookUseCase struct {
	bookService book.Service
	cache       BookCache
	publisher   EventPublisher
	log         *zap.Logger
}

// NewUpdateBookUseCase 创建更新用例
func NewUpdateBookUseCase(bookService book.Service, cache BookCache, publisher EventPublisher, log *zap.Logger) *UpdateBookUseCase {
	return &UpdateBookUseCase{
		bookService: bookService,
		cache:       cache,
		publisher:   publisher,
		log:         log,
	}
}

// UpdateBookRequest 更新请求DTO,nil字段不修改
type UpdateBookRequest struct {
	ID       uint
	Name     *string
	Author   *string
	Quantity *int
	Price    *float64
}

// Execute 执行更新用例
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "UpdateBook")
	defer span.End()
	span.SetAttributes(attribute.Int64("book.id", int64(req.ID)))

	b, err := uc.bookService.UpdateBook(ctx, req.ID, book.UpdateParams{
		Name:     req.Name,
		Author:   req.Author,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	metrics.RecordOperation("update", err)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	invalidate(ctx, uc.log, uc.cache, b.ID)

	resp := toBookResponse(b)
	publishEvent(ctx, uc.log, uc.publisher, NewEvent(EventBookUpdated, b.ID, resp))
	return resp, nil
}
