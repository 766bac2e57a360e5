package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
	"github.com/xiebiao/bookstore-inventory/pkg/metrics"
	"github.com/xiebiao/bookstore-inventory/pkg/tracing"
)

// DeleteBookUseCase 图书下架用例,返回被删除的记录
type DeleteBookUseCase struct {
	bookService book.Service
	cache       BookCache
	publisher   EventPublisher
	log         *zap.Logger
}

// NewDeleteBookUseCase 创建下架用例
func NewDeleteBookUseCase(bookService book.Service, cache BookCache, publisher EventPublisher, log *zap.Logger) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		bookService: bookService,
		cache:       cache,
		publisher:   publisher,
		log:         log,
	}
}

// Execute 执行下架用例
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) (*BookResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "DeleteBook")
	defer span.End()
	span.SetAttributes(attribute.Int64("book.id", int64(id)))

	b, err := uc.bookService.DeleteBook(ctx, id)
	metrics.RecordOperation("delete", err)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	invalidate(ctx, uc.log, uc.cache, id)

	resp := toBookResponse(b)
	uc.log.Info("图书已下架", zap.Uint("book_id", id))
	publishEvent(ctx, uc.log, uc.publisher, NewEvent(EventBookDeleted, id, resp))
	return resp, nil
}
