package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
	"github.com/xiebiao/bookstore-inventory/pkg/metrics"
	"github.com/xiebiao/bookstore-inventory/pkg/tracing"
)

// CreateBookUseCase 图书上架用例
// 设计说明:
// 1. 应用层负责用例编排,业务规则校验由领域服务负责
// 2. 输入输出使用DTO,与HTTP层解耦
// 3. 上架成功后发布book.created事件
type CreateBookUseCase struct {
	bookService book.Service
	publisher   EventPublisher
	log         *zap.Logger
}

// NewCreateBookUseCase 创建上架用例
func NewCreateBookUseCase(bookService book.Service, publisher EventPublisher, log *zap.Logger) *CreateBookUseCase {
	return &CreateBookUseCase{
		bookService: bookService,
		publisher:   publisher,
		log:         log,
	}
}

// CreateBookRequest 上架请求DTO
type CreateBookRequest struct {
	Name     string
	Author   string
	Quantity int
	Price    float64
}

// Execute 执行上架用例
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateBook")
	defer span.End()

	b, err := uc.bookService.CreateBook(ctx, book.CreateParams{
		Name:     req.Name,
		Author:   req.Author,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	metrics.RecordOperation("create", err)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	resp := toBookResponse(b)
	uc.log.Info("图书已上架", zap.Uint("book_id", b.ID), zap.String("name", b.Name), zap.Int("quantity", b.Quantity))
	publishEvent(ctx, uc.log, uc.publisher, NewEvent(EventBookCreated, b.ID, resp))
	return resp, nil
}
