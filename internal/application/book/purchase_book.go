package book

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
	"github.com/xiebiao/bookstore-inventory/pkg/metrics"
	"github.com/xiebiao/bookstore-inventory/pkg/tracing"
)

// PurchaseSuccessMessage 购买成功提示
const PurchaseSuccessMessage = "Book Successfully Purchased"

// PurchaseBookUseCase 购买图书用例(库存核销)
//
// 流程:
//  1. 领域服务在事务内锁行、校验库存、扣减或删除
//  2. 提交后删除详情缓存
//  3. 发布book.purchased,售罄时再发布book.sold_out
//  4. 记录购买结果、售出册数、售罄次数
type PurchaseBookUseCase struct {
	bookService book.Service
	cache       BookCache
	publisher   EventPublisher
	log         *zap.Logger
}

// NewPurchaseBookUseCase 创建购买用例
func NewPurchaseBookUseCase(bookService book.Service, cache BookCache, publisher EventPublisher, log *zap.Logger) *PurchaseBookUseCase {
	return &PurchaseBookUseCase{
		bookService: bookService,
		cache:       cache,
		publisher:   publisher,
		log:         log,
	}
}

// PurchaseBookRequest 购买请求DTO
type PurchaseBookRequest struct {
	ID       uint
	Quantity int
}

// ReceiptResponse 购买凭证DTO,取自扣减前的记录
type ReceiptResponse struct {
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// PurchaseBookResponse 购买响应DTO
type PurchaseBookResponse struct {
	Message   string          `json:"message"`
	Receipt   ReceiptResponse `json:"receipt"`
	Remaining int             `json:"-"`
	SoldOut   bool            `json:"-"`
}

// PurchasedPayload book.purchased事件内容
type PurchasedPayload struct {
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Remaining int     `json:"remaining"`
	SoldOut   bool    `json:"sold_out"`
}

// Execute 执行购买用例
func (uc *PurchaseBookUseCase) Execute(ctx context.Context, req PurchaseBookRequest) (*PurchaseBookResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "PurchaseBook")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("book.id", int64(req.ID)),
		attribute.Int("purchase.quantity", req.Quantity),
	)

	receipt, err := uc.bookService.PurchaseBook(ctx, req.ID, req.Quantity)
	if err != nil {
		metrics.RecordPurchase(purchaseResult(err), req.Quantity, false)
		tracing.RecordError(span, err)
		return nil, err
	}

	metrics.RecordPurchase(metrics.ResultSuccess, receipt.Quantity, receipt.SoldOut)
	span.SetAttributes(
		attribute.Int("book.remaining", receipt.Remaining),
		attribute.Bool("book.sold_out", receipt.SoldOut),
	)

	invalidate(ctx, uc.log, uc.cache, req.ID)

	uc.log.Info("图书已售出",
		zap.Uint("book_id", req.ID),
		zap.Int("quantity", receipt.Quantity),
		zap.Int("remaining", receipt.Remaining),
		zap.Bool("sold_out", receipt.SoldOut),
	)

	publishEvent(ctx, uc.log, uc.publisher, NewEvent(EventBookPurchased, req.ID, PurchasedPayload{
		Title:     receipt.Title,
		Author:    receipt.Author,
		Price:     receipt.Price,
		Quantity:  receipt.Quantity,
		Remaining: receipt.Remaining,
		SoldOut:   receipt.SoldOut,
	}))
	if receipt.SoldOut {
		publishEvent(ctx, uc.log, uc.publisher, NewEvent(EventBookSoldOut, req.ID, nil))
	}

	return &PurchaseBookResponse{
		Message: PurchaseSuccessMessage,
		Receipt: ReceiptResponse{
			Title:    receipt.Title,
			Author:   receipt.Author,
			Price:    receipt.Price,
			Quantity: receipt.Quantity,
		},
		Remaining: receipt.Remaining,
		SoldOut:   receipt.SoldOut,
	}, nil
}

// purchaseResult 错误 → 指标result标签
func purchaseResult(err error) string {
	switch {
	case errors.Is(err, book.ErrInsufficientStock):
		return metrics.ResultInsufficientStock
	case errors.Is(err, book.ErrBookNotFound):
		return metrics.ResultNotFound
	case book.IsValidationError(err):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
