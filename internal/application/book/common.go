package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
)

const tracerName = "bookstore-inventory/application/book"

// BookResponse 图书详情DTO
type BookResponse struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Author   string  `json:"author"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func toBookResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:       b.ID,
		Name:     b.Name,
		Author:   b.Author,
		Quantity: b.Quantity,
		Price:    b.Price,
	}
}

// publishEvent 事务提交后发布事件,失败只记日志
func publishEvent(ctx context.Context, log *zap.Logger, publisher EventPublisher, event Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn("发布库存事件失败",
			zap.String("type", event.Type),
			zap.Uint("book_id", event.BookID),
			zap.Error(err),
		)
	}
}

// invalidate 删除详情缓存,失败只记日志(缓存有TTL兜底)
func invalidate(ctx context.Context, log *zap.Logger, cache BookCache, id uint) {
	if err := cache.Delete(ctx, id); err != nil {
		log.Warn("删除图书缓存失败", zap.Uint("book_id", id), zap.Error(err))
	}
}
