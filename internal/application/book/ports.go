package book

import (
	"context"
	"time"

	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

// BookCache 图书详情缓存(Cache-Aside)
// 缓存只加速读,任何错误都不影响主流程
//
// 回填带版本号:Get未命中时返回当前版本,Set仅在版本未变时写入。
// Delete递增版本,读库与写操作交错时旧记录不会被写回缓存。
type BookCache interface {
	// Get 命中返回记录;未命中返回(nil, version, nil)
	Get(ctx context.Context, id uint) (*book.Book, int64, error)
	// Set 版本仍为version时回填,否则放弃
	Set(ctx context.Context, b *book.Book, version int64) error
	// Delete 写操作提交后调用
	Delete(ctx context.Context, id uint) error
}

// NopCache 未开启Redis时使用
type NopCache struct{}

func (NopCache) Get(context.Context, uint) (*book.Book, int64, error) { return nil, 0, nil }
func (NopCache) Set(context.Context, *book.Book, int64) error         { return nil }
func (NopCache) Delete(context.Context, uint) error                   { return nil }

// 库存事件类型,同时作为RabbitMQ的routing key
const (
	EventBookCreated   = "book.created"
	EventBookUpdated   = "book.updated"
	EventBookDeleted   = "book.deleted"
	EventBookPurchased = "book.purchased"
	EventBookSoldOut   = "book.sold_out"
)

// Event 库存事件
// 事务提交后发布,至多一次:发布失败只记日志,不回滚业务
type Event struct {
	Type       string    `json:"type"`
	BookID     uint      `json:"book_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// NewEvent 创建事件,OccurredAt取当前UTC时间
func NewEvent(eventType string, bookID uint, payload any) Event {
	return Event{
		Type:       eventType,
		BookID:     bookID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// EventPublisher 事件发布器
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher 未开启消息队列时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
