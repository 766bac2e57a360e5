// Package messaging 库存事件发布(RabbitMQ)
package messaging

import (
	"context"

	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookstore-inventory/internal/application/book"
	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-inventory/pkg/mq"
)

// messagePublisher mq.Publisher的最小接口
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// EventPublisher 将库存事件发布到Topic Exchange,routing key为事件类型
type EventPublisher struct {
	pub messagePublisher
}

var _ appbook.EventPublisher = (*EventPublisher)(nil)

// Publish 发布事件
func (p *EventPublisher) Publish(ctx context.Context, event appbook.Event) error {
	return p.pub.Publish(ctx, event.Type, event)
}

// NewEventPublisher 按配置创建事件发布器
// mq.enabled=false时返回NopPublisher
func NewEventPublisher(cfg *config.Config, log *zap.Logger) (appbook.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		log.Info("消息队列未开启,库存事件不发布")
		return appbook.NopPublisher{}, func() {}, nil
	}

	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, log)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := pub.Close(); err != nil {
			log.Warn("关闭消息发布者失败", zap.Error(err))
		}
	}
	return &EventPublisher{pub: pub}, cleanup, nil
}
