package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookstore-inventory/internal/application/book"
	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
	"github.com/xiebiao/bookstore-inventory/pkg/circuitbreaker"
	"github.com/xiebiao/bookstore-inventory/pkg/metrics"
)

const cacheBreakerName = "book-cache"

// minVersionTTL 版本号Key的最短保留时间,需远长于一次读库回填
const minVersionTTL = 24 * time.Hour

// fillScript 版本号未变时才回填
// KEYS[1]=数据Key KEYS[2]=版本Key ARGV[1]=读取时的版本 ARGV[2]=JSON ARGV[3]=TTL(ms)
var fillScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[2])
if not cur then cur = '0' end
if tonumber(cur) ~= tonumber(ARGV[1]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// invalidateScript 版本号+1并删除缓存
// KEYS[1]=数据Key KEYS[2]=版本Key ARGV[1]=版本Key TTL(ms)
var invalidateScript = redis.NewScript(`
redis.call('INCR', KEYS[2])
redis.call('PEXPIRE', KEYS[2], ARGV[1])
redis.call('DEL', KEYS[1])
return 1
`)

// BookCache Redis图书详情缓存
// 1. Key格式:inventory:book:{id},版本号inventory:book:{id}:ver
// 2. 写操作后版本号+1并删除缓存,未命中时带版本回填,版本已变则放弃
// 3. 删除失败的ID记入pending,恢复后先补删再提供缓存
// 4. 熔断器保护:Redis故障时快速失败,调用方降级读数据库
type BookCache struct {
	client     *redis.Client
	ttl        time.Duration
	versionTTL time.Duration
	cb         *circuitbreaker.CircuitBreaker
	log        *zap.Logger

	mu      sync.Mutex
	pending map[uint]struct{}
}

var _ appbook.BookCache = (*BookCache)(nil)

// cachedBook 缓存中的JSON结构
type cachedBook struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Author    string    `json:"author"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBookCache 创建图书缓存
func NewBookCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *BookCache {
	cfg := circuitbreaker.DefaultConfig()
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, redis.Nil)
	}

	cb := circuitbreaker.NewCircuitBreaker(cacheBreakerName, cfg)
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Warn("熔断器状态变化",
			zap.String("name", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
		metrics.SetCircuitBreakerState(name, int(to))
	})

	versionTTL := minVersionTTL
	if 2*ttl > versionTTL {
		versionTTL = 2 * ttl
	}

	return &BookCache{
		client:     client,
		ttl:        ttl,
		versionTTL: versionTTL,
		cb:         cb,
		log:        log,
		pending:    make(map[uint]struct{}),
	}
}

// Get 获取图书详情缓存
// 未命中返回(nil, version, nil),version用于随后的Set
func (c *BookCache) Get(ctx context.Context, id uint) (*book.Book, int64, error) {
	if err := c.flushPending(ctx, id); err != nil {
		metrics.RecordCache(metrics.ResultError)
		return nil, 0, err
	}

	var vals []any
	err := c.execute(func() error {
		var err error
		vals, err = c.client.MGet(ctx, bookKey(id), versionKey(id)).Result()
		return err
	})
	if err != nil {
		metrics.RecordCache(metrics.ResultError)
		return nil, 0, fmt.Errorf("获取缓存失败: %w", err)
	}

	version, err := parseVersion(vals[1])
	if err != nil {
		metrics.RecordCache(metrics.ResultError)
		return nil, 0, err
	}

	raw, ok := vals[0].(string)
	if !ok {
		metrics.RecordCache(metrics.ResultMiss)
		return nil, version, nil
	}

	var cb cachedBook
	if err := json.Unmarshal([]byte(raw), &cb); err != nil {
		metrics.RecordCache(metrics.ResultError)
		return nil, 0, fmt.Errorf("反序列化失败: %w", err)
	}

	metrics.RecordCache(metrics.ResultHit)
	return &book.Book{
		ID:        cb.ID,
		Name:      cb.Name,
		Author:    cb.Author,
		Quantity:  cb.Quantity,
		Price:     cb.Price,
		CreatedAt: cb.CreatedAt,
		UpdatedAt: cb.UpdatedAt,
	}, version, nil
}

// Set 回填图书详情缓存
// 版本号与Get时不一致说明期间有写操作,放弃回填
func (c *BookCache) Set(ctx context.Context, b *book.Book, version int64) error {
	if c.isPending(b.ID) {
		return nil
	}

	val, err := json.Marshal(cachedBook{
		ID:        b.ID,
		Name:      b.Name,
		Author:    b.Author,
		Quantity:  b.Quantity,
		Price:     b.Price,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}

	var written int64
	err = c.execute(func() error {
		var err error
		written, err = fillScript.Run(ctx, c.client,
			[]string{bookKey(b.ID), versionKey(b.ID)},
			version, string(val), c.ttl.Milliseconds(),
		).Int64()
		return err
	})
	if err != nil {
		return fmt.Errorf("设置缓存失败: %w", err)
	}
	if written == 0 {
		metrics.RecordCache(metrics.ResultStale)
		c.log.Debug("缓存版本已变化,放弃回填", zap.Uint("book_id", b.ID), zap.Int64("version", version))
	}
	return nil
}

// Delete 版本号+1并删除图书详情缓存
// 失败时记入pending,下次访问该ID时补删
func (c *BookCache) Delete(ctx context.Context, id uint) error {
	if err := c.invalidate(ctx, id); err != nil {
		c.mu.Lock()
		c.pending[id] = struct{}{}
		c.mu.Unlock()
		return err
	}
	return nil
}

func (c *BookCache) invalidate(ctx context.Context, id uint) error {
	err := c.execute(func() error {
		return invalidateScript.Run(ctx, c.client,
			[]string{bookKey(id), versionKey(id)},
			c.versionTTL.Milliseconds(),
		).Err()
	})
	if err != nil {
		return fmt.Errorf("删除缓存失败: %w", err)
	}
	return nil
}

// flushPending 补删之前删除失败的缓存,补删成功前不提供该ID的缓存
func (c *BookCache) flushPending(ctx context.Context, id uint) error {
	if !c.isPending(id) {
		return nil
	}
	if err := c.invalidate(ctx, id); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
	c.log.Info("补删图书缓存成功", zap.Uint("book_id", id))
	return nil
}

func (c *BookCache) isPending(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[id]
	return ok
}

// State 熔断器当前状态
func (c *BookCache) State() circuitbreaker.State {
	return c.cb.State()
}

func (c *BookCache) execute(fn func() error) error {
	err := c.cb.Execute(fn)
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		metrics.RecordCircuitBreaker(cacheBreakerName, metrics.ResultRejected)
	case err == nil, errors.Is(err, redis.Nil):
		metrics.RecordCircuitBreaker(cacheBreakerName, metrics.ResultSuccess)
	default:
		metrics.RecordCircuitBreaker(cacheBreakerName, metrics.ResultFailure)
	}
	return err
}

// bookKey 格式:inventory:book:{id}
func bookKey(id uint) string {
	return fmt.Sprintf("inventory:book:%d", id)
}

func versionKey(id uint) string {
	return fmt.Sprintf("inventory:book:%d:ver", id)
}

// parseVersion 版本Key不存在时为0
func parseVersion(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	version, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("解析缓存版本失败: %w", err)
	}
	return version, nil
}
