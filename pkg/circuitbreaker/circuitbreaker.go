// Package circuitbreaker 熔断器
//
// 用于保护非关键依赖(如Redis缓存):依赖故障时快速失败,
// 调用方降级为直接读数据库,不必每次等待超时。
//
// 状态转换:
//
//	CLOSED --(ReadyToTrip)--> OPEN --(Timeout)--> HALF_OPEN
//	HALF_OPEN --(成功)--> CLOSED
//	HALF_OPEN --(失败)--> OPEN
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config 熔断器配置
type Config struct {
	// MaxRequests 半开状态下允许通过的探测请求数
	MaxRequests uint32
	// Interval CLOSED状态的统计窗口,到期清零
	Interval time.Duration
	// Timeout OPEN状态持续时间,之后进入HALF_OPEN
	Timeout time.Duration
	// ReadyToTrip 返回true时打开熔断器
	ReadyToTrip func(counts Counts) bool
	// IsSuccessful 判断err是否计为成功,为空时仅nil视为成功
	// 缓存未命中之类的业务结果不应计入失败
	IsSuccessful func(err error) bool
}

// DefaultConfig 连续失败5次熔断,30秒后探测
func DefaultConfig() Config {
	return Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

// Counts 统计数据
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// FailureRate 失败率
func (c *Counts) FailureRate() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.TotalFailures) / float64(c.Requests)
}

func (c *Counts) reset() {
	*c = Counts{}
}

// Requests在beforeRequest中已递增
func (c *Counts) onSuccess() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) onFailure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// CircuitBreaker 熔断器,并发安全
type CircuitBreaker struct {
	name         string
	maxRequests  uint32
	interval     time.Duration
	timeout      time.Duration
	readyToTrip  func(counts Counts) bool
	isSuccessful func(err error) bool

	mu            sync.Mutex
	state         State
	generation    uint64 // 每次状态切换递增,丢弃跨代的结果
	counts        Counts
	expiry        time.Time
	onStateChange func(name string, from State, to State)
}

// ErrOpenState 熔断器打开(或半开且探测请求已满)
var ErrOpenState = errors.New("circuit breaker is open")

// NewCircuitBreaker 创建熔断器
//
//	cb := circuitbreaker.NewCircuitBreaker("book-cache", circuitbreaker.DefaultConfig())
//	err := cb.Execute(func() error {
//	    return rdb.Get(ctx, key).Err()
//	})
func NewCircuitBreaker(name string, config Config) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:         name,
		maxRequests:  config.MaxRequests,
		interval:     config.Interval,
		timeout:      config.Timeout,
		readyToTrip:  config.ReadyToTrip,
		isSuccessful: config.IsSuccessful,
		state:        StateClosed,
		expiry:       time.Now().Add(config.Interval),
	}
	if cb.maxRequests == 0 {
		cb.maxRequests = 1
	}
	if cb.readyToTrip == nil {
		cb.readyToTrip = DefaultConfig().ReadyToTrip
	}
	if cb.isSuccessful == nil {
		cb.isSuccessful = func(err error) bool { return err == nil }
	}
	return cb
}

// Name 熔断器名称
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// SetStateChangeCallback 状态变化回调,用于日志和指标
// 回调在持锁状态下执行,不能再调用cb的方法
func (cb *CircuitBreaker) SetStateChangeCallback(fn func(name string, from State, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Execute 执行请求
// 熔断时返回ErrOpenState且不调用req,否则原样返回req的错误
func (cb *CircuitBreaker) Execute(req func() error) error {
	generation, err := cb.beforeRequest()
	if err != nil {
		return err
	}

	err = req()
	cb.afterRequest(generation, cb.isSuccessful(err))
	return err
}

func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, generation := cb.currentState(time.Now())
	switch {
	case state == StateOpen:
		return generation, ErrOpenState
	case state == StateHalfOpen && cb.counts.Requests >= cb.maxRequests:
		return generation, ErrOpenState
	}

	cb.counts.Requests++
	return generation, nil
}

func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, generation := cb.currentState(now)
	if generation != before {
		return
	}

	if success {
		cb.counts.onSuccess()
		if state == StateHalfOpen {
			cb.setState(StateClosed, now)
		}
		return
	}

	cb.counts.onFailure()
	switch state {
	case StateClosed:
		if cb.readyToTrip(cb.counts) {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setState(StateOpen, now)
	}
}

// currentState CLOSED窗口到期清零计数,OPEN超时转HALF_OPEN
func (cb *CircuitBreaker) currentState(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.counts.reset()
			cb.expiry = now.Add(cb.interval)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.setState(StateHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.generation++
	cb.counts.reset()

	switch state {
	case StateClosed:
		cb.expiry = now.Add(cb.interval)
	case StateOpen:
		cb.expiry = now.Add(cb.timeout)
	case StateHalfOpen:
		cb.expiry = time.Time{}
	}

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state)
	}
}

// State 当前状态
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	state, _ := cb.currentState(time.Now())
	return state
}

// Counts 当前统计
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.counts
}
