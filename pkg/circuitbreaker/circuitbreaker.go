// Package circuitbreaker 熔断器,保护对外部消息中间件的调用
//
// 三种状态:
//   - Closed: 正常放行,统计连续失败次数,达到阈值转为Open
//   - Open: 直接拒绝(ErrOpen),经过OpenTimeout后转为HalfOpen
//   - HalfOpen: 放行少量探测请求,成功则Closed,失败则回到Open
//
// 归还图书后的"副本可借"通知经由熔断器投递:RabbitMQ不可用时
// 快速失败,不拖慢归还请求。
package circuitbreaker

import (
	"context"
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
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrOpen 熔断器打开时直接返回
var ErrOpen = errors.New("circuit breaker is open")

// Settings 熔断器配置
type Settings struct {
	// MaxFailures 连续失败多少次后熔断,默认5
	MaxFailures uint32
	// HalfOpenRequests 半开状态允许的探测请求数,默认1
	HalfOpenRequests uint32
	// Interval Closed状态下统计窗口,到期清零;0表示不清零
	Interval time.Duration
	// OpenTimeout Open状态持续时间,默认30s
	OpenTimeout time.Duration
	// OnStateChange 状态切换回调(记录日志、更新指标)
	OnStateChange func(name string, from, to State)
	// Now 时钟,测试时替换
	Now func() time.Time
}

// Counts 当前统计窗口内的计数
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) success() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) failure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// Breaker 熔断器(并发安全)
type Breaker struct {
	name     string
	settings Settings

	mu         sync.Mutex
	state      State
	generation uint64 // 每次状态切换+1,丢弃跨代的结果
	counts     Counts
	expiry     time.Time
}

// New 创建熔断器
func New(name string, s Settings) *Breaker {
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.HalfOpenRequests == 0 {
		s.HalfOpenRequests = 1
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	if s.Now == nil {
		s.Now = time.Now
	}

	b := &Breaker{name: name, settings: s}
	b.resetWindow(s.Now())
	return b
}

// Name 熔断器名称
func (b *Breaker) Name() string {
	return b.name
}

// Execute 在熔断器保护下执行fn
// 被拒绝时返回ErrOpen,fn不会被调用
// ctx已取消时不计为下游失败
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	generation, err := b.before()
	if err != nil {
		return err
	}

	err = fn(ctx)
	if err != nil && ctx.Err() != nil {
		// 调用方主动放弃,不影响熔断统计
		b.discard(generation)
		return err
	}

	b.after(generation, err == nil)
	return err
}

// State 当前状态
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, _ := b.current(b.settings.Now())
	return state
}

// Counts 当前统计
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

func (b *Breaker) before() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, generation := b.current(b.settings.Now())
	switch {
	case state == StateOpen:
		return generation, ErrOpen
	case state == StateHalfOpen && b.counts.Requests >= b.settings.HalfOpenRequests:
		return generation, ErrOpen
	}

	b.counts.Requests++
	return generation, nil
}

func (b *Breaker) after(before uint64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.settings.Now()
	state, generation := b.current(now)
	if generation != before {
		return
	}

	if ok {
		b.counts.success()
		if state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.settings.HalfOpenRequests {
			b.setState(StateClosed, now)
		}
		return
	}

	b.counts.failure()
	switch state {
	case StateClosed:
		if b.counts.ConsecutiveFailures >= b.settings.MaxFailures {
			b.setState(StateOpen, now)
		}
	case StateHalfOpen:
		b.setState(StateOpen, now)
	}
}

// discard 归还占用的请求名额
func (b *Breaker) discard(before uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.generation == before && b.counts.Requests > 0 {
		b.counts.Requests--
	}
}

// current 处理到期:Closed窗口清零,Open超时转HalfOpen
func (b *Breaker) current(now time.Time) (State, uint64) {
	switch b.state {
	case StateClosed:
		if !b.expiry.IsZero() && b.expiry.Before(now) {
			b.resetWindow(now)
		}
	case StateOpen:
		if b.expiry.Before(now) {
			b.setState(StateHalfOpen, now)
		}
	}
	return b.state, b.generation
}

func (b *Breaker) setState(to State, now time.Time) {
	if b.state == to {
		return
	}

	from := b.state
	b.state = to
	b.generation++

	switch to {
	case StateClosed:
		b.resetWindow(now)
	case StateOpen:
		b.counts = Counts{}
		b.expiry = now.Add(b.settings.OpenTimeout)
	case StateHalfOpen:
		b.counts = Counts{}
		b.expiry = time.Time{}
	}

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}

func (b *Breaker) resetWindow(now time.Time) {
	b.counts = Counts{}
	if b.settings.Interval > 0 {
		b.expiry = now.Add(b.settings.Interval)
	} else {
		b.expiry = time.Time{}
	}
}
