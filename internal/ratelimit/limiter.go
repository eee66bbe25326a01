// Package ratelimit guards upstream calls with a daily quota and a concurrency ceiling.
//
// A Limiter owns exactly one Quota. Every successful Acquire hands out a Permit
// that must be released once, on every exit path of the guarded call.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/clock"
)

// デフォルト値
const (
	DefaultDailyAllowance = 1000
	DefaultPeriod         = 24 * time.Hour
	DefaultMaxConcurrent  = 10
)

// Config はLimiterの設定
type Config struct {
	DailyAllowance int           // 期間あたりの呼び出し回数
	Period         time.Duration // クォータの補充周期
	MaxConcurrent  int           // 同時実行数の上限
	RatePerSecond  float64       // 0 なら平滑化なし
	Burst          int
}

// Quota はクォータのスナップショット
type Quota struct {
	Remaining   int       `json:"remaining"`
	ResetAt     time.Time `json:"resetAt"`
	ActiveCount int       `json:"activeCount"`
	Ceiling     int       `json:"ceiling"`
	Allowance   int       `json:"allowance"`
}

// Limiter は日次クォータと同時実行数を管理する
type Limiter struct {
	mu        sync.Mutex
	clock     clock.Clock
	logger    *slog.Logger
	allowance int
	period    time.Duration
	ceiling   int
	remaining int
	resetAt   time.Time
	active    int
	smoothing *rate.Limiter

	// WithInitialQuota で指定された初期値
	initRemaining *int
	initResetAt   time.Time
}

// Option はLimiterのオプション
type Option func(*Limiter)

// WithClock はClockを設定
func WithClock(c clock.Clock) Option {
	return func(l *Limiter) {
		l.clock = c
	}
}

// WithLogger はloggerを設定
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// WithInitialQuota は残数とリセット時刻の初期値を設定
func WithInitialQuota(remaining int, resetAt time.Time) Option {
	return func(l *Limiter) {
		l.initRemaining = &remaining
		l.initResetAt = resetAt
	}
}

// New は新しいLimiterを生成
func New(cfg Config, opts ...Option) (*Limiter, error) {
	if cfg.DailyAllowance <= 0 {
		return nil, fmt.Errorf("%w: dailyAllowance must be positive", ErrInvalidConfig)
	}
	if cfg.Period <= 0 {
		return nil, fmt.Errorf("%w: period must be positive", ErrInvalidConfig)
	}
	if cfg.MaxConcurrent <= 0 {
		return nil, fmt.Errorf("%w: maxConcurrent must be positive", ErrInvalidConfig)
	}
	if cfg.RatePerSecond < 0 {
		return nil, fmt.Errorf("%w: ratePerSecond must not be negative", ErrInvalidConfig)
	}

	l := &Limiter{
		clock:     clock.System{},
		logger:    slog.Default(),
		allowance: cfg.DailyAllowance,
		period:    cfg.Period,
		ceiling:   cfg.MaxConcurrent,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.remaining = l.allowance
	l.resetAt = l.clock.Now().Add(l.period)
	if l.initRemaining != nil {
		if *l.initRemaining < 0 {
			return nil, fmt.Errorf("%w: remaining must not be negative", ErrInvalidConfig)
		}
		l.remaining = *l.initRemaining
		l.resetAt = l.initResetAt
	}

	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		l.smoothing = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return l, nil
}

// Acquire はpermitを1つ取得する
// 拒否された場合はキューイングせず即座にエラーを返す
func (l *Limiter) Acquire(ctx context.Context) (*Permit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.replenish(now)

	if l.remaining <= 0 {
		l.logger.Warn("daily quota exhausted", "reset_at", l.resetAt)
		return nil, &QuotaExhaustedError{ResetAt: l.resetAt}
	}
	if l.active >= l.ceiling {
		l.logger.Warn("concurrency ceiling reached", "active", l.active, "ceiling", l.ceiling)
		return nil, &CeilingError{Ceiling: l.ceiling}
	}
	if l.smoothing != nil && !l.smoothing.AllowN(now, 1) {
		return nil, ErrThrottled
	}

	l.remaining--
	l.active++

	p := &Permit{
		ID:         uuid.NewString(),
		AcquiredAt: now,
		limiter:    l,
	}
	l.logger.Debug("permit acquired", "permit_id", p.ID, "remaining", l.remaining, "active", l.active)
	return p, nil
}

// Do はpermitを取得してfnを実行し、終了時に必ず解放する
func (l *Limiter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	p, err := l.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release()
	return fn(ctx)
}

// Snapshot は現在のクォータを返す
func (l *Limiter) Snapshot() Quota {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.replenish(l.clock.Now())
	return Quota{
		Remaining:   l.remaining,
		ResetAt:     l.resetAt,
		ActiveCount: l.active,
		Ceiling:     l.ceiling,
		Allowance:   l.allowance,
	}
}

// replenish はリセット時刻を過ぎていればクォータを補充する（mu保持中に呼ぶ）
func (l *Limiter) replenish(now time.Time) {
	if now.Before(l.resetAt) {
		return
	}
	l.remaining = l.allowance
	for !now.Before(l.resetAt) {
		l.resetAt = l.resetAt.Add(l.period)
	}
	l.logger.Info("daily quota replenished", "remaining", l.remaining, "next_reset_at", l.resetAt)
}

func (l *Limiter) release(p *Permit) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active > 0 {
		l.active--
	}
	l.logger.Debug("permit released", "permit_id", p.ID, "active", l.active)
}

// Permit は同時実行枠の1単位
type Permit struct {
	ID         string
	AcquiredAt time.Time

	limiter  *Limiter
	released atomic.Bool
}

// Release はpermitを解放する
// 解放済みのpermitに対しては何もせずfalseを返す
func (p *Permit) Release() bool {
	if p == nil || !p.released.CompareAndSwap(false, true) {
		return false
	}
	p.limiter.release(p)
	return true
}
