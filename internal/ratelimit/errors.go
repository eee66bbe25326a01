package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

// エラー定義
var (
	ErrRateLimitExceeded          = errors.New("rate limit exceeded")
	ErrConcurrencyCeilingExceeded = errors.New("too many concurrent requests")
	ErrThrottled                  = errors.New("request rate too high")
	ErrInvalidConfig              = errors.New("invalid rate limit config")
)

// QuotaExhaustedError は日次クォータ枯渇時のエラー（リセット時刻を保持）
type QuotaExhaustedError struct {
	ResetAt time.Time
}

func (e *QuotaExhaustedError) Error() string {
	return fmt.Sprintf("rate limit exceeded. resets at %s", e.ResetAt.UTC().Format(time.RFC3339))
}

func (e *QuotaExhaustedError) Is(target error) bool {
	return target == ErrRateLimitExceeded
}

// CeilingError は同時実行数上限に達した時のエラー
type CeilingError struct {
	Ceiling int
}

func (e *CeilingError) Error() string {
	return fmt.Sprintf("too many concurrent requests (limit %d). please try again", e.Ceiling)
}

func (e *CeilingError) Is(target error) bool {
	return target == ErrConcurrencyCeilingExceeded
}
