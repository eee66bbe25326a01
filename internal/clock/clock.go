// Package clock provides the time source used by the rate limiter and cache.
package clock

import (
	"sync"
	"time"
)

// Clock は現在時刻を返すインターフェース
type Clock interface {
	Now() time.Time
}

// System はtime.Nowを使う実装
// time.Nowはモノトニック時刻を含むため、プロセス内の差分計算はシステム時刻の変更に影響されない
type System struct{}

// Now は現在時刻を返す
func (System) Now() time.Time {
	return time.Now()
}

// Manual は手動で進めるClock（テスト用）
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual は指定時刻で開始するManualを生成
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now は現在の時刻を返す
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance は時刻をdだけ進める
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set は時刻を設定する
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}
