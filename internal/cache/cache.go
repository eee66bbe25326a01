// Package cache implements the TTL response cache used on read paths.
//
// Entries are never deleted. An entry older than the TTL is ignored by Get and
// replaced by the next successful fetch for the same key.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/clock"
)

// DefaultTTL はキャッシュの鮮度期間
const DefaultTTL = 300 * time.Second

// LoadFunc はキャッシュミス時に値を取得する関数
type LoadFunc func(ctx context.Context) ([]byte, error)

// ResponseCache はTTL付きのレスポンスキャッシュ
type ResponseCache struct {
	store       Store
	ttl         time.Duration
	loadTimeout time.Duration
	clock       clock.Clock
	logger      *slog.Logger
	group       singleflight.Group
}

// Option はResponseCacheのオプション
type Option func(*ResponseCache)

// WithClock はClockを設定
func WithClock(c clock.Clock) Option {
	return func(rc *ResponseCache) {
		rc.clock = c
	}
}

// WithLogger はloggerを設定
func WithLogger(logger *slog.Logger) Option {
	return func(rc *ResponseCache) {
		rc.logger = logger
	}
}

// WithLoadTimeout は共有loadの上限時間を設定（0は無制限）
func WithLoadTimeout(d time.Duration) Option {
	return func(rc *ResponseCache) {
		rc.loadTimeout = d
	}
}

// New は新しいResponseCacheを生成
// ttlが0以下の場合はDefaultTTLを使う
func New(store Store, ttl time.Duration, opts ...Option) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	rc := &ResponseCache{
		store:  store,
		ttl:    ttl,
		clock:  clock.System{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// TTL は鮮度期間を返す
func (rc *ResponseCache) TTL() time.Duration {
	return rc.ttl
}

// Get は鮮度期間内の値を返す
// now - storedAt >= TTL のエントリは存在しないものとして扱う
func (rc *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	entry, ok, err := rc.store.Load(ctx, key)
	if err != nil {
		rc.logger.Warn("cache load failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		rc.logger.Debug("cache miss", "key", key)
		return nil, false
	}
	if rc.clock.Now().Sub(entry.StoredAt) >= rc.ttl {
		rc.logger.Debug("cache stale", "key", key, "stored_at", entry.StoredAt)
		return nil, false
	}
	rc.logger.Debug("cache hit", "key", key)
	return entry.Value, true
}

// Put は現在時刻で値を上書き保存する
func (rc *ResponseCache) Put(ctx context.Context, key string, value []byte) error {
	return rc.store.Save(ctx, key, Entry{
		Value:    value,
		StoredAt: rc.clock.Now(),
	})
}

// GetOrLoad は鮮度期間内の値があればそれを返し、なければloadで取得して保存する
// 同じキーへの同時ミスはsingleflightで1回のloadにまとめる
// 共有loadは呼び出し元のキャンセルを引き継がない。各呼び出し元は自身のctxで待機をやめる
func (rc *ResponseCache) GetOrLoad(ctx context.Context, key string, load LoadFunc) ([]byte, error) {
	if v, ok := rc.Get(ctx, key); ok {
		return v, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := rc.group.DoChan(key, func() (any, error) {
		return rc.load(loadCtx, key, load)
	})

	select {
	case <-ctx.Done():
		rc.logger.Debug("cache load abandoned", "key", key, "error", ctx.Err())
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			rc.logger.Debug("cache load shared", "key", key)
		}
		return res.Val.([]byte), nil
	}
}

// load は共有loadの本体。panicはエラーに変換する
func (rc *ResponseCache) load(ctx context.Context, key string, load LoadFunc) (v []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cache load for %q panicked: %v", key, r)
		}
	}()

	if rc.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rc.loadTimeout)
		defer cancel()
	}

	// 先行するloadが保存済みかもしれない
	if v, ok := rc.Get(ctx, key); ok {
		return v, nil
	}
	v, err = load(ctx)
	if err != nil {
		return nil, err
	}
	if err := rc.Put(ctx, key, v); err != nil {
		// 保存に失敗しても取得した値は返す
		rc.logger.Warn("cache save failed", "key", key, "error", err)
	}
	return v, nil
}

// Close はStoreを閉じる
func (rc *ResponseCache) Close() error {
	return rc.store.Close()
}
