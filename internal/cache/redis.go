package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix はRedisキーのデフォルトprefix
const DefaultRedisPrefix = "mcp-gateway:cache"

// RedisStore はRedisをバックエンドにしたStore実装
// エントリは "<prefix>:<key>" のhashに value / storedAt（UnixNano）として保存する
type RedisStore struct {
	rdb       *redis.Client
	prefix    string
	retention time.Duration
}

// RedisOption はRedisStoreのオプション
type RedisOption func(*RedisStore)

// WithRedisPrefix はキーのprefixを設定
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

// WithRetention はRedis側でキーを保持する期間を設定（0なら無期限）
// 鮮度判定はResponseCacheが行うため、retentionはメモリ回収のためだけに使う
func WithRetention(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.retention = d
	}
}

// NewRedisStore は新しいRedisStoreを生成
func NewRedisStore(rdb *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: DefaultRedisPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping は接続を確認する
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

// Load はエントリを返す
func (s *RedisStore) Load(ctx context.Context, key string) (Entry, bool, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(fields) == 0 {
		return Entry{}, false, nil
	}

	value, ok := fields["value"]
	if !ok {
		return Entry{}, false, nil
	}
	nanos, err := strconv.ParseInt(fields["storedAt"], 10, 64)
	if err != nil {
		return Entry{}, false, fmt.Errorf("invalid storedAt for %s: %w", key, err)
	}

	return Entry{
		Value:    []byte(value),
		StoredAt: time.Unix(0, nanos),
	}, true, nil
}

// Save はエントリを上書き保存する
func (s *RedisStore) Save(ctx context.Context, key string, entry Entry) error {
	k := s.key(key)

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, k, "value", entry.Value, "storedAt", entry.StoredAt.UnixNano())
	if s.retention > 0 {
		pipe.Expire(ctx, k, s.retention)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}

// Close はRedis接続を閉じる
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
