// Package bootstrap wires configuration, rate limiting, caching, the upstream
// client and the handler registry into a ready-to-serve gateway.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/cache"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/clock"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/config"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/jsonrpc"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/ratelimit"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/registry"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/service"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/upstream"
)

// Gateway は初期化されたコンポーネント群を保持
type Gateway struct {
	Handler  *jsonrpc.Handler
	Limiter  *ratelimit.Limiter
	Cache    *cache.ResponseCache
	Registry *registry.Registry
	Config   *model.Config
	Logger   *slog.Logger
}

// Option はInitializeのオプション
type Option func(*options)

type options struct {
	logWriter io.Writer
	sender    upstream.Sender
	clock     clock.Clock
}

// WithLogWriter はログの出力先を設定（デフォルトはstderr）
func WithLogWriter(w io.Writer) Option {
	return func(o *options) {
		o.logWriter = w
	}
}

// WithSender はGraphQL送信部を差し替える
// 指定時はAPIトークンを要求しない
func WithSender(s upstream.Sender) Option {
	return func(o *options) {
		o.sender = s
	}
}

// WithClock はlimiterとcacheが使う時計を設定
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// Initialize は設定を読み込み、ゲートウェイを初期化する
func Initialize(ctx context.Context, configPath string, opts ...Option) (*Gateway, func(), error) {
	o := &options{
		logWriter: os.Stderr,
		clock:     clock.System{},
	}
	for _, opt := range opts {
		opt(o)
	}

	// 1. 設定
	configManager, err := config.NewManager(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if err := configManager.Load(); err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := configManager.GetConfig()
	if err := config.ApplyEnvOverrides(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}
	if err := configManager.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := NewLogger(cfg.Log, o.logWriter)
	if err != nil {
		return nil, nil, err
	}

	// 2. Limiter
	limiter, err := ratelimit.New(ratelimit.Config{
		DailyAllowance: cfg.RateLimit.DailyAllowance,
		Period:         cfg.RateLimit.Period.Std(),
		MaxConcurrent:  cfg.RateLimit.MaxConcurrent,
		RatePerSecond:  cfg.RateLimit.RatePerSecond,
		Burst:          cfg.RateLimit.Burst,
	}, ratelimit.WithClock(o.clock), ratelimit.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	// 3. Cache
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	rc := cache.New(store, cfg.Cache.TTL.Std(),
		cache.WithClock(o.clock),
		cache.WithLogger(logger),
		cache.WithLoadTimeout(cfg.Upstream.Timeout.Std()),
	)

	// 4. Upstream
	sender := o.sender
	if sender == nil {
		sender, err = newHTTPSender(cfg)
		if err != nil {
			rc.Close()
			return nil, nil, fmt.Errorf("failed to create upstream sender: %w", err)
		}
	}
	client := upstream.NewClient(sender, limiter, upstream.WithLogger(logger))

	// 5. Registry
	reg := registry.New()
	monday := service.NewMondayService(client, rc, service.WithLogger(logger))
	if err := service.Register(reg, monday, service.NewPromptService()); err != nil {
		rc.Close()
		return nil, nil, fmt.Errorf("failed to register handlers: %w", err)
	}

	cleanup := func() {
		if err := rc.Close(); err != nil {
			logger.Warn("failed to close cache", "error", err)
		}
	}

	logger.Info("gateway initialized",
		"endpoint", cfg.Upstream.Endpoint,
		"cache_backend", cfg.Cache.Backend,
		"daily_allowance", cfg.RateLimit.DailyAllowance,
		"max_concurrent", cfg.RateLimit.MaxConcurrent,
	)

	return &Gateway{
		Handler:  jsonrpc.New(reg, jsonrpc.WithLogger(logger)),
		Limiter:  limiter,
		Cache:    rc,
		Registry: reg,
		Config:   cfg,
		Logger:   logger,
	}, cleanup, nil
}

// NewLogger はログ設定からslog.Loggerを生成する
func NewLogger(cfg model.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	if cfg.Format == model.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
}

// newStore はキャッシュバックエンドを生成する
func newStore(ctx context.Context, cfg *model.Config) (cache.Store, error) {
	if cfg.Cache.Backend != model.CacheBackendRedis {
		return cache.NewMemoryStore(), nil
	}

	rc := cfg.Cache.Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	redisOpts := []cache.RedisOption{cache.WithRetention(cfg.Cache.TTL.Std())}
	if rc.Prefix != "" {
		redisOpts = append(redisOpts, cache.WithRedisPrefix(rc.Prefix))
	}
	store := cache.NewRedisStore(rdb, redisOpts...)
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to connect cache backend: %w", err)
	}
	return store, nil
}

// newHTTPSender は設定からGraphQL HTTP送信部を生成する
func newHTTPSender(cfg *model.Config) (*upstream.HTTPSender, error) {
	opts := []upstream.HTTPOption{upstream.WithEndpoint(cfg.Upstream.Endpoint)}
	if cfg.Upstream.APIVersion != "" {
		opts = append(opts, upstream.WithAPIVersion(cfg.Upstream.APIVersion))
	}
	if cfg.Upstream.Timeout > 0 {
		opts = append(opts, upstream.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout.Std()}))
	}
	return upstream.NewHTTPSender(config.GetAPIToken(cfg), opts...)
}
