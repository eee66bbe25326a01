// Package config loads, validates and persists the gateway configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
)

// デフォルト値
const (
	DefaultEndpoint       = "https://api.monday.com/v2"
	DefaultTimeout        = 30 * time.Second
	DefaultDailyAllowance = 1000
	DefaultPeriod         = 24 * time.Hour
	DefaultMaxConcurrent  = 10
	DefaultCacheTTL       = 300 * time.Second
)

// ErrInvalidConfig は設定値が不正な場合のエラー
var ErrInvalidConfig = errors.New("invalid config")

// Manager は設定の読み書きを管理する
type Manager struct {
	mu         sync.RWMutex
	config     *model.Config
	configPath string
}

// NewManager は新しいManagerを作成する
// configPathが空文字の場合、デフォルトパス（~/.mcp-gateway/config.json）を使用
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		defaultPath, err := GetDefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
		configPath = defaultPath
	}

	return &Manager{
		config:     DefaultConfig(configPath),
		configPath: configPath,
	}, nil
}

// NewManagerWithConfig は指定した設定でManagerを作成する（テスト用）
func NewManagerWithConfig(cfg *model.Config) *Manager {
	return &Manager{
		config:     cfg,
		configPath: cfg.Paths.ConfigPath,
	}
}

// Load は設定ファイルを読み込む
// ファイルが存在しない場合はデフォルト設定を使用（エラーなし）
// ファイルで省略された項目はデフォルト値のまま残る
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig(m.configPath)
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	// パスは常に実際に読んだファイル
	config.Paths.ConfigPath = m.configPath

	m.config = config
	return nil
}

// Save は設定ファイルを保存する
// apiTokenはファイルに書き出さない
func (m *Manager) Save() error {
	m.mu.RLock()
	config := *m.config
	m.mu.RUnlock()

	config.Upstream.APIToken = nil

	if err := EnsureDir(filepath.Dir(m.configPath)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(&config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 一時ファイルに書き込み（atomicな保存のため）
	tmpFile := m.configPath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := os.Rename(tmpFile, m.configPath); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename config file: %w", err)
	}
	return nil
}

// GetConfig は現在の設定を返す
func (m *Manager) GetConfig() *model.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetConfigPath は設定ファイルパスを返す
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// Validate は現在の設定を検証する
func (m *Manager) Validate() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Validate(m.config)
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig(configPath string) *model.Config {
	return &model.Config{
		TransportDefaults: model.TransportDefaults{
			DefaultTransport: model.TransportStdio,
		},
		Upstream: model.UpstreamConfig{
			Endpoint: DefaultEndpoint,
			Timeout:  model.Duration(DefaultTimeout),
		},
		RateLimit: model.RateLimitConfig{
			DailyAllowance: DefaultDailyAllowance,
			Period:         model.Duration(DefaultPeriod),
			MaxConcurrent:  DefaultMaxConcurrent,
		},
		Cache: model.CacheConfig{
			TTL:     model.Duration(DefaultCacheTTL),
			Backend: model.CacheBackendMemory,
		},
		Log: model.LogConfig{
			Level:  "info",
			Format: model.LogFormatText,
		},
		Paths: model.PathsConfig{
			ConfigPath: configPath,
		},
	}
}

// Validate は設定値の整合性を検証する
// APIトークンの有無はここでは検証しない（起動時にupstreamが検証する）
func Validate(cfg *model.Config) error {
	switch cfg.TransportDefaults.DefaultTransport {
	case model.TransportStdio, model.TransportHTTP:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, cfg.TransportDefaults.DefaultTransport)
	}

	if cfg.Upstream.Endpoint == "" {
		return fmt.Errorf("%w: upstream.endpoint is required", ErrInvalidConfig)
	}
	if cfg.Upstream.Timeout < 0 {
		return fmt.Errorf("%w: upstream.timeout must not be negative", ErrInvalidConfig)
	}

	if cfg.RateLimit.DailyAllowance <= 0 {
		return fmt.Errorf("%w: rateLimit.dailyAllowance must be positive", ErrInvalidConfig)
	}
	if cfg.RateLimit.Period <= 0 {
		return fmt.Errorf("%w: rateLimit.period must be positive", ErrInvalidConfig)
	}
	if cfg.RateLimit.MaxConcurrent <= 0 {
		return fmt.Errorf("%w: rateLimit.maxConcurrent must be positive", ErrInvalidConfig)
	}
	if cfg.RateLimit.RatePerSecond < 0 {
		return fmt.Errorf("%w: rateLimit.ratePerSecond must not be negative", ErrInvalidConfig)
	}

	if cfg.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache.ttl must be positive", ErrInvalidConfig)
	}
	switch cfg.Cache.Backend {
	case model.CacheBackendMemory:
	case model.CacheBackendRedis:
		if cfg.Cache.Redis == nil || cfg.Cache.Redis.Addr == "" {
			return fmt.Errorf("%w: cache.redis.addr is required for redis backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, cfg.Cache.Backend)
	}

	if _, err := ParseLogLevel(cfg.Log.Level); err != nil {
		return err
	}
	switch cfg.Log.Format {
	case model.LogFormatText, model.LogFormatJSON:
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, cfg.Log.Format)
	}
	return nil
}

// logLevels はサポートするログレベル
var logLevels = []string{"debug", "info", "warn", "error"}

// ParseLogLevel はログレベル文字列を正規化する
// 空文字は "info" として扱う
func ParseLogLevel(level string) (string, error) {
	if level == "" {
		return "info", nil
	}
	normalized := strings.ToLower(level)
	for _, l := range logLevels {
		if l == normalized {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, level)
}
