package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config はゲートウェイ全体の設定を表す
type Config struct {
	TransportDefaults TransportDefaults `json:"transportDefaults"`
	Upstream          UpstreamConfig    `json:"upstream"`
	RateLimit         RateLimitConfig   `json:"rateLimit"`
	Cache             CacheConfig       `json:"cache"`
	Log               LogConfig         `json:"log"`
	Paths             PathsConfig       `json:"paths"`
}

// TransportDefaults はtransportのデフォルト設定
type TransportDefaults struct {
	DefaultTransport string `json:"defaultTransport"` // "stdio" | "http"
}

// UpstreamConfig は上流APIの設定
type UpstreamConfig struct {
	Endpoint   string   `json:"endpoint"`             // GraphQLエンドポイント
	APIVersion string   `json:"apiVersion,omitempty"` // API-Versionヘッダー、省略可
	Timeout    Duration `json:"timeout"`
	APIToken   *string  `json:"apiToken,omitempty"` // nullable、省略可（セキュリティ注意）
}

// RateLimitConfig はクォータの設定
type RateLimitConfig struct {
	DailyAllowance int      `json:"dailyAllowance"`
	Period         Duration `json:"period"`
	MaxConcurrent  int      `json:"maxConcurrent"`
	RatePerSecond  float64  `json:"ratePerSecond,omitempty"` // 0 なら無効
	Burst          int      `json:"burst,omitempty"`
}

// CacheConfig はレスポンスキャッシュの設定
type CacheConfig struct {
	TTL     Duration     `json:"ttl"`
	Backend string       `json:"backend"` // "memory" | "redis"
	Redis   *RedisConfig `json:"redis,omitempty"`
}

// RedisConfig はRedisバックエンドの設定
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
}

// LogConfig はログ設定
type LogConfig struct {
	Level  string `json:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `json:"format"` // "text" | "json"
}

// PathsConfig はファイルパス設定
type PathsConfig struct {
	ConfigPath string `json:"configPath"` // 設定ファイルパス
}

// Transport定数
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Cache Backend定数
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Log Format定数
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Duration はJSONで "300s" のような文字列として表現する期間
type Duration time.Duration

// MarshalJSON は期間を文字列で出力する
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON は "300s" 形式の文字列、または秒数の数値を受け付ける
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(time.Duration(val * float64(time.Second)))
	case nil:
		*d = 0
	default:
		return fmt.Errorf("invalid duration: %s", string(data))
	}
	return nil
}

// Std はtime.Durationを返す
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
