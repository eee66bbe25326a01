package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
)

// 環境変数名の定数
const (
	EnvAPIToken      = "MONDAY_API_TOKEN"
	EnvAPIURL        = "MONDAY_API_URL"
	EnvDailyLimit    = "MCP_GATEWAY_DAILY_LIMIT"
	EnvMaxConcurrent = "MCP_GATEWAY_MAX_CONCURRENT"
	EnvCacheTTL      = "MCP_GATEWAY_CACHE_TTL"
	EnvRedisAddr     = "MCP_GATEWAY_REDIS_ADDR"
	EnvLogLevel      = "MCP_GATEWAY_LOG_LEVEL"
)

// ApplyEnvOverrides は環境変数による設定上書きを適用する
// config を直接変更する。数値や期間として解釈できない値はエラー
func ApplyEnvOverrides(config *model.Config) error {
	if token := os.Getenv(EnvAPIToken); token != "" {
		config.Upstream.APIToken = &token
	}
	if url := os.Getenv(EnvAPIURL); url != "" {
		config.Upstream.Endpoint = url
	}

	if v := os.Getenv(EnvDailyLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvDailyLimit, v)
		}
		config.RateLimit.DailyAllowance = n
	}
	if v := os.Getenv(EnvMaxConcurrent); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvMaxConcurrent, v)
		}
		config.RateLimit.MaxConcurrent = n
	}
	if v := os.Getenv(EnvCacheTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a duration", ErrInvalidConfig, EnvCacheTTL, v)
		}
		config.Cache.TTL = model.Duration(d)
	}

	// Redisアドレス指定時はバックエンドもredisに切り替える
	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		if config.Cache.Redis == nil {
			config.Cache.Redis = &model.RedisConfig{}
		}
		config.Cache.Redis.Addr = addr
		config.Cache.Backend = model.CacheBackendRedis
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		config.Log.Level = level
	}
	return nil
}

// GetAPIToken はAPIトークンを取得する
// 設定ファイルの値より環境変数を優先
func GetAPIToken(config *model.Config) string {
	if token := os.Getenv(EnvAPIToken); token != "" {
		return token
	}
	if config.Upstream.APIToken != nil {
		return *config.Upstream.APIToken
	}
	return ""
}
