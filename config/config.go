// Package config はアプリケーション設定を管理します。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/stsysd/gameshelf/offline"
)

// 環境変数のプレフィックス
const envPrefix = "GAMESHELF_"

// Config はアプリケーション全体の設定を保持します。
type Config struct {
	// データディレクトリのパス
	DataDir string

	// HTTPサーバーのポート
	Port string

	// API認証キー
	APIKey string

	// ログ設定
	LogLevel  string
	LogFormat string
	LogFile   string

	// オフラインワーカーのキャッシュを保存するバケットURL（mem://, file:///dir）
	CacheURL string

	// アセットの取得元
	AssetOrigin string

	// ワーカーを公開するオリジン（https または localhost のみ）
	PublicOrigin string

	// ワーカーのキャッシュ設定
	Worker offline.Config

	// APIのレート制限（リクエスト/秒）とバースト
	RateLimit float64
	RateBurst int
}

// NewConfig は環境変数から設定を読み込み、Configインスタンスを生成します。
// カレントディレクトリに .env がある場合は先に読み込みます（既存の環境変数は上書きしません）。
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv は環境変数のみから設定を生成します。
func FromEnv() (*Config, error) {
	port := getEnv("SERVER_PORT", "8080")

	// API認証キーの設定（デフォルトキーは設定しない）
	apiKey := getEnv("API_KEY", "")
	if apiKey == "" {
		return nil, errors.New(envPrefix + "API_KEY is not set")
	}

	rateLimit, err := getEnvAsFloat("RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	rateBurst, err := getEnvAsInt("RATE_BURST", 20)
	if err != nil {
		return nil, err
	}

	worker := offline.DefaultConfig()
	worker.CacheName = getEnv("CACHE_NAME", worker.CacheName)
	worker.CachePrefix = getEnv("CACHE_PREFIX", worker.CachePrefix)
	if assets := getEnv("SHELL_ASSETS", ""); assets != "" {
		worker.AssetsToCacheOnInstall = splitList(assets)
	}

	cfg := &Config{
		DataDir:      getEnv("DATA_DIR", filepath.Join(".", "data")),
		Port:         port,
		APIKey:       apiKey,
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		LogFile:      getEnv("LOG_FILE", ""),
		CacheURL:     getEnv("CACHE_URL", "mem://"),
		AssetOrigin:  getEnv("ASSET_ORIGIN", "http://localhost:5173"),
		PublicOrigin: getEnv("PUBLIC_ORIGIN", "http://localhost:"+port),
		Worker:       worker,
		RateLimit:    rateLimit,
		RateBurst:    rateBurst,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if err := c.Worker.Validate(); err != nil {
		return fmt.Errorf("invalid worker config: %w", err)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("%sRATE_LIMIT must be positive", envPrefix)
	}
	if c.RateBurst <= 0 {
		return fmt.Errorf("%sRATE_BURST must be positive", envPrefix)
	}
	return nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s: %w", envPrefix, key, err)
	}
	return n, nil
}

func getEnvAsFloat(key string, def float64) (float64, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s: %w", envPrefix, key, err)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
