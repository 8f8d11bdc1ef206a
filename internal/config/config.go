// internal/config/config.go

// Package config 以 viper 讀取服務設定：預設值 → 設定檔 → CODESHARE_* 環境變數 → CLI flag。
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 為服務啟動所需的全部設定。
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string
	Backend         string
	JSONPath        string
	SQLitePath      string
	SeedFile        string
}

// SetDefaults 在 v 上註冊所有預設值與環境變數對應。
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix("codeshare")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.json_path", "data.json")
	v.SetDefault("storage.sqlite_path", "data/codeshare.db")
	v.SetDefault("seed.file", "")
}

// ReadFile 載入指定設定檔；path 為空時不做任何事。
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load 從 v 取出設定並檢查值是否合法。
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		Addr:            v.GetString("server.addr"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		LogLevel:        strings.ToLower(v.GetString("log.level")),
		LogFormat:       strings.ToLower(v.GetString("log.format")),
		Backend:         strings.ToLower(v.GetString("storage.backend")),
		JSONPath:        v.GetString("storage.json_path"),
		SQLitePath:      v.GetString("storage.sqlite_path"),
		SeedFile:        v.GetString("seed.file"),
	}
	switch c.Backend {
	case "memory", "json", "sqlite":
	default:
		return c, fmt.Errorf("storage.backend: unknown backend %q", c.Backend)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return c, fmt.Errorf("log.format: must be json or text, got %q", c.LogFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return c, fmt.Errorf("server.shutdown_timeout: must be positive")
	}
	return c, nil
}

// Level 將 log.level 轉為 slog.Level；未知值視為 info。
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
