package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を保持する。
// 設定ファイル→環境変数→コマンドラインフラグの順に上書きして起動時に1回読み込み、
// イミュータブルとして扱う。
type Config struct {
	// Server
	ServerPort string `yaml:"server_port"`

	// CORS
	CORSAllowedOrigin string `yaml:"cors_allowed_origin"`

	// Rate Limit（1分あたりのリクエスト数）
	RateLimitGeneral  int `yaml:"rate_limit_general"`
	RateLimitMutation int `yaml:"rate_limit_mutation"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Seed
	SeedFile string `yaml:"seed_file"`

	// Content
	SanitizeContent bool `yaml:"sanitize_content"`

	// GraphQL
	GraphQLMaxDepth int `yaml:"graphql_max_depth"`

	// Audit（0の場合は整合性検査ジョブを起動しない）
	AuditInterval time.Duration `yaml:"audit_interval"`
}

// Default はデフォルト値を設定したConfigを返す。
func Default() *Config {
	return &Config{
		ServerPort:        "8080",
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimitGeneral:  120,
		RateLimitMutation: 30,
		LogLevel:          "info",
		LogFormat:         "json",
		GraphQLMaxDepth:   10,
		AuditInterval:     5 * time.Minute,
	}
}

// Load は環境変数からConfigを読み込む。
// pathが空でない場合は先にYAML設定ファイルを読み込み、環境変数で上書きする。
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ServerPort = getEnvString("SERVER_PORT", cfg.ServerPort)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", cfg.CORSAllowedOrigin)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", cfg.RateLimitGeneral)
	cfg.RateLimitMutation = getEnvInt("RATE_LIMIT_MUTATION", cfg.RateLimitMutation)
	cfg.LogLevel = getEnvString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvString("LOG_FORMAT", cfg.LogFormat)
	cfg.SeedFile = getEnvString("SEED_FILE", cfg.SeedFile)
	cfg.SanitizeContent = getEnvBool("SANITIZE_CONTENT", cfg.SanitizeContent)
	cfg.GraphQLMaxDepth = getEnvInt("GRAPHQL_MAX_DEPTH", cfg.GraphQLMaxDepth)
	cfg.AuditInterval = getEnvDuration("AUDIT_INTERVAL", cfg.AuditInterval)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

// Validate は設定値の整合性を検証する。
func (c *Config) Validate() error {
	var problems []string

	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		problems = append(problems, fmt.Sprintf("server port must be numeric: %q", c.ServerPort))
	}
	if c.RateLimitGeneral <= 0 {
		problems = append(problems, "rate limit general must be positive")
	}
	if c.RateLimitMutation <= 0 {
		problems = append(problems, "rate limit mutation must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("unknown log level: %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("unknown log format: %q", c.LogFormat))
	}
	if c.GraphQLMaxDepth < 0 {
		problems = append(problems, "graphql max depth must not be negative")
	}
	if c.AuditInterval < 0 {
		problems = append(problems, "audit interval must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
