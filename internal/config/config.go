package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string `env:"LISTEN_ADDR"`
	Port          string `env:"PORT" envDefault:"8080"`
	DatabasePath  string `env:"DATABASE_PATH" envDefault:"moodline.db"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"moodline-dev-secret"`
	GinMode       string `env:"GIN_MODE" envDefault:"release"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	Timezone      string `env:"APP_TIMEZONE" envDefault:"Asia/Seoul"`

	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"`
	OpenAIModel     string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	AnalyzerTimeout time.Duration `env:"ANALYZER_TIMEOUT" envDefault:"60s"`

	TossAPIBaseURL string `env:"TOSS_API_BASE_URL" envDefault:"https://apps-in-toss-api.toss.im"`
	TossAuthMock   bool   `env:"TOSS_AUTH_MOCK" envDefault:"false"`

	SuperRootUserName string `env:"SUPER_ROOT_USER_NAME"`
	SuperRootPassword string `env:"SUPER_ROOT_PASSWORD"`
}

// Load 从 .env（若存在）与环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("load .env: %w", err)
	}
	return parse()
}

func parse() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Port = strings.TrimSpace(cfg.Port)
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}
	cfg.DatabasePath = strings.TrimSpace(cfg.DatabasePath)
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "moodline.db"
	}
	cfg.GinMode = strings.TrimSpace(cfg.GinMode)
	if cfg.GinMode == "" {
		cfg.GinMode = "release"
	}
	cfg.Timezone = strings.TrimSpace(cfg.Timezone)
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Seoul"
	}
	cfg.OpenAIAPIKey = strings.TrimSpace(cfg.OpenAIAPIKey)
	cfg.OpenAIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.OpenAIBaseURL), "/")
	cfg.OpenAIModel = strings.TrimSpace(cfg.OpenAIModel)
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}
	if cfg.AnalyzerTimeout == 0 {
		cfg.AnalyzerTimeout = time.Minute
	}
	cfg.TossAPIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.TossAPIBaseURL), "/")
	cfg.SuperRootUserName = strings.TrimSpace(cfg.SuperRootUserName)
	cfg.SuperRootPassword = strings.TrimSpace(cfg.SuperRootPassword)

	return cfg, nil
}

// Validate 检查互相矛盾或无法使用的配置组合。
func (c AppConfig) Validate() error {
	if c.AnalyzerTimeout <= 0 {
		return fmt.Errorf("ANALYZER_TIMEOUT must be positive, got %s", c.AnalyzerTimeout)
	}
	if (c.SuperRootUserName == "") != (c.SuperRootPassword == "") {
		return errors.New("SUPER_ROOT_USER_NAME and SUPER_ROOT_PASSWORD must be set together")
	}
	if !c.TossAuthMock && c.TossAPIBaseURL == "" {
		return errors.New("TOSS_API_BASE_URL is required unless TOSS_AUTH_MOCK is enabled")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported GIN_MODE %q", c.GinMode)
	}
	return nil
}

// Location 返回用于计算“今天”的时区，Validate 通过后不会失败。
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
