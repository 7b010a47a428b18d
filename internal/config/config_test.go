package config

import (
	"os"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LISTEN_ADDR", "DATABASE_PATH", "OPENAI_MODEL", "ANALYZER_TIMEOUT", "TOSS_AUTH_MOCK", "GIN_MODE", "APP_TIMEZONE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := parse()
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected default listen addr, got %q", cfg.ListenAddr)
	}
	if cfg.DatabasePath != "moodline.db" {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("unexpected model %q", cfg.OpenAIModel)
	}
	if cfg.AnalyzerTimeout != time.Minute {
		t.Fatalf("unexpected analyzer timeout %v", cfg.AnalyzerTimeout)
	}
	if cfg.Location().String() != "Asia/Seoul" {
		t.Fatalf("unexpected location %s", cfg.Location())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("OPENAI_BASE_URL", " https://proxy.test/v1/ ")
	t.Setenv("TOSS_AUTH_MOCK", "true")
	t.Setenv("ANALYZER_TIMEOUT", "15s")

	cfg, err := parse()
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Fatalf("expected listen addr from port, got %q", cfg.ListenAddr)
	}
	if cfg.OpenAIBaseURL != "https://proxy.test/v1" {
		t.Fatalf("expected trimmed base url, got %q", cfg.OpenAIBaseURL)
	}
	if !cfg.TossAuthMock {
		t.Fatal("expected mock login to be enabled")
	}
	if cfg.AnalyzerTimeout != 15*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.AnalyzerTimeout)
	}
}

func TestValidate(t *testing.T) {
	base := AppConfig{GinMode: "release", AnalyzerTimeout: time.Second, TossAPIBaseURL: "https://toss.test", Timezone: "UTC"}

	cases := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{name: "ok", mutate: func(*AppConfig) {}},
		{name: "zero timeout", mutate: func(c *AppConfig) { c.AnalyzerTimeout = 0 }, wantErr: true},
		{name: "half admin", mutate: func(c *AppConfig) { c.SuperRootUserName = "root" }, wantErr: true},
		{name: "no toss url", mutate: func(c *AppConfig) { c.TossAPIBaseURL = "" }, wantErr: true},
		{name: "no toss url in mock", mutate: func(c *AppConfig) { c.TossAPIBaseURL = ""; c.TossAuthMock = true }},
		{name: "bad timezone", mutate: func(c *AppConfig) { c.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "bad gin mode", mutate: func(c *AppConfig) { c.GinMode = "loud" }, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
