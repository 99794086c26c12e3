package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("COLOC_DEV_MODE", "true")

	cfg := Load()

	if cfg.ListenPort != ":3000" {
		t.Errorf("expected default port :3000, got %q", cfg.ListenPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.LogLevel)
	}
	if cfg.MessageRetention != 200 {
		t.Errorf("expected default retention 200, got %d", cfg.MessageRetention)
	}
	if cfg.TrimInterval != 10*time.Minute {
		t.Errorf("expected default trim interval 10m, got %v", cfg.TrimInterval)
	}
	if !cfg.DevMode {
		t.Error("expected dev mode on")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("COLOC_DEV_MODE", "true")
	t.Setenv("COLOC_LISTEN_PORT", ":8080")
	t.Setenv("COLOC_LOG_LEVEL", "warn")
	t.Setenv("COLOC_MESSAGE_RETENTION", "500")
	t.Setenv("COLOC_SHUTDOWN_TIMEOUT", "12s")

	cfg := Load()

	if cfg.ListenPort != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.ListenPort)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected warn, got %q", cfg.LogLevel)
	}
	if cfg.MessageRetention != 500 {
		t.Errorf("expected 500, got %d", cfg.MessageRetention)
	}
	if cfg.ShutdownTimeout != 12*time.Second {
		t.Errorf("expected 12s, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_RetentionFloor(t *testing.T) {
	t.Setenv("COLOC_DEV_MODE", "true")
	t.Setenv("COLOC_MESSAGE_RETENTION", "10")

	cfg := Load()
	if cfg.MessageRetention != 50 {
		t.Errorf("retention below 50 must be raised to 50, got %d", cfg.MessageRetention)
	}
}

func TestLoad_PanicsWithoutRedisOutsideDevMode(t *testing.T) {
	t.Setenv("COLOC_DEV_MODE", "false")
	t.Setenv("COLOC_REDIS_ADDR", "")

	defer func() {
		if recover() == nil {
			t.Error("expected panic when redis addr is missing outside dev mode")
		}
	}()
	Load()
}
