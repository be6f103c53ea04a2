package config

import (
	"testing"
	"time"

	"github.com/labstack/gommon/log"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "8000" || cfg.DB.Driver != "mysql" || cfg.Auth.AccessTTL != 30*time.Minute {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != 300*time.Second {
		t.Fatalf("unexpected cache defaults: %+v", cfg.Cache)
	}
	if cfg.AMQP.Enabled || cfg.AMQP.Queue != "taskflow.activity" {
		t.Fatalf("unexpected amqp defaults: %+v", cfg.AMQP)
	}
	if cfg.Redis.Address() != "localhost:6379" {
		t.Fatalf("unexpected redis address %q", cfg.Redis.Address())
	}
}

func TestParseRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Parse(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.DB.Driver != "sqlite" || cfg.Auth.AccessTTL != 5*time.Minute || cfg.Cache.Enabled {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Redis.Address() != "cache:6380" {
		t.Fatalf("unexpected redis address %q", cfg.Redis.Address())
	}
}

func TestParseRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "postgres")
	if _, err := Parse(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]log.Lvl{
		"DEBUG":    log.DEBUG,
		" warn ":   log.WARN,
		"error":    log.ERROR,
		"off":      log.OFF,
		"nonsense": log.INFO,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
