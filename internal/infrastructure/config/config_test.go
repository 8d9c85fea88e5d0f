package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Session.TokenTTL != time.Hour {
		t.Fatalf("expected 1h token ttl, got %v", cfg.Session.TokenTTL)
	}
	if cfg.Redis.Addr != "" || cfg.Mongo.URI != "" {
		t.Fatalf("stores must be optional by default")
	}
	if cfg.Mongo.Workers != 4 || cfg.Redis.Prefix != "console" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.IsProduction() {
		t.Fatalf("development must not be production")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":             "production",
		"BACKEND_URL":     "https://api.example.com",
		"BACKEND_TIMEOUT": "3s",
		"TOKEN_TTL":       "30m",
		"REDIS_ADDR":      "redis:6379",
		"AUDIT_WORKERS":   "2",
	}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production")
	}
	if cfg.Backend.URL != "https://api.example.com" || cfg.Backend.Timeout != 3*time.Second {
		t.Fatalf("unexpected backend config: %+v", cfg.Backend)
	}
	if cfg.Session.TokenTTL != 30*time.Minute || cfg.Redis.Addr != "redis:6379" || cfg.Mongo.Workers != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadWith_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad env":         {"ENV": "qa"},
		"bad url":         {"BACKEND_URL": "not a url"},
		"zero workers":    {"AUDIT_WORKERS": "0"},
		"bad duration":    {"TOKEN_TTL": "soon"},
		"zero login rate": {"LOGIN_RATE": "0"},
	}
	for name, env := range cases {
		if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
