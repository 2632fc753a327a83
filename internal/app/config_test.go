package app

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected default http addr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("expected default metrics addr :9090, got %s", cfg.MetricsAddr)
	}
	if cfg.PostgresDSN != "" || cfg.RedisAddr != "" || len(cfg.KafkaBrokers) != 0 {
		t.Error("external dependencies must be off by default")
	}
}
