package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATA_FILE", "")
	t.Setenv("REDIS_KEY_PREFIX", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DataFile != "data/textilreinigung-state.json" {
		t.Fatalf("DataFile = %q", cfg.DataFile)
	}
	if cfg.RedisKeyPrefix != "textilreinigung" {
		t.Fatalf("RedisKeyPrefix = %q", cfg.RedisKeyPrefix)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("Address() = %q, want :8080", cfg.Address())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("RedisDB = %d, want 3", cfg.RedisDB)
	}
}
