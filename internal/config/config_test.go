// ABOUTME: Tests for environment parsing and the storage backend factory.
// ABOUTME: Uses t.Setenv to isolate environment state per test.
package config

import (
	"testing"

	"github.com/avolkov/aquacal/internal/storage"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TG_TOKEN", "")
	t.Setenv("OW_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend != "memory" {
		t.Errorf("Backend = %q, want memory", cfg.Backend)
	}
	if cfg.DefaultCity != "Moscow" {
		t.Errorf("DefaultCity = %q, want Moscow", cfg.DefaultCity)
	}
	if cfg.SessionTTL.Minutes() != 30 {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
	if cfg.WeatherURL == "" || cfg.FoodURL == "" {
		t.Error("expected default endpoint URLs")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BOT_TG_TOKEN", "tok")
	t.Setenv("OW_API_KEY", "key")
	t.Setenv("AQUACAL_BACKEND", "badger")
	t.Setenv("AQUACAL_SESSION_TTL", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TelegramToken != "tok" || cfg.WeatherKey != "key" {
		t.Errorf("credentials not read: %+v", cfg)
	}
	if cfg.Backend != "badger" {
		t.Errorf("Backend = %q, want badger", cfg.Backend)
	}
	if cfg.SessionTTL.Minutes() != 5 {
		t.Errorf("SessionTTL = %v, want 5m", cfg.SessionTTL)
	}
}

func TestValidateBot(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateBot(); err == nil {
		t.Error("expected error with no credentials")
	}
	cfg.TelegramToken = "tok"
	if err := cfg.ValidateBot(); err == nil {
		t.Error("expected error with no weather key")
	}
	cfg.WeatherKey = "key"
	if err := cfg.ValidateBot(); err != nil {
		t.Errorf("ValidateBot failed: %v", err)
	}
}

func TestOpenStore(t *testing.T) {
	cfg := &Config{Backend: "memory"}
	store, err := cfg.OpenStore()
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	if _, ok := store.(*storage.MemoryStore); !ok {
		t.Errorf("expected MemoryStore, got %T", store)
	}

	cfg = &Config{Backend: "badger", DataDir: t.TempDir()}
	store, err = cfg.OpenStore()
	if err != nil {
		t.Fatalf("OpenStore badger failed: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*storage.BadgerStore); !ok {
		t.Errorf("expected BadgerStore, got %T", store)
	}

	cfg = &Config{Backend: "postgres"}
	if _, err := cfg.OpenStore(); err == nil {
		t.Error("expected error for unknown backend")
	}
}
