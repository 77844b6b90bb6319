package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCreatesDefaults(t *testing.T) {
	dir := t.TempDir()

	if err := Load(dir); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"backend", AppConfig.StoreBackend, "sqlite"},
		{"store path", AppConfig.StorePath, filepath.Join(dir, "levelup.db")},
		{"submit delay", AppConfig.SubmitDelay, 2 * time.Second},
		{"refresh delay", AppConfig.RefreshDelay, 1500 * time.Millisecond},
		{"date format", AppConfig.DateFormat, "02/01/2006"},
		{"key prefix", AppConfig.BrowserKeyPrefix, "levelup_"},
		{"workers", AppConfig.BatchWorkers, 3},
		{"batch interval", AppConfig.BatchInterval, time.Duration(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestSetPersists(t *testing.T) {
	dir := t.TempDir()
	if err := Load(dir); err != nil {
		t.Fatal(err)
	}

	if err := Set("store_backend", "memory"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := Load(dir); err != nil {
		t.Fatal(err)
	}
	if AppConfig.StoreBackend != "memory" {
		t.Errorf("expected memory after reload, got %q", AppConfig.StoreBackend)
	}
	if Get("store_backend") != "memory" {
		t.Errorf("Get returned %q", Get("store_backend"))
	}
}

func TestSetRejectsUnknownKey(t *testing.T) {
	if err := Load(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if err := Set("openai_key", "sk"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("LEVELUP_SUBMIT_DELAY", "10ms")
	t.Setenv("LEVELUP_LOG_LEVEL", "debug")

	if err := Load(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if AppConfig.SubmitDelay != 10*time.Millisecond {
		t.Errorf("submit delay = %v, want 10ms", AppConfig.SubmitDelay)
	}
	if AppConfig.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", AppConfig.LogLevel)
	}
}

func TestKeysSorted(t *testing.T) {
	keys := Keys()
	if len(keys) != 11 {
		t.Fatalf("expected 11 keys, got %d", len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
}

func TestSetRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"submit_delay", "soon"},
		{"refresh_delay", "-1s"},
		{"batch_workers", "abc"},
		{"batch_workers", "0"},
		{"batch_interval", "often"},
		{"store_backend", "mongo"},
		{"log_level", "loud"},
		{"date_format", "  "},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			dir := t.TempDir()
			if err := Load(dir); err != nil {
				t.Fatal(err)
			}
			if err := Set(tt.key, tt.value); err == nil {
				t.Fatalf("expected %s=%q to be rejected", tt.key, tt.value)
			}
			if err := Load(dir); err != nil {
				t.Fatalf("config no longer loads after a rejected Set: %v", err)
			}
		})
	}
}

func TestSetTypedValuesReload(t *testing.T) {
	dir := t.TempDir()
	if err := Load(dir); err != nil {
		t.Fatal(err)
	}
	if err := Set("submit_delay", "500ms"); err != nil {
		t.Fatal(err)
	}
	if err := Set("batch_workers", "5"); err != nil {
		t.Fatal(err)
	}
	if err := Load(dir); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if AppConfig.SubmitDelay != 500*time.Millisecond || AppConfig.BatchWorkers != 5 {
		t.Errorf("got delay %v workers %d", AppConfig.SubmitDelay, AppConfig.BatchWorkers)
	}
}
