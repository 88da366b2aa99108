package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 || cfg.SessionTTL != 24*time.Hour || cfg.GenerateMaxAttempts != 4 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("MDNS_INSTANCE=studio\nGENERATE_TIMEOUT=5s\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MDNS_INSTANCE", "")
	os.Unsetenv("MDNS_INSTANCE")
	t.Setenv("GENERATE_TIMEOUT", "")
	os.Unsetenv("GENERATE_TIMEOUT")

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MDNSInstance != "studio" || cfg.GenerateTimeout != 5*time.Second {
		t.Errorf("expected values from .env, got %q %v", cfg.MDNSInstance, cfg.GenerateTimeout)
	}
}

func TestOrigins(t *testing.T) {
	cfg := &Config{AllowedOrigins: "http://localhost:5173, https://board.example.com,,"}
	want := []string{"localhost:5173", "board.example.com"}
	if got := cfg.Origins(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := (&Config{LogLevel: in}).Level(); got != want {
			t.Errorf("%q: expected %v, got %v", in, want, got)
		}
	}
}
