package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/fridaykickers/kickers/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	want := &Config{
		LogLevel: DefaultLogLevel,
		API:      APIConfig{URL: DefaultAPIURL, TokenFile: DefaultTokenFile},
		Toast:    ToastConfig{Duration: "5s"},
		Offline: OfflineConfig{
			Origin:      DefaultOrigin,
			Listen:      DefaultListen,
			APIPrefix:   "/v1/",
			CachePrefix: "friday-kickers-",
		},
		Cache: CacheConfig{
			Backend:  BackendMemory,
			BoltPath: DefaultBoltPath,
			S3:       S3Config{Prefix: DefaultS3Prefix},
		},
	}
	if diff := cmp.Diff(want, cfg, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Errorf("New() mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvVersion, "")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.URL != DefaultAPIURL {
		t.Errorf("API.URL = %q, want %q", cfg.API.URL, DefaultAPIURL)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty for defaults", cfg.Path())
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvVersion, "")

	path := writeConfig(t, `
log_level = "debug"

[api]
url = "https://kickers.example.org"

[toast]
duration = "0s"

[offline]
version = "2025.06.01"
manifest = "dist/manifest.json"

[cache]
backend = "s3"

[cache.s3]
bucket = "kickers-cache"
region = "eu-central-1"
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	if cfg.API.URL != "https://kickers.example.org" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.Offline.Version != "2025.06.01" || cfg.Offline.Manifest != "dist/manifest.json" {
		t.Errorf("Offline = %+v", cfg.Offline)
	}
	if cfg.Offline.Listen != DefaultListen {
		t.Errorf("unset Offline.Listen = %q, want default", cfg.Offline.Listen)
	}
	want := S3Config{Bucket: "kickers-cache", Prefix: DefaultS3Prefix, Region: "eu-central-1"}
	if diff := cmp.Diff(want, cfg.Cache.S3); diff != "" {
		t.Errorf("Cache.S3 mismatch (-want +got):\n%s", diff)
	}
	if cfg.ToastDuration() != 0 {
		t.Errorf("ToastDuration() = %v, want 0", cfg.ToastDuration())
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", cfg.Level())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://env.example.org")
	t.Setenv(EnvVersion, "v42")

	path := writeConfig(t, `
[api]
url = "https://file.example.org"

[offline]
version = "v1"
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.API.URL != "https://env.example.org" {
		t.Errorf("API.URL = %q, want env value", cfg.API.URL)
	}
	if cfg.Offline.Version != "v42" {
		t.Errorf("Offline.Version = %q, want env value", cfg.Offline.Version)
	}
}

func TestLoadFileErrors(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvVersion, "")

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed toml", "[api\nurl = 1", "K101"},
		{"relative api url", "[api]\nurl = \"kickers.local\"", "K102"},
		{"relative origin", "[offline]\norigin = \"/static\"", "K102"},
		{"bad duration", "[toast]\nduration = \"soon\"", "K102"},
		{"bad log level", "log_level = \"loud\"", "K102"},
		{"unknown backend", "[cache]\nbackend = \"redis\"", "K103"},
		{"s3 without bucket", "[cache]\nbackend = \"s3\"", "K102"},
		{"api prefix without slash", "[offline]\napi_prefix = \"v1/\"", "K102"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.HasCode(err, tt.code) {
				t.Errorf("error %v does not carry %s", err, tt.code)
			}
		})
	}
}

func TestToastDurationFallback(t *testing.T) {
	cfg := New()
	cfg.Toast.Duration = "garbage"
	if got := cfg.ToastDuration(); got != 5*time.Second {
		t.Errorf("ToastDuration() = %v, want 5s", got)
	}
}

func TestTokenPathExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg := New()
	want := filepath.Join(home, ".config/kickers/token")
	if got := cfg.TokenPath(); got != want {
		t.Errorf("TokenPath() = %q, want %q", got, want)
	}

	cfg.API.TokenFile = "/tmp/token"
	if got := cfg.TokenPath(); got != "/tmp/token" {
		t.Errorf("TokenPath() = %q, want unchanged absolute path", got)
	}
}
