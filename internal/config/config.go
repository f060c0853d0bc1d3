package config

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/fridaykickers/kickers/internal/errors"
	"github.com/fridaykickers/kickers/pkg/offline"
	"github.com/fridaykickers/kickers/pkg/toast"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "kickers.toml"

	DefaultAPIURL    = "http://localhost:3000"
	DefaultTokenFile = "~/.config/kickers/token"
	DefaultOrigin    = "http://localhost:4173"
	DefaultListen    = ":8080"
	DefaultBoltPath  = "kickers-cache.db"
	DefaultS3Prefix  = "offline/"
	DefaultLogLevel  = "info"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendS3     = "s3"
)

// Environment overrides.
const (
	EnvAPIURL  = "KICKERS_API_URL"
	EnvVersion = "KICKERS_VERSION"
)

// Config is the complete kickers.toml configuration.
type Config struct {
	LogLevel string        `toml:"log_level"`
	API      APIConfig     `toml:"api"`
	Toast    ToastConfig   `toml:"toast"`
	Offline  OfflineConfig `toml:"offline"`
	Cache    CacheConfig   `toml:"cache"`

	path string
}

// APIConfig locates the club service.
type APIConfig struct {
	URL string `toml:"url"`

	// TokenFile stores the bearer token between invocations.
	TokenFile string `toml:"token_file"`
}

// ToastConfig controls notification lifetime.
type ToastConfig struct {
	// Duration is parsed with time.ParseDuration. "0s" keeps toasts until
	// they are removed.
	Duration string `toml:"duration"`
}

// OfflineConfig configures the caching proxy.
type OfflineConfig struct {
	// Version names the deployed build; the cache generation is
	// CachePrefix + Version.
	Version string `toml:"version"`

	// Manifest is the precache manifest file.
	Manifest string `toml:"manifest"`

	// Origin serves the static build.
	Origin string `toml:"origin"`

	Listen      string `toml:"listen"`
	APIPrefix   string `toml:"api_prefix"`
	CachePrefix string `toml:"cache_prefix"`
}

// CacheConfig selects the cache storage backend.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	BoltPath string   `toml:"bolt_path"`
	S3       S3Config `toml:"s3"`
}

// S3Config configures the S3 backend.
type S3Config struct {
	Bucket   string `toml:"bucket"`
	Prefix   string `toml:"prefix"`
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint"`
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads kickers.toml from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads the configuration at path. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{path: path}

	data, err := os.ReadFile(expandHome(path))
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("K101").
				WithDetail(parseDetail(path, err)).
				Wrap(err)
		}
	case stderrors.Is(err, os.ErrNotExist):
		cfg.path = ""
	default:
		return nil, errors.New("K100").Wrap(err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the config was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.path
}

// ToastDuration returns the parsed toast lifetime.
func (c *Config) ToastDuration() time.Duration {
	d, err := time.ParseDuration(c.Toast.Duration)
	if err != nil {
		return toast.DefaultDuration
	}
	return d
}

// TokenPath returns api.token_file with ~ expanded.
func (c *Config) TokenPath() string {
	return expandHome(c.API.TokenFile)
}

// Level returns the slog level for log_level.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if err := absoluteURL(c.API.URL); err != nil {
		return errors.New("K102").
			WithDetail("api.url: " + err.Error()).
			WithSuggestion("Use an absolute URL such as https://kickers.example.org")
	}
	if err := absoluteURL(c.Offline.Origin); err != nil {
		return errors.New("K102").
			WithDetail("offline.origin: " + err.Error()).
			WithSuggestion("Use an absolute URL such as http://localhost:4173")
	}
	if _, err := time.ParseDuration(c.Toast.Duration); err != nil {
		return errors.New("K102").
			WithDetail(fmt.Sprintf("toast.duration: %q is not a duration", c.Toast.Duration)).
			WithSuggestion(`Use a Go duration such as "5s"`)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return errors.New("K102").
			WithDetail(fmt.Sprintf("log_level: %q is not a level", c.LogLevel)).
			WithSuggestion("Use debug, info, warn or error")
	}
	switch c.Cache.Backend {
	case BackendMemory, BackendBolt:
	case BackendS3:
		if c.Cache.S3.Bucket == "" {
			return errors.New("K102").
				WithDetail("cache.s3.bucket is required for the s3 backend")
		}
	default:
		return errors.New("K103").
			WithDetail(fmt.Sprintf("backend %q is not supported", c.Cache.Backend))
	}
	if !strings.HasPrefix(c.Offline.APIPrefix, "/") {
		return errors.New("K102").
			WithDetail(fmt.Sprintf("offline.api_prefix: %q must start with /", c.Offline.APIPrefix))
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.API.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvVersion)); v != "" {
		c.Offline.Version = v
	}
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	if c.API.URL == "" {
		c.API.URL = DefaultAPIURL
	}
	if c.API.TokenFile == "" {
		c.API.TokenFile = DefaultTokenFile
	}

	if c.Toast.Duration == "" {
		c.Toast.Duration = toast.DefaultDuration.String()
	}

	if c.Offline.Origin == "" {
		c.Offline.Origin = DefaultOrigin
	}
	if c.Offline.Listen == "" {
		c.Offline.Listen = DefaultListen
	}
	if c.Offline.APIPrefix == "" {
		c.Offline.APIPrefix = offline.DefaultAPIPrefix
	}
	if c.Offline.CachePrefix == "" {
		c.Offline.CachePrefix = offline.DefaultCachePrefix
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendMemory
	}
	if c.Cache.BoltPath == "" {
		c.Cache.BoltPath = DefaultBoltPath
	}
	if c.Cache.S3.Prefix == "" {
		c.Cache.S3.Prefix = DefaultS3Prefix
	}
}

func absoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", raw)
	}
	return nil
}

func parseDetail(path string, err error) string {
	var de *toml.DecodeError
	if stderrors.As(err, &de) {
		row, col := de.Position()
		return fmt.Sprintf("%s:%d:%d: %s", path, row, col, de.Error())
	}
	return fmt.Sprintf("%s: %v", path, err)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
