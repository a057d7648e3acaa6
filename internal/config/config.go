package config

import (
	"os"
	"time"

	yamlenv "github.com/ifuryst/go-yaml-env"
	"github.com/joho/godotenv"

	"github.com/ifuryst/postq/internal/service/queue"
	"github.com/ifuryst/postq/internal/service/validator"
	"github.com/ifuryst/postq/pkg/logger"
)

type Config struct {
	Logger     logger.Config    `yaml:"logger"`
	Paths      PathsConfig      `yaml:"paths"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Validation validator.Policy `yaml:"validation"`
	Dispatch   DispatchConfig   `yaml:"dispatch"`
	Publisher  PublisherConfig  `yaml:"publisher"`
	Server     ServerConfig     `yaml:"server"`
}

type PathsConfig struct {
	Queue     string `yaml:"queue"`
	Templates string `yaml:"templates"`
	Lexicon   string `yaml:"lexicon"`
}

type ScheduleConfig struct {
	Timezone string `yaml:"timezone"`
	Days     int    `yaml:"days"`
}

// Location resolves the civil timezone dates are scheduled in
func (s ScheduleConfig) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}

type DispatchConfig struct {
	FingerprintWindow int `yaml:"fingerprint_window"`
	HookWindow        int `yaml:"hook_window"`
}

type PublisherConfig struct {
	X XConfig `yaml:"x"`
}

type XConfig struct {
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"api_key"`
	APIKeySecret      string        `yaml:"api_key_secret"`
	AccessToken       string        `yaml:"access_token"`
	AccessTokenSecret string        `yaml:"access_token_secret"`
	Timeout           time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Mode     string `yaml:"mode"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// LoadConfig reads .env (when present) and the YAML file, then fills defaults.
// X credentials fall back to the X_* environment variables.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Paths.Queue == "" {
		c.Paths.Queue = "queue.json"
	}
	if c.Paths.Templates == "" {
		c.Paths.Templates = "content/templates.json"
	}
	if c.Paths.Lexicon == "" {
		c.Paths.Lexicon = "content/lexicon.json"
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "Asia/Tokyo"
	}
	if c.Schedule.Days == 0 {
		c.Schedule.Days = 30
	}
	if c.Logger.Timezone == "" {
		c.Logger.Timezone = "UTC"
	}
	c.Validation = c.Validation.WithDefaults()
	if c.Dispatch.FingerprintWindow == 0 {
		c.Dispatch.FingerprintWindow = queue.DefaultFingerprintWindow
	}
	if c.Dispatch.HookWindow == 0 {
		c.Dispatch.HookWindow = queue.DefaultHookWindow
	}
	if c.Publisher.X.BaseURL == "" {
		c.Publisher.X.BaseURL = "https://api.x.com"
	}
	if c.Publisher.X.Timeout == 0 {
		c.Publisher.X.Timeout = 30 * time.Second
	}
	envFallback(&c.Publisher.X.APIKey, "X_API_KEY")
	envFallback(&c.Publisher.X.APIKeySecret, "X_API_KEY_SECRET")
	envFallback(&c.Publisher.X.AccessToken, "X_ACCESS_TOKEN")
	envFallback(&c.Publisher.X.AccessTokenSecret, "X_ACCESS_TOKEN_SECRET")
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5334
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
}

func envFallback(field *string, key string) {
	if *field == "" {
		*field = os.Getenv(key)
	}
}
