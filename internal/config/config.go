package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Server struct {
	Port         int               `yaml:"port" toml:"port"`
	CORSOrigins  []string          `yaml:"corsOrigins" toml:"cors_origins"`
	MaxUploadMB  int64             `yaml:"maxUploadMB" toml:"max_upload_mb"`
	RateLimitRPS float64           `yaml:"rateLimitRPS" toml:"rate_limit_rps"`
	RateBurst    int               `yaml:"rateBurst" toml:"rate_burst"`
	APIKeys      map[string]string `yaml:"apiKeys" toml:"api_keys"` // tenant -> key; empty disables auth
}

type OpenAI struct {
	APIKey         string `yaml:"apiKey" toml:"api_key"`
	Model          string `yaml:"model" toml:"model"`
	BaseURL        string `yaml:"baseURL" toml:"base_url"`
	API            string `yaml:"api" toml:"api"` // chat | responses
	TimeoutSeconds int    `yaml:"timeoutSeconds" toml:"timeout_seconds"`
}

type Analysis struct {
	MaxRetries  int `yaml:"maxRetries" toml:"max_retries"`
	BaseDelayMS int `yaml:"baseDelayMS" toml:"base_delay_ms"`
	IncrementMS int `yaml:"incrementMS" toml:"increment_ms"`
}

type Database struct {
	Driver   string `yaml:"driver" toml:"driver"` // mysql | postgres | sqlite | "" (disabled)
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	User     string `yaml:"user" toml:"user"`
	Password string `yaml:"password" toml:"password"`
	Name     string `yaml:"name" toml:"name"`
	Path     string `yaml:"path" toml:"path"` // sqlite file
}

type Minio struct {
	Enabled    bool   `yaml:"enabled" toml:"enabled"`
	Endpoint   string `yaml:"endpoint" toml:"endpoint"`
	AccessKey  string `yaml:"accessKey" toml:"access_key"`
	SecretKey  string `yaml:"secretKey" toml:"secret_key"`
	BucketName string `yaml:"bucketName" toml:"bucket_name"`
	Region     string `yaml:"region" toml:"region"`
	UseSSL     bool   `yaml:"useSSL" toml:"use_ssl"`
}

type PDF struct {
	PdftotextPath  string `yaml:"pdftotextPath" toml:"pdftotext_path"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" toml:"timeout_seconds"`
	UploadDir      string `yaml:"uploadDir" toml:"upload_dir"`
}

type Config struct {
	Server   Server   `yaml:"server" toml:"server"`
	OpenAI   OpenAI   `yaml:"openai" toml:"openai"`
	Analysis Analysis `yaml:"analysis" toml:"analysis"`
	Database Database `yaml:"database" toml:"database"`
	Minio    Minio    `yaml:"minio" toml:"minio"`
	PDF      PDF      `yaml:"pdf" toml:"pdf"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: Server{
			Port:         8000,
			CORSOrigins:  []string{"*"},
			MaxUploadMB:  25,
			RateLimitRPS: 2,
			RateBurst:    5,
		},
		OpenAI: OpenAI{
			Model:          "gpt-4o-mini",
			API:            "chat",
			TimeoutSeconds: 120,
		},
		Analysis: Analysis{
			MaxRetries:  2,
			BaseDelayMS: 1000,
			IncrementMS: 500,
		},
		Database: Database{
			Driver: "sqlite",
			Path:   filepath.Join("data", "smartdocs.db"),
		},
		PDF: PDF{
			PdftotextPath:  "pdftotext",
			TimeoutSeconds: 60,
			UploadDir:      "sample_docs",
		},
	}
}

// Path returns CONFIG_PATH or config.yaml.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "config.yaml"
}

// Load baca file config (.yaml/.yml atau .toml) di atas default, lalu env override.
// File yang tidak ada bukan error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.OpenAI.BaseURL = v
	}
	if v := os.Getenv("SMARTDOCS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("server.maxUploadMB must be positive"))
	}
	if c.Server.RateLimitRPS <= 0 {
		errs = append(errs, fmt.Errorf("server.rateLimitRPS must be positive, got %v", c.Server.RateLimitRPS))
	}
	if c.Server.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("server.rateBurst must be at least 1, got %d", c.Server.RateBurst))
	}
	switch c.OpenAI.API {
	case "chat", "responses":
	default:
		errs = append(errs, fmt.Errorf("openai.api must be chat or responses, got %q", c.OpenAI.API))
	}
	if c.Analysis.MaxRetries < 0 {
		errs = append(errs, errors.New("analysis.maxRetries must not be negative"))
	}
	switch c.Database.Driver {
	case "", "sqlite":
	case "mysql", "postgres":
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.host and database.name are required for %s", c.Database.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}
	if c.Minio.Enabled && (c.Minio.Endpoint == "" || c.Minio.BucketName == "") {
		errs = append(errs, errors.New("minio.endpoint and minio.bucketName are required when minio is enabled"))
	}
	return errors.Join(errs...)
}

// RequireAPIKey is checked by commands that actually call the model.
func (c *Config) RequireAPIKey() error {
	if c.OpenAI.APIKey == "" {
		return errors.New("OPENAI_API_KEY not set")
	}
	return nil
}

func (c *Config) OpenAITimeout() time.Duration {
	return time.Duration(c.OpenAI.TimeoutSeconds) * time.Second
}

func (c *Config) PDFTimeout() time.Duration {
	return time.Duration(c.PDF.TimeoutSeconds) * time.Second
}

func (c *Config) MaxUploadBytes() int64 { return c.Server.MaxUploadMB << 20 }

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// MigrateURL is the golang-migrate database URL for the configured driver.
func (c *Config) MigrateURL() (string, error) {
	switch c.Database.Driver {
	case "mysql":
		return "mysql://" + c.MySQLDSN(), nil
	case "postgres":
		return c.PostgresDSN(), nil
	case "sqlite":
		return "sqlite://" + c.Database.Path, nil
	default:
		return "", fmt.Errorf("no database configured")
	}
}
