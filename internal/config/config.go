// Package config loads site configuration from an optional YAML file,
// .env files and environment variables. Environment variables always win.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when CONFIG_PATH is unset.
const DefaultPath = "config.yml"

const (
	defaultPort          = 8080
	defaultLogLevel      = "info"
	defaultSQLitePath    = "data/site.db"
	defaultCacheDriver   = "sqlite"
	defaultCacheTTL      = time.Hour
	defaultRedisAddress  = "localhost:6379"
	defaultFetchRetries  = 3
	defaultFetchDelay    = time.Second
	defaultBloggerURL    = "https://www.googleapis.com/blogger/v3"
	defaultBloggerTO     = 5 * time.Second
	defaultBloggerMax    = 50
	defaultNotionURL     = "https://api.notion.com/v1"
	defaultNotionVersion = "2022-06-28"
	defaultNotionTO      = 30 * time.Second
	defaultYouTubeURL    = "https://www.googleapis.com/youtube/v3"
	defaultYouTubeTO     = 10 * time.Second
	defaultYouTubeMax    = 12
	defaultMaxPages      = 5
	defaultSMTPHost      = "smtp.gmail.com"
	defaultSMTPPort      = "587"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Blogger  BloggerConfig  `yaml:"blogger"`
	Notion   NotionConfig   `yaml:"notion"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Admin    AdminConfig    `yaml:"admin"`
}

type ServerConfig struct {
	Port  int  `env:"PORT"      yaml:"port"`
	Debug bool `env:"APP_DEBUG" yaml:"debug"`
}

type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" yaml:"level"`
}

type DatabaseConfig struct {
	Path string `env:"SQLITE_PATH" yaml:"path"`
}

// CacheConfig selects the response cache backend: "sqlite", "redis" or "none".
type CacheConfig struct {
	Driver        string        `env:"CACHE_DRIVER"   yaml:"driver"`
	TTL           time.Duration `env:"CACHE_TTL"      yaml:"ttl"`
	RedisAddress  string        `env:"REDIS_ADDRESS"  yaml:"redis_address"`
	RedisPassword string        `env:"REDIS_PASSWORD" yaml:"redis_password"`
	RedisDB       int           `env:"REDIS_DB"       yaml:"redis_db"`
}

// FetchConfig configures the retry budget shared by every upstream client.
// Retries counts attempts after the first one.
type FetchConfig struct {
	Retries   int           `env:"FETCH_RETRIES"    yaml:"retries"`
	BaseDelay time.Duration `env:"FETCH_BASE_DELAY" yaml:"base_delay"`
}

type BloggerConfig struct {
	APIKey     string        `env:"BLOGGER_API_KEY" yaml:"api_key"`
	BlogID     string        `env:"BLOGGER_BLOG_ID" yaml:"blog_id"`
	BaseURL    string        `env:"BLOGGER_BASE_URL" yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxResults int           `yaml:"max_results"`
	MaxPages   int           `yaml:"max_pages"`
}

type NotionConfig struct {
	Token          string        `env:"NOTION_TOKEN"           yaml:"token"`
	BaseURL        string        `env:"NOTION_BASE_URL"        yaml:"base_url"`
	Version        string        `yaml:"version"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxPages       int           `yaml:"max_pages"`
	TestimonialsDB string        `env:"NOTION_TESTIMONIALS_DB" yaml:"testimonials_db"`
	ServicesDB     string        `env:"NOTION_SERVICES_DB"     yaml:"services_db"`
	GalleryDB      string        `env:"NOTION_GALLERY_DB"      yaml:"gallery_db"`
	NewsletterDB   string        `env:"NOTION_NEWSLETTER_DB"   yaml:"newsletter_db"`
}

type YouTubeConfig struct {
	APIKey     string        `env:"YOUTUBE_API_KEY"    yaml:"api_key"`
	ChannelID  string        `env:"YOUTUBE_CHANNEL_ID" yaml:"channel_id"`
	BaseURL    string        `env:"YOUTUBE_BASE_URL"   yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxResults int           `yaml:"max_results"`
}

type SMTPConfig struct {
	Host string `env:"SMTP_HOST" yaml:"host"`
	Port string `env:"SMTP_PORT" yaml:"port"`
	User string `env:"SMTP_USER" yaml:"user"`
	Pass string `env:"SMTP_PASS" yaml:"pass"`
	To   string `env:"TO_EMAIL"  yaml:"to"`
}

type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME" yaml:"username"`
	Password string `env:"ADMIN_PASSWORD" yaml:"password"`
}

// Path returns CONFIG_PATH or DefaultPath.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the YAML file at path (a missing file is not an error),
// applies defaults and then environment overrides.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	setDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// loadEnvFiles loads .env.local then .env. godotenv never overrides a
// variable that is already set, so .env.local wins over .env.
func loadEnvFiles() error {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = defaultSQLitePath
	}
	setCacheDefaults(&cfg.Cache)
	if cfg.Fetch.Retries == 0 {
		cfg.Fetch.Retries = defaultFetchRetries
	}
	if cfg.Fetch.BaseDelay == 0 {
		cfg.Fetch.BaseDelay = defaultFetchDelay
	}
	setBloggerDefaults(&cfg.Blogger)
	setNotionDefaults(&cfg.Notion)
	setYouTubeDefaults(&cfg.YouTube)
	if cfg.SMTP.Host == "" {
		cfg.SMTP.Host = defaultSMTPHost
	}
	if cfg.SMTP.Port == "" {
		cfg.SMTP.Port = defaultSMTPPort
	}
}

func setCacheDefaults(c *CacheConfig) {
	if c.Driver == "" {
		c.Driver = defaultCacheDriver
	}
	if c.TTL == 0 {
		c.TTL = defaultCacheTTL
	}
	if c.RedisAddress == "" {
		c.RedisAddress = defaultRedisAddress
	}
}

func setBloggerDefaults(b *BloggerConfig) {
	if b.BaseURL == "" {
		b.BaseURL = defaultBloggerURL
	}
	if b.Timeout == 0 {
		b.Timeout = defaultBloggerTO
	}
	if b.MaxResults == 0 {
		b.MaxResults = defaultBloggerMax
	}
	if b.MaxPages == 0 {
		b.MaxPages = defaultMaxPages
	}
}

func setNotionDefaults(n *NotionConfig) {
	if n.BaseURL == "" {
		n.BaseURL = defaultNotionURL
	}
	if n.Version == "" {
		n.Version = defaultNotionVersion
	}
	if n.Timeout == 0 {
		n.Timeout = defaultNotionTO
	}
	if n.MaxPages == 0 {
		n.MaxPages = defaultMaxPages
	}
}

func setYouTubeDefaults(y *YouTubeConfig) {
	if y.BaseURL == "" {
		y.BaseURL = defaultYouTubeURL
	}
	if y.Timeout == 0 {
		y.Timeout = defaultYouTubeTO
	}
	if y.MaxResults == 0 {
		y.MaxResults = defaultYouTubeMax
	}
}
