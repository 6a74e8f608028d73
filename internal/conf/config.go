package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Search   SearchConfig
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableCaller     bool          `mapstructure:"enablecaller"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

// SearchConfig tunes the search engine and its request lifecycle.
type SearchConfig struct {
	DebounceMs      int `mapstructure:"debounce_ms"`       // free-text debounce window
	DefaultPerPage  int `mapstructure:"default_per_page"`
	MaxPerPage      int `mapstructure:"max_per_page"`      // hard cap on page size
	SuggestMinChars int `mapstructure:"suggest_min_chars"` // autocomplete threshold
	MaxTags         int `mapstructure:"max_tags"`          // tag selection cap
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Search.applyDefaults()
	return &config, nil
}

func (c *SearchConfig) applyDefaults() {
	if c.DebounceMs <= 0 {
		c.DebounceMs = 300
	}
	if c.DefaultPerPage <= 0 {
		c.DefaultPerPage = 20
	}
	if c.MaxPerPage <= 0 {
		c.MaxPerPage = 100
	}
	if c.SuggestMinChars <= 0 {
		c.SuggestMinChars = 2
	}
	if c.MaxTags <= 0 {
		c.MaxTags = 20
	}
}

// Debounce returns the free-text debounce window as a duration.
func (c *SearchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
