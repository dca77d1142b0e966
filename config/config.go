package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "ROLLCALL"

// Config represents the complete application configuration
type Config struct {
	Attendance AttendanceConfig `yaml:"attendance" envconfig:"ATTENDANCE"`
	Window     WindowConfig     `yaml:"window" envconfig:"WINDOW"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	API        APIConfig        `yaml:"api" envconfig:"API"`
	Redis      RedisConfig      `yaml:"redis" envconfig:"REDIS"`
}

// AttendanceConfig controls how attendance is written to the spreadsheet
type AttendanceConfig struct {
	DateLayout   string `yaml:"date_layout" envconfig:"DATE_LAYOUT" default:"2006-01-02"`
	PresentLabel string `yaml:"present_label" envconfig:"PRESENT_LABEL" default:"Present"`
	AbsentLabel  string `yaml:"absent_label" envconfig:"ABSENT_LABEL" default:"Absent"`
	TrackTotal   bool   `yaml:"track_total" envconfig:"TRACK_TOTAL" default:"false"`
}

// WindowConfig contains desktop window settings
type WindowConfig struct {
	Width  float32 `yaml:"width" envconfig:"WIDTH" default:"480"`
	Height float32 `yaml:"height" envconfig:"HEIGHT" default:"800"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"console"`
}

// APIConfig enables the local JSON API. Empty Addr keeps it off.
type APIConfig struct {
	Addr string `yaml:"addr" envconfig:"ADDR"`
}

// RedisConfig enables recovery of unsaved marks. Empty Addr keeps it off.
type RedisConfig struct {
	Addr     string        `yaml:"addr" envconfig:"ADDR"`
	Password string        `yaml:"password" envconfig:"PASSWORD"`
	DB       int           `yaml:"db" envconfig:"DB" default:"8"`
	TTL      time.Duration `yaml:"ttl" envconfig:"TTL" default:"36h"`
}

// Load applies defaults and ROLLCALL_* environment variables, then overlays
// the optional YAML file named by ROLLCALL_CONFIG_FILE. Keys present in the
// file win over the environment.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile overlays the keys present in a YAML file onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}

	if c.Attendance.DateLayout == "" {
		return fmt.Errorf("date layout cannot be empty")
	}
	if c.Attendance.PresentLabel == "" || c.Attendance.AbsentLabel == "" {
		return fmt.Errorf("attendance labels cannot be empty")
	}
	if c.Attendance.PresentLabel == c.Attendance.AbsentLabel {
		return fmt.Errorf("present and absent labels must differ")
	}

	if c.API.Addr != "" {
		if err := requireLoopback(c.API.Addr); err != nil {
			return err
		}
	}
	return nil
}

// requireLoopback rejects API addresses reachable from other machines
func requireLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid api address %q: %w", addr, err)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("api address %q must be a loopback address", addr)
	}
	return nil
}
