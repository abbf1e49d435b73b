// Package config provides configuration management for rsc using Viper for
// loading from files, environment variables and command-line flags.
//
// Values come from .rsc.yml (or the file named by --config or
// RSC_CONFIG_FILE), RSC_-prefixed environment variables such as
// RSC_SERVER_PORT, and flags bound by the cmd package. Load applies defaults
// and validates the result.
package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/rsc/internal/logging"
)

type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Styles      StylesConfig      `yaml:"styles" mapstructure:"styles"`
	Development DevelopmentConfig `yaml:"development" mapstructure:"development"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Boundary    BoundaryConfig    `yaml:"boundary" mapstructure:"boundary"`
}

type ServerConfig struct {
	Port           int           `yaml:"port" mapstructure:"port"`
	Host           string        `yaml:"host" mapstructure:"host"`
	Environment    string        `yaml:"environment" mapstructure:"environment"`
	AllowedOrigins []string      `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

type StylesConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Minify bool   `yaml:"minify" mapstructure:"minify"`
}

type DevelopmentConfig struct {
	HotReload bool `yaml:"hot_reload" mapstructure:"hot_reload"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

type BoundaryConfig struct {
	Paths                  []string `yaml:"paths" mapstructure:"paths"`
	ServerForbiddenImports []string `yaml:"server_forbidden_imports" mapstructure:"server_forbidden_imports"`
	ClientForbiddenImports []string `yaml:"client_forbidden_imports" mapstructure:"client_forbidden_imports"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("styles.dir", "styles")
	v.SetDefault("styles.minify", false)
	v.SetDefault("development.hot_reload", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("boundary.paths", []string{"."})
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	hotReloadSet := v.IsSet("development.hot_reload")
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Unmarshal leaves comma separated env values as a single element.
	if origins := v.GetStringSlice("server.allowed_origins"); len(origins) > 0 {
		config.Server.AllowedOrigins = splitList(origins)
	}
	config.Boundary.Paths = splitList(config.Boundary.Paths)

	if config.Server.Environment == "production" && !hotReloadSet {
		config.Development.HotReload = false
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Logger builds the logger described by the log section.
func (c *Config) Logger() *logging.RSCLogger {
	level, _ := logging.ParseLevel(c.Log.Level)
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Format = c.Log.Format
	return logging.NewLogger(cfg)
}

func splitList(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	}
	return result
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateStylesConfig(&config.Styles); err != nil {
		return fmt.Errorf("styles config: %w", err)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	for _, path := range config.Boundary.Paths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("boundary config: invalid path '%s': %w", path, err)
		}
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// 0 asks the system for a free port.
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\", "/"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	switch config.Environment {
	case "development", "production", "test":
	default:
		return fmt.Errorf("unknown environment %q (development, production, test)", config.Environment)
	}

	if config.ReadTimeout < 0 || config.WriteTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}

	return nil
}

// validateStylesConfig validates the stylesheet directory
func validateStylesConfig(config *StylesConfig) error {
	if config.Dir == "" {
		return nil
	}
	if err := validatePath(config.Dir); err != nil {
		return err
	}
	if filepath.IsAbs(filepath.Clean(config.Dir)) {
		return fmt.Errorf("dir should be a relative path: %s", config.Dir)
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return err
	}
	switch config.Format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown log format %q (text, json)", config.Format)
	}
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
