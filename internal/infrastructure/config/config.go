package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Tickbridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Host      HostConfig      `yaml:"host"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Journal   JournalConfig   `yaml:"journal"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// MQTTConfig contains transport settings applied to every client the host creates.
// The broker host, port and client ID come from the host's "client" command.
type MQTTConfig struct {
	// Transport is "ws" (MQTT over WebSocket) or "tcp".
	Transport string `yaml:"transport"`

	// Path is the WebSocket endpoint path. Ignored for tcp.
	Path string `yaml:"path"`

	// ConnectTimeout bounds a single connect attempt (seconds).
	ConnectTimeout int `yaml:"connect_timeout"`

	// KeepAlive is the MQTT keepalive interval (seconds).
	KeepAlive int `yaml:"keep_alive"`

	// AutoReconnect lets the client library reconnect after a lost
	// connection. The host's connected flag is not affected either way.
	AutoReconnect bool `yaml:"auto_reconnect"`

	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// HostConfig contains settings for the built-in polling host.
type HostConfig struct {
	Enabled bool `yaml:"enabled"`

	// TickRate is the number of polls per second.
	TickRate int `yaml:"tick_rate"`

	// Program is the path to the YAML program the host runs.
	Program string `yaml:"program"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// JournalConfig contains settings for the SQLite message journal.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// BufferSize is how many delivered messages may wait for the writer
	// before new ones are dropped.
	BufferSize int `yaml:"buffer_size"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`

	// ReportInterval is how often adapter stats are sampled (seconds).
	ReportInterval int `yaml:"report_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings. An empty secret disables API auth.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: TICKBRIDGE_SECTION_KEY
// For example: TICKBRIDGE_API_PORT, TICKBRIDGE_JOURNAL_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration, used when no file is present.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Transport:      "ws",
			Path:           "/mqtt",
			ConnectTimeout: 30,
			KeepAlive:      60,
		},
		Host: HostConfig{
			Enabled:  true,
			TickRate: 30,
			Program:  "configs/program.yaml",
		},
		API: APIConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8601,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Journal: JournalConfig{
			Path:        "./data/journal.db",
			WALMode:     true,
			BusyTimeout: 5,
			BufferSize:  256,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:      100,
			FlushInterval:  10,
			ReportInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 60,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: TICKBRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("TICKBRIDGE_MQTT_TRANSPORT"); v != "" {
		cfg.MQTT.Transport = v
	}
	if v := os.Getenv("TICKBRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("TICKBRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}

	// Host
	if v := os.Getenv("TICKBRIDGE_HOST_PROGRAM"); v != "" {
		cfg.Host.Program = v
	}

	// API
	if v := os.Getenv("TICKBRIDGE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("TICKBRIDGE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// Journal
	if v := os.Getenv("TICKBRIDGE_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}

	// InfluxDB
	if v := os.Getenv("TICKBRIDGE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Security - JWT secret (keep it out of the config file)
	if v := os.Getenv("TICKBRIDGE_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// minJWTSecretLength is the shortest accepted HS256 secret.
const minJWTSecretLength = 32

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// MQTT validation
	switch strings.ToLower(c.MQTT.Transport) {
	case "ws", "tcp":
	default:
		errs = append(errs, "mqtt.transport must be \"ws\" or \"tcp\"")
	}
	if c.MQTT.ConnectTimeout < 0 {
		errs = append(errs, "mqtt.connect_timeout must not be negative")
	}

	// Host validation
	if c.Host.Enabled {
		if c.Host.TickRate < 1 || c.Host.TickRate > 1000 {
			errs = append(errs, "host.tick_rate must be between 1 and 1000")
		}
		if c.Host.Program == "" {
			errs = append(errs, "host.program is required when the host is enabled")
		}
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Journal validation
	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when the journal is enabled")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.ReportInterval < 1 {
			errs = append(errs, "influxdb.report_interval must be at least 1 second")
		}
	}

	// Security validation - the secret is optional, but a short one is refused.
	if c.Security.JWT.Secret != "" && len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters for adequate security")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// TickInterval returns the host's poll period.
func (c *Config) TickInterval() time.Duration {
	if c.Host.TickRate <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(c.Host.TickRate)
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
