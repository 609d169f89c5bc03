package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Node roles.
const (
	RoleBackend  = "backend"
	RoleFrontend = "frontend"
	RoleSim      = "sim"
)

// Link transports.
const (
	TransportSerial = "serial"
	TransportTCP    = "tcp"
)

// Credential stores.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config is the root configuration structure for a door lock node.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Node       NodeConfig       `yaml:"node"`
	Link       LinkConfig       `yaml:"link"`
	Timing     TimingConfig     `yaml:"timing"`
	Security   SecurityConfig   `yaml:"security"`
	Credential CredentialConfig `yaml:"credential"`
	Hardware   HardwareConfig   `yaml:"hardware"`
	Database   DatabaseConfig   `yaml:"database"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// NodeConfig identifies this node.
type NodeConfig struct {
	// ID names the node in MQTT topics, metrics and audit records.
	ID string `yaml:"id"`

	// Role is backend (controller), frontend (panel) or sim (both in one
	// process over an in-memory link).
	Role string `yaml:"role"`
}

// LinkConfig describes the byte link between the two nodes.
type LinkConfig struct {
	// Transport is serial or tcp. Ignored by the sim role.
	Transport string `yaml:"transport"`

	// Device is the serial port, e.g. /dev/ttyUSB0.
	Device string `yaml:"device"`

	// BaudRate for the serial port (8N1).
	BaudRate int `yaml:"baud_rate"`

	// Address is the TCP address. The backend listens on it and the
	// frontend dials it.
	Address string `yaml:"address"`

	// Trace logs every byte at debug level (digits are masked).
	Trace bool `yaml:"trace"`
}

// TimingConfig holds the tick source rate and the sequencer thresholds.
type TimingConfig struct {
	// TickInterval is the period of the tick source.
	TickInterval time.Duration `yaml:"tick_interval"`

	// PollInterval is how often a running sequence checks the tick count.
	// Zero busy-spins.
	PollInterval time.Duration `yaml:"poll_interval"`

	DoorOpenTicks  uint32 `yaml:"door_open_ticks"`
	DoorHoldTicks  uint32 `yaml:"door_hold_ticks"`
	DoorCloseTicks uint32 `yaml:"door_close_ticks"`
	LockoutTicks   uint32 `yaml:"lockout_ticks"`

	// MessageTicks is how long the panel shows status messages.
	MessageTicks uint32 `yaml:"message_ticks"`
}

// SecurityConfig contains access control settings.
type SecurityConfig struct {
	// MaxAttempts is the number of consecutive failures that raises the alarm.
	MaxAttempts int `yaml:"max_attempts"`
}

// CredentialConfig selects where the authoritative passcode lives.
type CredentialConfig struct {
	// Store is sqlite or memory.
	Store string `yaml:"store"`

	// Address is the record slot within the store.
	Address int `yaml:"address"`
}

// HardwareConfig maps peripherals to GPIO lines.
type HardwareConfig struct {
	MotorIN1  int  `yaml:"motor_in1"`
	MotorIN2  int  `yaml:"motor_in2"`
	BuzzerPin int  `yaml:"buzzer_pin"`
	ANSI      bool `yaml:"ansi"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
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
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Output is stdout, stderr or file. The frontend uses the terminal for
	// its display, so file or stderr keeps log lines off the screen.
	Output string `yaml:"output"`
	// File is the log file path when Output is file.
	File string `yaml:"file"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults); skipped when path is empty
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: DOORLOCK_SECTION_KEY
// For example: DOORLOCK_LINK_DEVICE, DOORLOCK_DATABASE_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for defaults
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with the reference timing: a tick every
// 8.389 ms, doors moving for about 15 s, held open for about 3 s, and a
// one-minute lockout.
func Default() *Config {
	return &Config{
		Node: NodeConfig{
			ID:   "doorlock-01",
			Role: RoleSim,
		},
		Link: LinkConfig{
			Transport: TransportSerial,
			Device:    "/dev/ttyUSB0",
			BaudRate:  9600,
			Address:   "127.0.0.1:7460",
		},
		Timing: TimingConfig{
			TickInterval:   8389 * time.Microsecond,
			PollInterval:   time.Millisecond,
			DoorOpenTicks:  1788,
			DoorHoldTicks:  357,
			DoorCloseTicks: 1788,
			LockoutTicks:   7152,
			MessageTicks:   60,
		},
		Security: SecurityConfig{
			MaxAttempts: 3,
		},
		Credential: CredentialConfig{
			Store:   StoreSQLite,
			Address: 0,
		},
		Hardware: HardwareConfig{
			MotorIN1:  4,
			MotorIN2:  5,
			BuzzerPin: 7,
			ANSI:      true,
		},
		Database: DatabaseConfig{
			Path:        "./data/doorlock.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "doorlock",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Org:           "doorlock",
			Bucket:        "doorlock",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: DOORLOCK_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"DOORLOCK_NODE_ID":          &cfg.Node.ID,
		"DOORLOCK_NODE_ROLE":        &cfg.Node.Role,
		"DOORLOCK_LINK_TRANSPORT":   &cfg.Link.Transport,
		"DOORLOCK_LINK_DEVICE":      &cfg.Link.Device,
		"DOORLOCK_LINK_ADDRESS":     &cfg.Link.Address,
		"DOORLOCK_CREDENTIAL_STORE": &cfg.Credential.Store,
		"DOORLOCK_DATABASE_PATH":    &cfg.Database.Path,
		"DOORLOCK_MQTT_HOST":        &cfg.MQTT.Broker.Host,
		"DOORLOCK_MQTT_USERNAME":    &cfg.MQTT.Auth.Username,
		"DOORLOCK_MQTT_PASSWORD":    &cfg.MQTT.Auth.Password,
		"DOORLOCK_INFLUXDB_URL":     &cfg.InfluxDB.URL,
		"DOORLOCK_INFLUXDB_TOKEN":   &cfg.InfluxDB.Token,
		"DOORLOCK_LOG_LEVEL":        &cfg.Logging.Level,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"DOORLOCK_MQTT_ENABLED":     &cfg.MQTT.Enabled,
		"DOORLOCK_INFLUXDB_ENABLED": &cfg.InfluxDB.Enabled,
	}
	for name, dst := range bools {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = b
	}

	if v := os.Getenv("DOORLOCK_LINK_BAUD_RATE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DOORLOCK_LINK_BAUD_RATE: %w", err)
		}
		cfg.Link.BaudRate = n
	}
	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Node.ID == "" {
		errs = append(errs, "node.id is required")
	}
	switch c.Node.Role {
	case RoleBackend, RoleFrontend, RoleSim:
	default:
		errs = append(errs, fmt.Sprintf("node.role must be %s, %s or %s", RoleBackend, RoleFrontend, RoleSim))
	}

	errs = append(errs, c.validateLink()...)
	errs = append(errs, c.validateTiming()...)

	if c.Security.MaxAttempts < 1 {
		errs = append(errs, "security.max_attempts must be at least 1")
	}

	switch c.Credential.Store {
	case StoreSQLite:
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for the sqlite credential store")
		}
	case StoreMemory:
	default:
		errs = append(errs, "credential.store must be sqlite or memory")
	}
	if c.Credential.Address < 0 {
		errs = append(errs, "credential.address must not be negative")
	}

	h := c.Hardware
	if h.MotorIN1 < 0 || h.MotorIN2 < 0 || h.BuzzerPin < 0 {
		errs = append(errs, "hardware pins must not be negative")
	}
	if h.MotorIN1 == h.MotorIN2 || h.MotorIN1 == h.BuzzerPin || h.MotorIN2 == h.BuzzerPin {
		errs = append(errs, "hardware pins must be distinct")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" || c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.url, influxdb.org and influxdb.bucket are required when influxdb is enabled")
		}
	}

	if c.Logging.Output == "file" && c.Logging.File == "" {
		errs = append(errs, "logging.file is required when logging.output is file")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateLink() []string {
	if c.Node.Role == RoleSim {
		return nil
	}

	var errs []string
	switch c.Link.Transport {
	case TransportSerial:
		if c.Link.Device == "" {
			errs = append(errs, "link.device is required for the serial transport")
		}
		if c.Link.BaudRate <= 0 {
			errs = append(errs, "link.baud_rate must be positive")
		}
	case TransportTCP:
		if c.Link.Address == "" {
			errs = append(errs, "link.address is required for the tcp transport")
		}
	default:
		errs = append(errs, "link.transport must be serial or tcp")
	}
	return errs
}

func (c *Config) validateTiming() []string {
	var errs []string
	t := c.Timing
	if t.TickInterval <= 0 {
		errs = append(errs, "timing.tick_interval must be positive")
	}
	if t.PollInterval < 0 {
		errs = append(errs, "timing.poll_interval must not be negative")
	}
	if t.DoorOpenTicks == 0 || t.DoorHoldTicks == 0 || t.DoorCloseTicks == 0 || t.LockoutTicks == 0 {
		errs = append(errs, "timing door and lockout ticks must be positive")
	}
	return errs
}

// TickDuration converts a tick count to wall time at the configured rate.
func (c *Config) TickDuration(ticks uint32) time.Duration {
	return time.Duration(ticks) * c.Timing.TickInterval
}
