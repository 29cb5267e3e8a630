package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/relabs-tech/weather_station/internal/schedule"
)

// ErrIntervalRange is returned for <T>_INTERVAL_MINUTES outside [1, 60].
var ErrIntervalRange = schedule.ErrIntervalRange

// Upload target names. They double as the sink names used in logs and
// metrics labels.
const (
	TargetMongoDB  = "mongodb"
	TargetWU       = "wu"
	TargetMQTT     = "mqtt"
	TargetKafka    = "kafka"
	TargetPostgres = "postgres"
)

// DefaultWUURL is the Weather Underground personal station upload endpoint.
const DefaultWUURL = "https://weatherstation.wunderground.com/weatherstation/updateweatherstation.php"

// Target is the schedule of one upload destination.
type Target struct {
	Name            string
	Enabled         bool
	IntervalMinutes int
}

// Config holds all application configuration values.
type Config struct {
	DeviceID    string
	SensorBoard string // "sensehat" or "mock"
	I2CBus      string
	CPUTempPath string

	// Display
	Display            string // "console", "ssd1306" or "none"
	DisplayRotation    int
	DisplayScrollSpeed float64

	// Upload policy
	UploadTimeout time.Duration
	ShutdownGrace time.Duration

	// Optional surfaces; empty disables
	WebServerAddr string
	GPSSerialPort string
	GPSBaudRate   int

	// Per-target schedules
	MongoDB  Target
	WU       Target
	MQTT     Target
	Kafka    Target
	Postgres Target

	// MongoDB
	MongoURL        string
	MongoDatabase   string
	MongoCollection string

	// Weather Underground
	WUStationID  string
	WUStationKey string
	WUURL        string

	// MQTT
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string

	// Kafka
	KafkaBrokers []string
	KafkaTopic   string

	// PostgreSQL
	PostgresURL   string
	PostgresTable string
}

// Package-level unexported variables for singleton pattern. External code
// must use InitGlobal() to set and Get() to read.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Defaults returns a Config with every optional value filled in.
func Defaults() *Config {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "weather-station"
	}
	return &Config{
		DeviceID:           host,
		SensorBoard:        "sensehat",
		Display:            "console",
		DisplayRotation:    180,
		DisplayScrollSpeed: 0.1,
		UploadTimeout:      5 * time.Second,
		ShutdownGrace:      10 * time.Second,
		GPSBaudRate:        9600,
		MongoDB:            Target{Name: TargetMongoDB},
		WU:                 Target{Name: TargetWU},
		MQTT:               Target{Name: TargetMQTT},
		Kafka:              Target{Name: TargetKafka},
		Postgres:           Target{Name: TargetPostgres},
		WUURL:              DefaultWUURL,
		MQTTClientID:       "weather-station",
		MQTTTopic:          "weather/readings",
		PostgresTable:      "readings",
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	values, err := godotenv.Read(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cfg := Defaults()
	for _, key := range keys {
		if err := cfg.setValue(key, strings.TrimSpace(values[key])); err != nil {
			return nil, fmt.Errorf("config %s: %w", configPath, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// target maps a key prefix to its schedule.
func (c *Config) target(prefix string) *Target {
	switch prefix {
	case "MONGODB":
		return &c.MongoDB
	case "WU":
		return &c.WU
	case "MQTT":
		return &c.MQTT
	case "KAFKA":
		return &c.Kafka
	case "POSTGRES":
		return &c.Postgres
	}
	return nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	if prefix, ok := strings.CutSuffix(key, "_UPLOAD"); ok {
		if t := c.target(prefix); t != nil {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, value, err)
			}
			t.Enabled = b
			return nil
		}
	}
	if prefix, ok := strings.CutSuffix(key, "_INTERVAL_MINUTES"); ok {
		if t := c.target(prefix); t != nil {
			minutes, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, value, err)
			}
			if err := schedule.ValidateInterval(minutes); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			t.IntervalMinutes = minutes
			return nil
		}
	}

	switch key {
	// General
	case "DEVICE_ID":
		if value != "" {
			c.DeviceID = value
		}
	case "SENSOR_BOARD":
		switch value {
		case "sensehat", "mock":
			c.SensorBoard = value
		default:
			return fmt.Errorf("SENSOR_BOARD must be sensehat or mock, got %q", value)
		}
	case "I2C_BUS":
		c.I2CBus = value
	case "CPU_TEMP_PATH":
		c.CPUTempPath = value

	// Display
	case "DISPLAY":
		switch value {
		case "console", "ssd1306", "none":
			c.Display = value
		default:
			return fmt.Errorf("DISPLAY must be console, ssd1306 or none, got %q", value)
		}
	case "DISPLAY_ROTATION":
		deg, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_ROTATION %q: %w", value, err)
		}
		if deg != 0 && deg != 90 && deg != 180 && deg != 270 {
			return fmt.Errorf("DISPLAY_ROTATION must be 0, 90, 180 or 270, got %d", deg)
		}
		c.DisplayRotation = deg
	case "DISPLAY_SCROLL_SPEED":
		speed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_SCROLL_SPEED %q: %w", value, err)
		}
		if speed <= 0 {
			return fmt.Errorf("DISPLAY_SCROLL_SPEED must be positive, got %v", speed)
		}
		c.DisplayScrollSpeed = speed

	// Upload policy
	case "UPLOAD_TIMEOUT":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid UPLOAD_TIMEOUT %q: %w", value, err)
		}
		if d <= 0 || d >= time.Minute {
			return fmt.Errorf("UPLOAD_TIMEOUT must be between 0 and 1m, got %s", d)
		}
		c.UploadTimeout = d
	case "SHUTDOWN_GRACE":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid SHUTDOWN_GRACE %q: %w", value, err)
		}
		if d < 0 {
			return fmt.Errorf("SHUTDOWN_GRACE must not be negative, got %s", d)
		}
		c.ShutdownGrace = d

	// Optional surfaces
	case "WEB_SERVER_ADDR":
		c.WebServerAddr = value
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		if rate <= 0 {
			return fmt.Errorf("GPS_BAUD_RATE must be positive, got %d", rate)
		}
		c.GPSBaudRate = rate

	// MongoDB
	case "MONGODB_URL":
		c.MongoURL = value
	case "MONGODB_DATABASE":
		c.MongoDatabase = value
	case "MONGODB_COLLECTION":
		c.MongoCollection = value

	// Weather Underground
	case "WU_STATION_ID":
		c.WUStationID = value
	case "WU_STATION_KEY":
		c.WUStationKey = value
	case "WU_URL":
		if value != "" {
			c.WUURL = value
		}

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "MQTT_TOPIC":
		c.MQTTTopic = value

	// Kafka
	case "KAFKA_BROKERS":
		c.KafkaBrokers = nil
		for _, b := range strings.Split(value, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.KafkaBrokers = append(c.KafkaBrokers, b)
			}
		}
	case "KAFKA_TOPIC":
		c.KafkaTopic = value

	// PostgreSQL
	case "POSTGRES_URL":
		c.PostgresURL = value
	case "POSTGRES_TABLE":
		c.PostgresTable = value

	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// validate checks that every enabled target has a schedule and the
// settings its sink needs.
func (c *Config) validate() error {
	var errs []error
	required := func(t Target, pairs ...string) {
		if !t.Enabled {
			return
		}
		if t.IntervalMinutes == 0 {
			errs = append(errs, fmt.Errorf("%s_INTERVAL_MINUTES is required when %s upload is enabled: %w",
				strings.ToUpper(t.Name), t.Name, ErrIntervalRange))
		}
		for i := 0; i+1 < len(pairs); i += 2 {
			if pairs[i+1] == "" {
				errs = append(errs, fmt.Errorf("%s is required when %s upload is enabled", pairs[i], t.Name))
			}
		}
	}

	required(c.MongoDB, "MONGODB_URL", c.MongoURL, "MONGODB_DATABASE", c.MongoDatabase, "MONGODB_COLLECTION", c.MongoCollection)
	required(c.WU, "WU_STATION_ID", c.WUStationID, "WU_STATION_KEY", c.WUStationKey)
	required(c.MQTT, "MQTT_BROKER", c.MQTTBroker, "MQTT_TOPIC", c.MQTTTopic)
	required(c.Kafka, "KAFKA_BROKERS", strings.Join(c.KafkaBrokers, ","), "KAFKA_TOPIC", c.KafkaTopic)
	required(c.Postgres, "POSTGRES_URL", c.PostgresURL, "POSTGRES_TABLE", c.PostgresTable)

	return errors.Join(errs...)
}

// Targets returns the enabled targets in a fixed order.
func (c *Config) Targets() []Target {
	var out []Target
	for _, t := range []Target{c.MongoDB, c.WU, c.MQTT, c.Kafka, c.Postgres} {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
