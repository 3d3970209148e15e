package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

// Host kinds accepted by HOST_KIND.
const (
	HostStatic = "static"
	HostMock   = "mock"
	HostIMU    = "imu"
	HostMQTT   = "mqtt"
	HostSerial = "serial"
)

// EnvPrefix is the prefix of environment variables overriding file values,
// e.g. DEVICEINFO_HOST_KIND=mock.
const EnvPrefix = "DEVICEINFO"

// Config holds all application configuration values.
type Config struct {
	// Host
	HostKind    string
	DeviceClass orientation.DeviceClass
	Policy      orientation.Policy

	// MQTT
	MQTTBroker      string
	MQTTClientID    string
	TopicHostEvents string
	TopicState      string

	// IMU Hardware
	IMUSPIDevice      string
	IMUCSPin          string
	IMUSampleInterval int // milliseconds
	IMUFlatRatio      float64

	// Serial sensor hub
	SerialPort     string
	SerialBaudRate int

	// Mock host
	MockInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CBus         string
	DisplayUpdateInterval int // milliseconds
}

// defaults are applied before the file and the environment. Every key the
// application understands has an entry, which is also how viper learns
// which environment variables to look at.
var defaults = map[string]string{
	"HOST_KIND":               HostStatic,
	"DEVICE_CLASS":            "desktop",
	"ORIENTATION_POLICY":      "gated",
	"MQTT_BROKER":             "tcp://localhost:1883",
	"MQTT_CLIENT_ID":          "deviceinfo",
	"TOPIC_HOST_EVENTS":       "deviceinfo/host/orientation",
	"TOPIC_STATE":             "deviceinfo/state",
	"IMU_SPI_DEVICE":          "/dev/spidev0.0",
	"IMU_CS_PIN":              "8",
	"IMU_SAMPLE_INTERVAL":     "100",
	"IMU_FLAT_RATIO":          "0.8",
	"SERIAL_PORT":             "/dev/serial0",
	"SERIAL_BAUD_RATE":        "9600",
	"MOCK_INTERVAL":           "500",
	"WEB_SERVER_PORT":         "8080",
	"DISPLAY_I2C_BUS":         "",
	"DISPLAY_UPDATE_INTERVAL": "250",
}

// Package-level singleton: InitGlobal sets it once, Get reads it.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads a KEY=VALUE configuration file, applies DEVICEINFO_* environment
// overrides and returns the validated Config. An empty path loads defaults
// and environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("env")
	for key, value := range defaults {
		v.SetDefault(strings.ToLower(key), value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if err := cfg.setValue(name, strings.TrimSpace(v.GetString(key))); err != nil {
			return nil, fmt.Errorf("config %s: %w", name, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Host
	case "HOST_KIND":
		c.HostKind = value
	case "DEVICE_CLASS":
		class, err := orientation.ParseDeviceClass(value)
		if err != nil {
			return err
		}
		c.DeviceClass = class
	case "ORIENTATION_POLICY":
		p, err := orientation.ParsePolicy(value)
		if err != nil {
			return err
		}
		c.Policy = p

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "TOPIC_HOST_EVENTS":
		c.TopicHostEvents = value
	case "TOPIC_STATE":
		c.TopicState = value

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.IMUSampleInterval = interval
	case "IMU_FLAT_RATIO":
		ratio, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid IMU_FLAT_RATIO %q: %w", value, err)
		}
		if ratio <= 0.5 || ratio > 1 {
			return fmt.Errorf("IMU_FLAT_RATIO must be in (0.5, 1], got %g", ratio)
		}
		c.IMUFlatRatio = ratio

	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate

	// Mock
	case "MOCK_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MOCK_INTERVAL %q: %w", value, err)
		}
		c.MockInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", port)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that the fields the selected host needs are set.
func (c *Config) validate() error {
	switch c.HostKind {
	case HostStatic:
	case HostMock:
		if c.MockInterval <= 0 {
			return fmt.Errorf("MOCK_INTERVAL must be positive")
		}
	case HostIMU:
		if c.IMUSPIDevice == "" {
			return fmt.Errorf("IMU_SPI_DEVICE is required for HOST_KIND=imu")
		}
		if c.IMUSampleInterval <= 0 {
			return fmt.Errorf("IMU_SAMPLE_INTERVAL must be positive")
		}
	case HostMQTT:
		if c.MQTTBroker == "" {
			return fmt.Errorf("MQTT_BROKER is required for HOST_KIND=mqtt")
		}
		if c.TopicHostEvents == "" {
			return fmt.Errorf("TOPIC_HOST_EVENTS is required for HOST_KIND=mqtt")
		}
	case HostSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required for HOST_KIND=serial")
		}
		if c.SerialBaudRate <= 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE must be positive")
		}
	default:
		return fmt.Errorf("HOST_KIND must be one of static, mock, imu, mqtt, serial; got %q", c.HostKind)
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive")
	}
	return nil
}

// InitGlobal loads the global configuration once; later calls are no-ops.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
