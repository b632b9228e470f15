package app

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "EASYBRIDGE_"

type Config struct {
	LogLevel string `koanf:"log_level"`

	Device  DeviceConfig  `koanf:"device"`
	Gateway GatewayConfig `koanf:"gateway"`

	Controllers struct {
		HTTP   HTTPConfig   `koanf:"http"`
		MQTT   MQTTConfig   `koanf:"mqtt"`
		Modbus ModbusConfig `koanf:"modbus"`
	} `koanf:"controllers"`
}

// DeviceConfig identifies the paired thermostat.
type DeviceConfig struct {
	MAC        string `koanf:"mac"`
	ShouldPull bool   `koanf:"should_pull"`
	// PollInterval applies only when should_pull is set.
	PollInterval time.Duration `koanf:"poll_interval"`
}

// GatewayConfig points at the vendor broker the device is paired with.
// Empty broker_url selects the vendor cloud broker.
type GatewayConfig struct {
	BrokerURL string `koanf:"broker_url"`
	ClientID  string `koanf:"client_id"`
	Username  string `koanf:"username"`
	Password  string `koanf:"password"`
	QoS       byte   `koanf:"qos"`
}

type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

type MQTTConfig struct {
	Enabled         bool          `koanf:"enabled"`
	BrokerURL       string        `koanf:"broker_url"`
	ClientID        string        `koanf:"client_id"`
	BaseTopic       string        `koanf:"base_topic"`
	QoS             byte          `koanf:"qos"`
	RetainState     bool          `koanf:"retain_state"`
	PublishInterval time.Duration `koanf:"publish_interval"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
}

type ModbusConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
	UnitID  byte   `koanf:"unit_id"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.LogLevel = "info"
	cfg.Device.PollInterval = 30 * time.Second
	cfg.Controllers.HTTP.Enabled = true
	cfg.Controllers.HTTP.Addr = ":8080"
	cfg.Controllers.MQTT.PublishInterval = 1 * time.Second
	cfg.Controllers.Modbus.Addr = "127.0.0.1:1502"
	cfg.Controllers.Modbus.UnitID = 1
	return cfg
}

// LoadConfig layers defaults, an optional config file and EASYBRIDGE_*
// environment overrides, in that order.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return cfg, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return cfg, fmt.Errorf("unsupported config extension %q", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			// Config file missing → defaults + env only
			if !errors.Is(err, fs.ErrNotExist) {
				return cfg, fmt.Errorf("load config file: %w", err)
			}
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return envKeyTransform(strings.TrimPrefix(key, envPrefix)), value
		},
	}), nil)
	if err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Device.MAC == "" {
		return errors.New("device.mac is required")
	}
	return nil
}

// envKeyTransform maps EASYBRIDGE_-style keys onto config paths:
// DEVICE_MAC → device.mac, CONTROLLERS_HTTP_ADDR → controllers.http.addr,
// GATEWAY_BROKER_URL → gateway.broker_url. Keys outside the known sections
// pass through lowercased.
func envKeyTransform(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return ""
	}
	parts := strings.Split(key, "_")
	switch parts[0] {
	case "controllers":
		if len(parts) < 3 {
			return key
		}
		return parts[0] + "." + parts[1] + "." + strings.Join(parts[2:], "_")
	case "device", "gateway":
		if len(parts) < 2 {
			return key
		}
		return parts[0] + "." + strings.Join(parts[1:], "_")
	default:
		return key
	}
}
