package main

import (
	"fmt"
	"os"

	"cluster-service/cluster"
	"cluster-service/telemetry"

	"github.com/goccy/go-yaml"
)

type LogLevel int

const (
	LogLevelNone  LogLevel = 0
	LogLevelError LogLevel = 1
	LogLevelWarn  LogLevel = 2
	LogLevelInfo  LogLevel = 3
	LogLevelDebug LogLevel = 4
)

type Options struct {
	LogLevel        LogLevel
	LogFile         string
	RedisServerAddr string
	RedisServerPort uint16
	CANDevice       string // empty disables the CAN decoder
	ECUType         telemetry.DecoderType
	SpeedMode       cluster.SpeedMode
	Window          bool
	WindowWidth     int
	WindowHeight    int
	Fullscreen      bool
}

// FileConfig is the optional YAML configuration file
type FileConfig struct {
	LogLevel *int   `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	Redis struct {
		Server string `yaml:"server"`
		Port   int    `yaml:"port"`
	} `yaml:"redis"`

	CAN struct {
		Device  *string `yaml:"device"`
		ECUType string  `yaml:"ecu_type"`
	} `yaml:"can"`

	Display struct {
		SpeedMode  string `yaml:"speed_mode"`
		Window     *bool  `yaml:"window"`
		Width      int    `yaml:"width"`
		Height     int    `yaml:"height"`
		Fullscreen *bool  `yaml:"fullscreen"`
	} `yaml:"display"`
}

// LoadConfigFile reads and parses the YAML file at path
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*FileConfig, error) {
	var c FileConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &c, nil
}

// Apply copies the file values into opts. Settings whose flag name is in
// explicit were given on the command line and are kept.
func (c *FileConfig) Apply(opts *Options, explicit map[string]bool) error {
	if c.LogLevel != nil && !explicit["log"] {
		opts.LogLevel = LogLevel(*c.LogLevel)
	}
	if c.LogFile != "" && !explicit["log_file"] {
		opts.LogFile = c.LogFile
	}
	if c.Redis.Server != "" && !explicit["redis_server"] {
		opts.RedisServerAddr = c.Redis.Server
	}
	if c.Redis.Port != 0 && !explicit["redis_port"] {
		if c.Redis.Port < 0 || c.Redis.Port > 65535 {
			return fmt.Errorf("invalid redis port %d", c.Redis.Port)
		}
		opts.RedisServerPort = uint16(c.Redis.Port)
	}
	if c.CAN.Device != nil && !explicit["can_device"] {
		opts.CANDevice = *c.CAN.Device
	}
	if c.CAN.ECUType != "" && !explicit["ecu_type"] {
		t, err := telemetry.ParseDecoderType(c.CAN.ECUType)
		if err != nil {
			return err
		}
		opts.ECUType = t
	}
	if c.Display.SpeedMode != "" && !explicit["speed_mode"] {
		mode, err := telemetry.ParseSpeedMode(c.Display.SpeedMode)
		if err != nil {
			return err
		}
		opts.SpeedMode = mode
	}
	if c.Display.Window != nil && !explicit["window"] {
		opts.Window = *c.Display.Window
	}
	if c.Display.Width != 0 && !explicit["width"] {
		opts.WindowWidth = c.Display.Width
	}
	if c.Display.Height != 0 && !explicit["height"] {
		opts.WindowHeight = c.Display.Height
	}
	if c.Display.Fullscreen != nil && !explicit["fullscreen"] {
		opts.Fullscreen = *c.Display.Fullscreen
	}
	return nil
}

// Validate checks the combined options
func (o *Options) Validate() error {
	if o.LogLevel < LogLevelNone || o.LogLevel > LogLevelDebug {
		return fmt.Errorf("invalid log level %d", o.LogLevel)
	}
	if o.RedisServerAddr == "" {
		return fmt.Errorf("redis server address is empty")
	}
	return nil
}
