// Package config handles mio-bridge configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./mio.yaml, ~/.config/mio/mio.yaml, /config/mio.yaml,
// /etc/mio/mio.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"mio.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "mio", "mio.yaml"))
	}

	paths = append(paths, "/config/mio.yaml") // Container convention
	paths = append(paths, "/etc/mio/mio.yaml")
	return paths
}

// searchPathsFunc is overridden in tests to avoid matching real config
// files on developer/deploy machines.
var searchPathsFunc = DefaultSearchPaths

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches searchPathsFunc() and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	paths := searchPathsFunc()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", paths)
}

// Config holds all mio-bridge configuration.
type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	Protocol  ProtocolConfig  `yaml:"protocol"`
	Keyboard  KeyboardConfig  `yaml:"keyboard"`
	Mouse     MouseConfig     `yaml:"mouse"`
	MIDI      MIDIConfig      `yaml:"midi"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	OSC       OSCConfig       `yaml:"osc"`
	TUI       TUIConfig       `yaml:"tui"`
	LogLevel  string          `yaml:"log_level"`
}

// SerialConfig defines the primary serial source.
type SerialConfig struct {
	Device      string `yaml:"device"`
	BaudRate    int    `yaml:"baud_rate"`
	AutoConnect bool   `yaml:"auto_connect"`
}

// ProtocolConfig defines dispatch-level timing.
type ProtocolConfig struct {
	WatchdogIntervalMS int64 `yaml:"watchdog_interval_ms"`
}

// KeyboardConfig defines whether the synthetic-keyboard sink is enabled.
type KeyboardConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MouseConfig defines whether the synthetic-mouse sink is enabled.
type MouseConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MIDIConfig defines the MIDI output sink.
type MIDIConfig struct {
	Enabled     bool `yaml:"enabled"`
	AutoConnect bool `yaml:"auto_connect"`
}

// WebSocketConfig defines the WebSocket broadcast/ingest server.
type WebSocketConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// OSCConfig defines the OSC (UDP) output sink.
type OSCConfig struct {
	Enabled       bool   `yaml:"enabled"`
	LocalAddress  string `yaml:"local_address"`
	LocalPort     int    `yaml:"local_port"`
	RemoteAddress string `yaml:"remote_address"`
	RemotePort    int    `yaml:"remote_port"`
}

// TUIConfig defines display preferences consumed by an out-of-scope
// frontend; carried here only because it is part of the config value
// this package hands to the rest of the process.
type TUIConfig struct {
	ShowTimestamps bool `yaml:"show_timestamps"`
	MaxLogLines    int  `yaml:"max_log_lines"`
}

// Load reads configuration from a YAML file, expands environment
// variables, applies defaults for any unset fields, and validates
// the result. After Load returns successfully, every field with a
// default is populated; serial.device and log_level have no default and
// may still be empty.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${HOME}). Convenience for
	// container deployments; values can also be set directly.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills in zero-value fields with sensible defaults.
// Called automatically by Load. Serial.Device and LogLevel are left as
// they are; an empty value there is meaningful to the caller.
func (c *Config) applyDefaults() {
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = 9600
	}
	if c.Protocol.WatchdogIntervalMS == 0 {
		c.Protocol.WatchdogIntervalMS = 100
	}
	if c.WebSocket.Host == "" {
		c.WebSocket.Host = "0.0.0.0"
	}
	if c.WebSocket.Port == 0 {
		c.WebSocket.Port = 8080
	}
	if c.OSC.LocalAddress == "" {
		c.OSC.LocalAddress = "0.0.0.0"
	}
	if c.OSC.LocalPort == 0 {
		c.OSC.LocalPort = 7000
	}
	if c.OSC.RemoteAddress == "" {
		c.OSC.RemoteAddress = "127.0.0.1"
	}
	if c.OSC.RemotePort == 0 {
		c.OSC.RemotePort = 7001
	}
	if c.TUI.MaxLogLines == 0 {
		c.TUI.MaxLogLines = 1000
	}
}

// Validate checks that the configuration is internally consistent.
// It runs after applyDefaults, so it can assume defaults are populated.
// Returns an error describing the first problem found, or nil.
func (c *Config) Validate() error {
	if c.Serial.BaudRate < 1 {
		return fmt.Errorf("serial.baud_rate %d must be positive", c.Serial.BaudRate)
	}
	if c.Protocol.WatchdogIntervalMS < 1 {
		return fmt.Errorf("protocol.watchdog_interval_ms %d must be positive", c.Protocol.WatchdogIntervalMS)
	}
	if c.WebSocket.Enabled && (c.WebSocket.Port < 1 || c.WebSocket.Port > 65535) {
		return fmt.Errorf("websocket.port %d out of range (1-65535)", c.WebSocket.Port)
	}
	if c.OSC.Enabled {
		if c.OSC.LocalPort < 1 || c.OSC.LocalPort > 65535 {
			return fmt.Errorf("osc.local_port %d out of range (1-65535)", c.OSC.LocalPort)
		}
		if c.OSC.RemotePort < 1 || c.OSC.RemotePort > 65535 {
			return fmt.Errorf("osc.remote_port %d out of range (1-65535)", c.OSC.RemotePort)
		}
	}
	if c.LogLevel != "" {
		if _, err := ParseLogLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// Default returns a default configuration with every sink enabled. All
// defaults are already applied.
func Default() *Config {
	cfg := &Config{
		Keyboard:  KeyboardConfig{Enabled: true},
		Mouse:     MouseConfig{Enabled: true},
		MIDI:      MIDIConfig{Enabled: true},
		WebSocket: WebSocketConfig{Enabled: true},
		OSC:       OSCConfig{Enabled: true},
		TUI:       TUIConfig{ShowTimestamps: true},
	}
	cfg.applyDefaults()
	return cfg
}
