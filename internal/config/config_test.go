package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindConfig_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	os.WriteFile(path, []byte("serial:\n  baud_rate: 115200\n"), 0600)

	got, err := FindConfig(path)
	if err != nil {
		t.Fatalf("FindConfig(%q) error: %v", path, err)
	}
	if got != path {
		t.Errorf("FindConfig(%q) = %q, want %q", path, got, path)
	}
}

func TestFindConfig_ExplicitMissing(t *testing.T) {
	_, err := FindConfig("/nonexistent/mio.yaml")
	if err == nil {
		t.Fatal("FindConfig with missing explicit path should error")
	}
}

func TestFindConfig_SearchPath(t *testing.T) {
	// When no config exists anywhere, should error. Override
	// searchPathsFunc to avoid finding real config files on
	// developer/deploy machines.
	dir := t.TempDir()
	orig := searchPathsFunc
	searchPathsFunc = func() []string {
		return []string{filepath.Join(dir, "mio.yaml")}
	}
	defer func() { searchPathsFunc = orig }()

	_, err := FindConfig("")
	if err == nil {
		t.Fatal("FindConfig(\"\") with no config files should error")
	}
}

func TestFindConfig_CWD(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mio.yaml")
	os.WriteFile(path, []byte("serial:\n  baud_rate: 9600\n"), 0600)

	orig, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(orig)

	got, err := FindConfig("")
	if err != nil {
		t.Fatalf("FindConfig(\"\") error: %v", err)
	}
	if got != "mio.yaml" {
		t.Errorf("FindConfig(\"\") = %q, want %q", got, "mio.yaml")
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mio.yaml")
	os.WriteFile(path, []byte("osc:\n  remote_address: ${MIO_TEST_HOST}\n"), 0600)
	os.Setenv("MIO_TEST_HOST", "10.0.0.5")
	defer os.Unsetenv("MIO_TEST_HOST")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.OSC.RemoteAddress != "10.0.0.5" {
		t.Errorf("remote_address = %q, want %q", cfg.OSC.RemoteAddress, "10.0.0.5")
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mio.yaml")
	os.WriteFile(path, []byte("websocket:\n  enabled: true\n"), 0600)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Serial.BaudRate != 9600 {
		t.Errorf("baud_rate default = %d, want 9600", cfg.Serial.BaudRate)
	}
	if cfg.Protocol.WatchdogIntervalMS != 100 {
		t.Errorf("watchdog_interval_ms default = %d, want 100", cfg.Protocol.WatchdogIntervalMS)
	}
	if cfg.WebSocket.Port != 8080 {
		t.Errorf("websocket.port default = %d, want 8080", cfg.WebSocket.Port)
	}
}

func TestValidate_WebSocketPortOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.WebSocket.Enabled = true
	cfg.WebSocket.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for out-of-range websocket.port")
	}
}

func TestValidate_WebSocketDisabledSkipsPortCheck(t *testing.T) {
	cfg := Default()
	cfg.WebSocket.Enabled = false
	cfg.WebSocket.Port = 70000

	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled websocket should skip port validation, got: %v", err)
	}
}

func TestValidate_OSCPortsOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.OSC.Enabled = true
	cfg.OSC.RemotePort = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for out-of-range osc.remote_port")
	}
}

func TestValidate_BaudRateMustBePositive(t *testing.T) {
	cfg := Default()
	cfg.Serial.BaudRate = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero baud_rate")
	}
}

func TestValidate_UnknownLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown log level")
	}
}

func TestDefault_AllSinksEnabled(t *testing.T) {
	cfg := Default()
	if !cfg.Keyboard.Enabled || !cfg.Mouse.Enabled || !cfg.MIDI.Enabled || !cfg.WebSocket.Enabled || !cfg.OSC.Enabled {
		t.Fatal("Default() should enable every sink")
	}
}
