package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := Empty()

	if got := cfg.GetListenAddr(); got != ":35001" {
		t.Errorf("GetListenAddr = %q", got)
	}
	if got := cfg.GetReadTimeout(); got != 100*time.Millisecond {
		t.Errorf("GetReadTimeout = %v", got)
	}
	if got := cfg.GetLogInterval(); got != time.Minute {
		t.Errorf("GetLogInterval = %v", got)
	}
	if got := cfg.GetRcvBuf(); got != 0 {
		t.Errorf("GetRcvBuf = %d", got)
	}
	if got := cfg.GetDBPath(); got != "telemetry.db" {
		t.Errorf("GetDBPath = %q", got)
	}
	if cfg.GetForwardAddr() != "" || cfg.GetLogPath() != "" || cfg.GetTypesFile() != "" {
		t.Error("optional settings should default to disabled")
	}
}

func TestLoadPartialConfig(t *testing.T) {
	path := writeConfig(t, "partial.json", `{"listen_addr": ":9999", "read_timeout": "250ms"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := cfg.GetListenAddr(); got != ":9999" {
		t.Errorf("GetListenAddr = %q", got)
	}
	if got := cfg.GetReadTimeout(); got != 250*time.Millisecond {
		t.Errorf("GetReadTimeout = %v", got)
	}
	// Unset fields keep their defaults.
	if got := cfg.GetDBPath(); got != "telemetry.db" {
		t.Errorf("GetDBPath = %q", got)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, "full.json", `{
  "listen_addr": "0.0.0.0:35001",
  "rcv_buf": 1048576,
  "read_timeout": "50ms",
  "forward_addr": "10.1.2.3",
  "forward_port": 35002,
  "log_interval": "30s",
  "db_path": "/var/lib/telemetry/flight.db",
  "log_path": "/var/lib/telemetry/flight.log",
  "types_file": "types.json"
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GetRcvBuf() != 1048576 {
		t.Errorf("GetRcvBuf = %d", cfg.GetRcvBuf())
	}
	if cfg.GetForwardAddr() != "10.1.2.3" || cfg.GetForwardPort() != 35002 {
		t.Errorf("forward = %s:%d", cfg.GetForwardAddr(), cfg.GetForwardPort())
	}
	if cfg.GetLogInterval() != 30*time.Second {
		t.Errorf("GetLogInterval = %v", cfg.GetLogInterval())
	}
	if cfg.GetLogPath() != "/var/lib/telemetry/flight.log" {
		t.Errorf("GetLogPath = %q", cfg.GetLogPath())
	}
	if cfg.GetTypesFile() != "types.json" {
		t.Errorf("GetTypesFile = %q", cfg.GetTypesFile())
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	if _, err := Load(writeConfig(t, "config.yaml", `{}`)); err == nil {
		t.Error("accepted non-.json extension")
	}
	if _, err := Load(writeConfig(t, "bad.json", `{`)); err == nil {
		t.Error("accepted malformed JSON")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("accepted missing file")
	}
}

func TestValidate(t *testing.T) {
	bad := []*Config{
		{RcvBuf: ptrInt(-1)},
		{ReadTimeout: ptrString("not-a-duration")},
		{LogInterval: ptrString("12 parsecs")},
		{ForwardPort: ptrInt(0)},
		{ForwardPort: ptrInt(70000)},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: Validate passed, want error", i)
		}
	}

	good := &Config{
		RcvBuf:      ptrInt(0),
		ReadTimeout: ptrString("1s"),
		ForwardPort: ptrInt(65535),
	}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate failed on a good config: %v", err)
	}
}

func TestDefaultsFileParses(t *testing.T) {
	// The shipped defaults file must always load.
	candidates := []string{
		DefaultConfigPath,
		filepath.Join("..", "..", DefaultConfigPath),
	}
	for _, path := range candidates {
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		if _, err := Load(path); err != nil {
			t.Errorf("Load(%s) failed: %v", path, err)
		}
		return
	}
	t.Skipf("defaults file %s not found from test working directory", DefaultConfigPath)
}
