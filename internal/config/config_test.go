package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "port: \"9090\"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.DB.Path != "app.db" || cfg.Log.Level != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Fatalf("token ttl = %v", cfg.Auth.TokenTTL)
	}

	ovens, err := cfg.OvenSet()
	if err != nil {
		t.Fatalf("OvenSet: %v", err)
	}
	if len(ovens) != 3 {
		t.Fatalf("want 3 default ovens, got %d", len(ovens))
	}
	o, err := ovens.Lookup(1)
	if err != nil || !o.HasChamber("48#") || o.HasChamber("51#") {
		t.Fatalf("default chambers wrong: %v", err)
	}
	if _, err := ovens.Lookup(4); err == nil {
		t.Fatalf("oven 4 must be invalid by default")
	}
}

func TestLoad_OvensFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
ovens:
  - id: 5
    chamber_count: 2
  - id: 6
    chambers: ["A1", "A2", "A3"]
matching:
  strict_alternation: true
simulator:
  enabled: true
  tick: 250ms
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Matching.StrictAlternation || cfg.Sim.Tick != 250*time.Millisecond {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	ovens, err := cfg.OvenSet()
	if err != nil {
		t.Fatalf("OvenSet: %v", err)
	}
	five, _ := ovens.Lookup(5)
	if five == nil || !five.HasChamber("2#") || five.HasChamber("3#") {
		t.Fatalf("oven 5 chambers wrong")
	}
	six, _ := ovens.Lookup(6)
	if six == nil || !six.HasChamber("A3") {
		t.Fatalf("oven 6 chambers wrong")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("COKE_DB_PATH", "/tmp/override.db")

	cfg, err := Load(writeConfig(t, "db:\n  path: file.db\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB.Path != "/tmp/override.db" {
		t.Fatalf("env override ignored: %q", cfg.DB.Path)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"kafka_without_brokers", "kafka:\n  enabled: true\n"},
		{"duplicate_oven", "ovens:\n  - id: 1\n    chamber_count: 1\n  - id: 1\n    chamber_count: 1\n"},
		{"oven_without_chambers", "ovens:\n  - id: 1\n"},
		{"non_positive_oven", "ovens:\n  - id: 0\n    chamber_count: 3\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.body)); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}
