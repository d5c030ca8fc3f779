package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestGetDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid, got %v", err)
	}
	want := []string{"node-app-primary-service", "node-app-secondary-service", "node-app-failover-service"}
	got := cfg.GroupNames()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expect groups %v, got %v", want, got)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
namespace: apps
groups:
  - name: a
    selector: app=a
  - name: b
    selector: app=b
probe:
  timeout: 1s
  interval: 10s
  workers: 4
store:
  type: redis
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Namespace != "apps" {
		t.Errorf("expect namespace apps, got %q", cfg.Namespace)
	}
	if len(cfg.Groups) != 2 || cfg.Groups[1].Selector != "app=b" {
		t.Errorf("unexpected groups %+v", cfg.Groups)
	}
	if cfg.Probe.Timeout != time.Second || cfg.Probe.Interval != 10*time.Second || cfg.Probe.Workers != 4 {
		t.Errorf("unexpected probe config %+v", cfg.Probe)
	}
	// keys absent from the file keep their defaults
	if cfg.Probe.Port != 3000 || cfg.Store.Field != "healthy_pods" {
		t.Errorf("expect defaults for unset keys, got port=%d field=%q", cfg.Probe.Port, cfg.Store.Field)
	}
	if cfg.Store.Type != "redis" {
		t.Errorf("expect store type redis, got %q", cfg.Store.Type)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("HEALTHROUTE_PROBE_TIMEOUT", "3s")
	t.Setenv("HEALTHROUTE_STORE_NAME", "pods")

	path := writeConfig(t, "config.json", `{"namespace": "default"}`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Probe.Timeout != 3*time.Second {
		t.Errorf("expect timeout 3s from env, got %s", cfg.Probe.Timeout)
	}
	if cfg.Store.Name != "pods" {
		t.Errorf("expect store name from env, got %q", cfg.Store.Name)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expect error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"no groups", func(c *Config) { c.Groups = nil }, "at least one group"},
		{"empty group name", func(c *Config) { c.Groups[0].Name = "" }, "groups[0].name"},
		{"duplicate group", func(c *Config) { c.Groups[1].Name = c.Groups[0].Name }, "duplicate group"},
		{"timeout not below interval", func(c *Config) { c.Probe.Timeout = c.Probe.Interval }, "must be less than"},
		{"zero workers", func(c *Config) { c.Probe.Workers = 0 }, "probe.workers"},
		{"empty field", func(c *Config) { c.Store.Field = "" }, "store.field"},
		{"zero dispatch timeout", func(c *Config) { c.Dispatch.Timeout = 0 }, "dispatch.timeout"},
		{"negative dispatch timeout", func(c *Config) { c.Dispatch.Timeout = -time.Second }, "dispatch.timeout"},
		{"zero refresh", func(c *Config) { c.Dispatch.RefreshInterval = 0 }, "refresh_interval"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expect ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expect error containing %q, got %q", tc.errMsg, err.Error())
			}
		})
	}
}
