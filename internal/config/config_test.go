package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEngineConfigAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wparse.toml")
	content := `
[rule]
root = "./rules"

[source]
root = "./sources"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Sink.Business != "business.d" || cfg.Sink.Infra != "infra.d" {
		t.Fatalf("expected default sink subdirs, got %+v", cfg.Sink)
	}
	if cfg.General.WorkRoot != "." {
		t.Fatalf("expected default work_root, got %q", cfg.General.WorkRoot)
	}
}

func TestLoadEngineConfigMissingRuleRootFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wparse.toml")
	if err := os.WriteFile(path, []byte(`[source]
root = "./sources"
`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadEngineConfig(path); err == nil {
		t.Fatal("expected validation error for missing rule.root")
	}
}

func TestLoadSourcesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wpsrc.toml")
	content := `
[[source]]
key = "app-log"
enable = true
connect = "file-conn"
tags = ["app"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadSourcesConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Items) != 1 || cfg.Items[0].Key != "app-log" {
		t.Fatalf("unexpected sources config: %+v", cfg)
	}
}
