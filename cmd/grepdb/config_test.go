package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	cfgDir := filepath.Join(dir, defaultConfigDir)
	if err := os.MkdirAll(cfgDir, 0750); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	path := filepath.Join(cfgDir, defaultConfigFile)
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadConfig_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
version: "1"
sources:
  app: ./db.sqlite3
sites:
  prod: https://example.com
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := filepath.Join(dir, "db.sqlite3")
	if cfg.Sources["app"] != want {
		t.Fatalf("Sources[app] = %q, want %q", cfg.Sources["app"], want)
	}
	if cfg.Sites["prod"] != "https://example.com" {
		t.Fatalf("Sites[prod] = %q", cfg.Sites["prod"])
	}
}

func TestLoadConfig_AbsoluteSourcePathKept(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
version: "1"
sources:
  app: /var/data/app.db
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Sources["app"] != "/var/data/app.db" {
		t.Fatalf("Sources[app] = %q", cfg.Sources["app"])
	}
}

func TestLoadConfig_EnvPath(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "version: \"1\"\nsources:\n  app: ./a.db\n")
	t.Setenv("GREPDB_CONFIG_PATH", path)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.Sources) != 1 {
		t.Fatalf("Sources = %v", cfg.Sources)
	}
}

func TestLoadConfig_BadVersion(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "version: \"99\"\nsources:\n  app: ./a.db\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() expected error for unsupported version")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "version: [unclosed\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() expected error for invalid YAML")
	}
}

func TestLoadConfig_ServePortEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "version: \"1\"\nsources:\n  app: ./a.db\nserve:\n  port: \"8080\"\n")
	t.Setenv("GREPDB_SERVE_PORT", "9999")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Serve.Port != "9999" {
		t.Fatalf("Serve.Port = %q, want %q", cfg.Serve.Port, "9999")
	}
}

func TestLoadConfig_DefaultSiteEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "version: \"1\"\nsources:\n  app: ./a.db\n")
	t.Setenv("GREPDB_DEFAULT_SITE", "https://admin.internal")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Sites["default"] != "https://admin.internal" {
		t.Fatalf("Sites[default] = %q", cfg.Sites["default"])
	}
}

func TestLoadConfig_SourceEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "version: \"1\"\nsources:\n  app: ./a.db\n")
	t.Setenv("GREPDB_SOURCE_LOGS", "/var/data/logs.db")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Sources["logs"] != "/var/data/logs.db" {
		t.Fatalf("Sources[logs] = %q", cfg.Sources["logs"])
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := ConfigPath(dir)

	cfg := DefaultConfig("app", "./db.sqlite3")
	cfg.Presets = map[string]Preset{
		"loose": {IgnoreCase: true, ShowValues: "3", AdminLinks: []string{"default"}},
	}
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	p, err := loaded.Preset("loose")
	if err != nil {
		t.Fatalf("Preset() error = %v", err)
	}
	if !p.IgnoreCase || p.ShowValues != "3" {
		t.Fatalf("Preset = %+v", p)
	}
	if _, err := loaded.Preset("missing"); err == nil {
		t.Fatal("Preset() expected error for unknown preset")
	}
}

func TestSourcePath(t *testing.T) {
	cfg := &Config{Sources: map[string]string{"app": "/tmp/app.db"}}

	path, err := cfg.SourcePath("app")
	if err != nil {
		t.Fatalf("SourcePath() error = %v", err)
	}
	if path != "/tmp/app.db" {
		t.Fatalf("SourcePath() = %q", path)
	}
	if _, err := cfg.SourcePath("other"); err == nil {
		t.Fatal("SourcePath() expected error for unknown source")
	}
}
