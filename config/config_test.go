package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vkngwrapper/core/v3/common"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dcore.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Window.Width != 640 || cfg.Window.Height != 480 {
		t.Errorf("window = %dx%d, want 640x480", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Graphics.DebugMessengerEnabled() {
		t.Error("debug messenger disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
app:
  name: viewer
  version: 2.1.0
window:
  width: 1280
  resizable: true
graphics:
  instance_layers: []
  debug_messenger: false
mesh: meshes/cube.obj
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Name != "viewer" || cfg.App.Version != "2.1.0" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Window.Width != 1280 || cfg.Window.Height != 480 || !cfg.Window.Resizable {
		t.Errorf("window = %+v, want 1280x480 resizable", cfg.Window)
	}
	if cfg.Graphics.DebugMessengerEnabled() {
		t.Error("debug messenger still enabled")
	}
	if cfg.Mesh != "meshes/cube.obj" || cfg.Log.Level != "debug" {
		t.Errorf("mesh %q level %q", cfg.Mesh, cfg.Log.Level)
	}
	if cfg.Shaders.Entry != "main" {
		t.Errorf("shader entry = %q, want default", cfg.Shaders.Entry)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Name != Default().App.Name {
		t.Errorf("empty file changed app name to %q", cfg.App.Name)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "window:\n  depth: 3\n"},
		{"bad yaml", "window: [\n"},
		{"bad size", "window:\n  width: -4\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad version", "app:\n  version: one\n"},
		{"no shader", "shaders:\n  vertex: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("Load succeeded")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    common.Version
		wantErr bool
	}{
		{"1.2.3", common.CreateVersion(1, 2, 3), false},
		{"4", common.CreateVersion(4, 0, 0), false},
		{"0.1", common.CreateVersion(0, 1, 0), false},
		{"", 0, true},
		{"1.2.3.4", 0, true},
		{"1.x", 0, true},
		{"-1.0.0", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVersion(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseVersion(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
