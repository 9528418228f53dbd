package app

import (
	"testing"

	"github.com/vkngwrapper/core/v3/common"

	"github.com/dcore-engine/dcore/config"
)

func TestOptions(t *testing.T) {
	off := false
	tests := []struct {
		name        string
		graphics    config.Graphics
		wantExt     []string
		wantLayers  []string
		wantMessage bool
	}{
		{"defaults", config.Graphics{}, nil, nil, true},
		{"no layers", config.Graphics{InstanceLayers: []string{}}, nil, []string{}, true},
		{"explicit", config.Graphics{
			InstanceExtensions: []string{"VK_EXT_debug_utils"},
			DebugMessenger:     &off,
		}, []string{"VK_EXT_debug_utils"}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Graphics = tt.graphics

			opts, err := Options(cfg)
			if err != nil {
				t.Fatal(err)
			}
			if (opts.InstanceExtensions == nil) != (tt.wantExt == nil) || len(opts.InstanceExtensions) != len(tt.wantExt) {
				t.Errorf("extensions = %#v, want %#v", opts.InstanceExtensions, tt.wantExt)
			}
			if (opts.InstanceLayers == nil) != (tt.wantLayers == nil) || len(opts.InstanceLayers) != len(tt.wantLayers) {
				t.Errorf("layers = %#v, want %#v", opts.InstanceLayers, tt.wantLayers)
			}
			if opts.DebugMessenger != tt.wantMessage {
				t.Errorf("debug messenger = %v, want %v", opts.DebugMessenger, tt.wantMessage)
			}
			if opts.AppName != cfg.App.Name || opts.AppVersion != common.CreateVersion(0, 1, 0) {
				t.Errorf("app = %q %v", opts.AppName, opts.AppVersion)
			}
		})
	}
}

func TestOptionsBadVersion(t *testing.T) {
	cfg := config.Default()
	cfg.App.Version = "latest"
	if _, err := Options(cfg); err == nil {
		t.Error("Options accepted a bad version")
	}
}

func TestLoadConfigDefault(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Name != config.Default().App.Name {
		t.Errorf("name = %q", cfg.App.Name)
	}
}
