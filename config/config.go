// Package config loads the YAML file the demos are configured with.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/dcore-engine/dcore/debug"
)

type App struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type Window struct {
	Width     int  `yaml:"width"`
	Height    int  `yaml:"height"`
	Resizable bool `yaml:"resizable"`
}

// Graphics overrides the instance wishlists. Empty lists keep the engine
// defaults.
type Graphics struct {
	InstanceExtensions []string `yaml:"instance_extensions"`
	InstanceLayers     []string `yaml:"instance_layers"`
	DebugMessenger     *bool    `yaml:"debug_messenger"` // nil means enabled
}

// DebugMessengerEnabled reports whether validation messages are routed into
// the log.
func (g Graphics) DebugMessengerEnabled() bool {
	return g.DebugMessenger == nil || *g.DebugMessenger
}

type Shaders struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
	Entry    string `yaml:"entry"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Config struct {
	App           App      `yaml:"app"`
	Window        Window   `yaml:"window"`
	Graphics      Graphics `yaml:"graphics"`
	Shaders       Shaders  `yaml:"shaders"`
	Mesh          string   `yaml:"mesh"`
	PipelineCache string   `yaml:"pipeline_cache"`
	Log           Log      `yaml:"log"`
}

func Default() Config {
	return Config{
		App:    App{Name: "dcore", Version: "0.1.0"},
		Window: Window{Width: 640, Height: 480},
		Shaders: Shaders{
			Vertex:   "shaders/basic.vert.spv",
			Fragment: "shaders/basic.frag.spv",
			Entry:    "main",
		},
		PipelineCache: "pipeline_cache.bin",
		Log:           Log{Level: "info"},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.Name == "" {
		return errors.New("app.name is empty")
	}
	if _, err := ParseVersion(c.App.Version); err != nil {
		return err
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Newf("window size %dx%d is not positive", c.Window.Width, c.Window.Height)
	}
	if c.Shaders.Vertex == "" || c.Shaders.Fragment == "" {
		return errors.New("shaders.vertex and shaders.fragment are required")
	}
	if _, err := debug.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
