// Package app wires configuration, logging, the window and the graphics
// state together for the commands.
package app

import (
	"github.com/cockroachdb/errors"

	"github.com/dcore-engine/dcore/config"
	"github.com/dcore-engine/dcore/debug"
	"github.com/dcore-engine/dcore/graphics"
	"github.com/dcore-engine/dcore/graphics/vkng"
	"github.com/dcore-engine/dcore/window"
)

type App struct {
	Config config.Config
	Log    *debug.Log
	Window *window.Window
	State  *graphics.State
}

// LoadConfig loads path, or returns the defaults when path is empty.
func LoadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// Options maps the configuration onto graphics.Options.
func Options(cfg config.Config) (graphics.Options, error) {
	version, err := config.ParseVersion(cfg.App.Version)
	if err != nil {
		return graphics.Options{}, err
	}

	opts := graphics.Options{
		AppName:        cfg.App.Name,
		AppVersion:     version,
		DebugMessenger: cfg.Graphics.DebugMessengerEnabled(),
	}
	// An explicit empty list disables the wishlist, a missing one keeps the
	// engine defaults.
	if cfg.Graphics.InstanceExtensions != nil {
		opts.InstanceExtensions = cfg.Graphics.InstanceExtensions
	}
	if cfg.Graphics.InstanceLayers != nil {
		opts.InstanceLayers = cfg.Graphics.InstanceLayers
	}
	return opts, nil
}

// New opens the window and initializes the graphics state. The caller must
// have locked its goroutine to the OS thread. On error everything created so
// far is released.
func New(cfg config.Config) (_ *App, err error) {
	level, err := debug.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Log: debug.New(cfg.App.Name, &debug.Options{Level: level})}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.Window, err = window.New(window.Options{
		Title:     cfg.App.Name,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Resizable: cfg.Window.Resizable,
	})
	if err != nil {
		return nil, err
	}

	driver, err := vkng.New(a.Log)
	if err != nil {
		return nil, err
	}

	a.State = graphics.NewState(a.Log, driver, a.Window)
	if err := a.State.Init(opts); err != nil {
		return nil, errors.Wrap(err, "init graphics")
	}
	return a, nil
}

// Close tears down in reverse order of creation.
func (a *App) Close() {
	if a.State != nil {
		a.State.Deinit()
		a.State = nil
	}
	if a.Window != nil {
		a.Window.Destroy()
		a.Window = nil
	}
	a.Log.Close()
}
