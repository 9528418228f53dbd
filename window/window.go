// Package window provides the SDL2 window the graphics layer renders into.
package window

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
)

// Options configures New.
type Options struct {
	Title         string
	Width, Height int
	Resizable     bool
}

// Window is an SDL2 window created for Vulkan rendering. SDL requires every
// call to come from the thread that created it; callers lock their main
// goroutine to the OS thread.
type Window struct {
	window    *sdl.Window
	closed    bool
	minimized bool
	// waitEvent blocks for up to timeout milliseconds. Nil means
	// sdl.WaitEventTimeout.
	waitEvent func(timeout int) sdl.Event
}

// WaitTimeout bounds how long Wait blocks.
const WaitTimeout = 100

// New initializes the SDL video subsystem and opens a Vulkan capable window.
func New(opts Options) (*Window, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, errors.Newf("invalid window size %dx%d", opts.Width, opts.Height)
	}
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "init sdl")
	}

	flags := uint32(sdl.WINDOW_SHOWN | sdl.WINDOW_VULKAN)
	if opts.Resizable {
		flags |= sdl.WINDOW_RESIZABLE
	}
	window, err := sdl.CreateWindow(opts.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(opts.Width), int32(opts.Height), flags)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}
	return &Window{window: window}, nil
}

// SDL exposes the underlying window for surface creation.
func (w *Window) SDL() *sdl.Window { return w.window }

func (w *Window) RequiredInstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

func (w *Window) DrawableSize() (width, height int) {
	wi, hi := w.window.VulkanGetDrawableSize()
	return int(wi), int(hi)
}

func (w *Window) MousePosition() (x, y int) {
	mx, my, _ := sdl.GetMouseState()
	return int(mx), int(my)
}

func (w *Window) ShouldClose() bool { return w.closed }

// Minimized reports whether the window was minimized by the last Update.
func (w *Window) Minimized() bool { return w.minimized }

func (w *Window) Close() { w.closed = true }

// Update drains the SDL event queue.
func (w *Window) Update() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		w.handle(event)
	}
}

// Wait blocks until an event arrives or WaitTimeout passes, then drains the
// queue. Loops use it instead of Update while there is nothing to draw.
func (w *Window) Wait() {
	wait := w.waitEvent
	if wait == nil {
		wait = sdl.WaitEventTimeout
	}
	if event := wait(WaitTimeout); event != nil {
		w.handle(event)
		w.Update()
	}
}

func (w *Window) handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		w.closed = true
	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_ESCAPE {
			w.closed = true
		}
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_MINIMIZED:
			w.minimized = true
		case sdl.WINDOWEVENT_RESTORED:
			w.minimized = false
		case sdl.WINDOWEVENT_CLOSE:
			w.closed = true
		}
	}
}

// Destroy closes the window and shuts SDL down.
func (w *Window) Destroy() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}
