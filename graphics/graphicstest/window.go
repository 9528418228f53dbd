package graphicstest

// Window is a graphics.Window that closes itself after a number of
// updates.
type Window struct {
	Extensions    []string
	Width, Height int
	MouseX        int
	MouseY        int
	// Frames is the number of Update calls before ShouldClose reports
	// true. Zero keeps the window open until Close.
	Frames int

	Updates int
	closed  bool
}

func NewWindow() *Window {
	return &Window{Extensions: []string{"VK_KHR_surface"}, Width: 640, Height: 480}
}

func (w *Window) RequiredInstanceExtensions() []string { return w.Extensions }
func (w *Window) DrawableSize() (int, int)             { return w.Width, w.Height }
func (w *Window) MousePosition() (int, int)            { return w.MouseX, w.MouseY }
func (w *Window) Close()                               { w.closed = true }

func (w *Window) ShouldClose() bool {
	return w.closed || (w.Frames > 0 && w.Updates >= w.Frames)
}

func (w *Window) Update() { w.Updates++ }
