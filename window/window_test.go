package window

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestNewRejectsEmptySize(t *testing.T) {
	for _, opts := range []Options{{Width: 0, Height: 480}, {Width: 640, Height: -1}} {
		if _, err := New(opts); err == nil {
			t.Errorf("New(%+v) succeeded", opts)
		}
	}
}

func TestEvents(t *testing.T) {
	tests := []struct {
		name          string
		events        []sdl.Event
		wantClosed    bool
		wantMinimized bool
	}{
		{"quit", []sdl.Event{&sdl.QuitEvent{}}, true, false},
		{"escape", []sdl.Event{&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_ESCAPE}}}, true, false},
		{"other key", []sdl.Event{&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_SPACE}}}, false, false},
		{"minimized", []sdl.Event{&sdl.WindowEvent{Event: sdl.WINDOWEVENT_MINIMIZED}}, false, true},
		{"restored", []sdl.Event{
			&sdl.WindowEvent{Event: sdl.WINDOWEVENT_MINIMIZED},
			&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESTORED},
		}, false, false},
		{"window close", []sdl.Event{&sdl.WindowEvent{Event: sdl.WINDOWEVENT_CLOSE}}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Window{}
			for _, e := range tt.events {
				w.handle(e)
			}
			if w.ShouldClose() != tt.wantClosed {
				t.Errorf("ShouldClose = %v, want %v", w.ShouldClose(), tt.wantClosed)
			}
			if w.Minimized() != tt.wantMinimized {
				t.Errorf("Minimized = %v, want %v", w.Minimized(), tt.wantMinimized)
			}
		})
	}
}

func TestClose(t *testing.T) {
	w := &Window{}
	w.Close()
	if !w.ShouldClose() {
		t.Error("window still open after Close")
	}
}

func TestWaitWhileMinimized(t *testing.T) {
	var timeouts []int
	w := &Window{minimized: true}
	w.waitEvent = func(timeout int) sdl.Event {
		timeouts = append(timeouts, timeout)
		return nil
	}

	w.Wait()
	if len(timeouts) != 1 || timeouts[0] != WaitTimeout {
		t.Fatalf("wait calls = %v, want one with %d", timeouts, WaitTimeout)
	}
	if !w.Minimized() {
		t.Fatal("timeout without events restored the window")
	}
}
