package graphics_test

import (
	"testing"

	"github.com/dcore-engine/dcore/debug"
	"github.com/dcore-engine/dcore/graphics"
	"github.com/dcore-engine/dcore/graphics/graphicstest"
)

type fixture struct {
	log    *debug.Log
	driver *graphicstest.Driver
	window *graphicstest.Window
	state  *graphics.State
}

func newFixture() *fixture {
	f := &fixture{
		log:    debug.Discard(),
		driver: graphicstest.NewDriver(),
		window: graphicstest.NewWindow(),
	}
	f.state = graphics.NewState(f.log, f.driver, f.window)
	return f
}

// initFixture returns a fixture whose state went through Init.
func initFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture()
	if err := f.state.Init(graphics.Options{AppName: "test"}); err != nil {
		t.Fatalf("init: %+v", err)
	}
	return f
}

func expectAssertion(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if _, ok := r.(*debug.AssertionError); !ok {
			t.Fatalf("expected *debug.AssertionError panic, got %v", r)
		}
	}()
	fn()
}

func intPtr(v int) *int { return &v }

func indexOf(calls []string, name string) int {
	for i, c := range calls {
		if c == name {
			return i
		}
	}
	return -1
}

func lastIndexOf(calls []string, name string) int {
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i] == name {
			return i
		}
	}
	return -1
}
