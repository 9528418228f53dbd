package debug

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestLevelsAndStats(t *testing.T) {
	var buf bytes.Buffer
	l := New("test", &Options{Level: LevelDebug, Sinks: []io.Writer{&buf}})

	l.Debug("d")
	l.Info("i")
	l.Success("s")
	l.Warn("w")
	l.Error("e")
	l.Fatal("f")

	st := l.Stats()
	if st.Debug != 1 || st.Info != 1 || st.Success != 1 || st.Warn != 1 || st.Error != 1 || st.Fatal != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if st.Total != 6 {
		t.Fatalf("expected 6 messages, got %d", st.Total)
	}

	out := buf.String()
	for _, want := range []string{"DEBUG", "INFO", "SUCCESS", "WARN", "ERROR", "FATAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing level %s:\n%s", want, out)
		}
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New("test", &Options{Level: LevelWarn, Sinks: []io.Writer{&buf}})

	l.Info("hidden")
	l.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("info message should have been filtered:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn message missing:\n%s", buf.String())
	}
}

func TestContextIndentationAndStats(t *testing.T) {
	var buf bytes.Buffer
	l := Discard()
	l.AddSink(&buf)

	l.Push("outer")
	if l.Context() != "outer" {
		t.Fatalf("expected context outer, got %s", l.Context())
	}
	l.Info("inside")
	l.Error("broken")
	inner := l.Stats()
	if inner.Info != 1 || inner.Error != 1 {
		t.Fatalf("unexpected context stats %+v", inner)
	}

	if depth := l.Pop(); depth != 1 {
		t.Fatalf("expected depth 1 after pop, got %d", depth)
	}
	if depth := l.Pop(); depth != 1 {
		t.Fatalf("root context must not be popped, got depth %d", depth)
	}

	root := l.Stats()
	if root.Error != 1 || root.Info != 1 {
		t.Fatalf("root context should see nested messages, got %+v", root)
	}

	var insideLine string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "inside") {
			insideLine = line
		}
	}
	if !strings.Contains(insideLine, "|   inside") {
		t.Fatalf("expected indented message, got %q", insideLine)
	}
	if strings.Count(buf.String(), "[ outer ]") != 2 {
		t.Fatalf("expected push and pop markers:\n%s", buf.String())
	}
}

func TestRemoveSink(t *testing.T) {
	var a, b bytes.Buffer
	l := Discard()
	l.AddSink(&a)
	l.AddSink(&b)

	l.RemoveSink(&b)
	l.Info("only a")
	if b.Len() != 0 {
		t.Fatalf("removed sink still written to: %q", b.String())
	}
	if !strings.Contains(a.String(), "only a") {
		t.Fatalf("remaining sink not written to")
	}

	before := l.Stats().Warn
	l.RemoveSink(&b)
	if l.Stats().Warn != before+1 {
		t.Fatalf("removing a missing sink should warn")
	}
}

func TestAttrsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := Discard()
	l.AddSink(&buf)

	l.With("device", "GPU 0").WithGroup("limits").Info("scored", "score", 42)

	out := buf.String()
	if !strings.Contains(out, `device="GPU 0"`) {
		t.Errorf("missing quoted attr:\n%s", out)
	}
	if !strings.Contains(out, "limits.score=42") {
		t.Errorf("missing grouped attr:\n%s", out)
	}
}

func TestAssert(t *testing.T) {
	l := Discard()

	l.Assert(true, "1 < 2", "never fires")

	defer func() {
		r := recover()
		ae, ok := r.(*AssertionError)
		if !ok {
			t.Fatalf("expected *AssertionError panic, got %v", r)
		}
		if ae.Expr != "index < 3" {
			t.Fatalf("unexpected expression %q", ae.Expr)
		}
		if l.Stats().Fatal != 2 {
			t.Fatalf("expected two fatal lines, got %d", l.Stats().Fatal)
		}
	}()
	l.Assert(false, "index < 3", "Queue family index too big!")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"debug", "DEBUG", false},
		{"INFO", "INFO", false},
		{"", "INFO", false},
		{"warning", "WARN", false},
		{"fatal", "FATAL", false},
		{"success", "SUCCESS", false},
		{"loud", "INFO", true},
	}
	for _, tt := range tests {
		lvl, err := ParseLevel(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if LevelName(lvl) != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, LevelName(lvl), tt.want)
		}
	}
}
