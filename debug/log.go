// Package debug is the engine's diagnostics collaborator: leveled messages
// on top of log/slog, a stack of named contexts used for indentation and
// per-context statistics, pluggable sinks and assertions.
package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Options configures New.
type Options struct {
	// Level is the minimum level written. Defaults to LevelDebug.
	Level slog.Leveler
	// Sinks receive every line. Defaults to os.Stdout.
	Sinks []io.Writer
}

// Log is a slog.Logger bound to a Handler, with the extra operations the
// engine needs on top of plain structured logging.
type Log struct {
	*slog.Logger
	handler *Handler
}

// New creates a Log whose root context is called name.
func New(name string, opts *Options) *Log {
	if opts == nil {
		opts = &Options{}
	}
	sinks := opts.Sinks
	if len(sinks) == 0 {
		sinks = []io.Writer{os.Stdout}
	}
	h := NewHandler(name, opts.Level, sinks...)
	return &Log{Logger: slog.New(h), handler: h}
}

// Discard returns a Log that writes nowhere but still keeps statistics.
func Discard() *Log {
	return New("discard", &Options{Sinks: []io.Writer{io.Discard}})
}

// Handler exposes the underlying handler.
func (l *Log) Handler() *Handler { return l.handler }

// Success logs at LevelSuccess.
func (l *Log) Success(msg string, args ...any) {
	l.log(LevelSuccess, msg, args...)
}

// Fatal logs at LevelFatal. It does not terminate the process; callers
// return an error and the application decides.
func (l *Log) Fatal(msg string, args ...any) {
	l.log(LevelFatal, msg, args...)
}

func (l *Log) log(level slog.Level, msg string, args ...any) {
	ctx := context.Background()
	if !l.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.handler.Handle(ctx, r)
}

// Push opens a named context. Messages logged until the matching Pop are
// indented one step further and counted in the new context.
func (l *Log) Push(name string) {
	st := l.handler.state
	st.mu.Lock()
	depth := len(st.frames) - 1
	st.mu.Unlock()

	l.handler.marker("[ "+name+" ]", depth, true)

	st.mu.Lock()
	st.frames = append(st.frames, frame{name: name})
	st.mu.Unlock()
}

// Pop closes the innermost context and returns the remaining depth. The
// root context is never popped.
func (l *Log) Pop() int {
	st := l.handler.state
	st.mu.Lock()
	if len(st.frames) <= 1 {
		st.mu.Unlock()
		return 1
	}
	name := st.frames[len(st.frames)-1].name
	st.frames = st.frames[:len(st.frames)-1]
	depth := len(st.frames)
	st.mu.Unlock()

	l.handler.marker("[ "+name+" ]", depth-1, false)
	return depth
}

// Context returns the name of the innermost context.
func (l *Log) Context() string {
	st := l.handler.state
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.frames[len(st.frames)-1].name
}

// Stats returns the counters of the innermost context. Counts propagate
// outward, so the root context sees every message.
func (l *Log) Stats() Stats {
	st := l.handler.state
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.frames[len(st.frames)-1].stats
}

// AddSink starts writing to w as well.
func (l *Log) AddSink(w io.Writer) {
	st := l.handler.state
	st.mu.Lock()
	st.sinks = append(st.sinks, w)
	st.mu.Unlock()
}

// RemoveSink stops writing to w. Removing a sink that was never added
// logs a warning and does nothing else.
func (l *Log) RemoveSink(w io.Writer) {
	st := l.handler.state
	st.mu.Lock()
	pos := -1
	for i, s := range st.sinks {
		if s == w {
			pos = i
			break
		}
	}
	if pos >= 0 {
		st.sinks = append(st.sinks[:pos], st.sinks[pos+1:]...)
	}
	st.mu.Unlock()

	if pos < 0 {
		l.log(LevelWarn, "Tried to remove non-existing sink")
	}
}

// Close writes a closing separator to every sink.
func (l *Log) Close() {
	st := l.handler.state
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, sink := range st.sinks {
		io.WriteString(sink, strings.Repeat("-", 20)+"|"+strings.Repeat("-", 26)+"|"+strings.Repeat("-", 9)+"+\n")
	}
}

// AssertionError is the panic value raised by Assert.
type AssertionError struct {
	Expr string
	Msg  string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: %s", e.Expr, e.Msg)
}

// Assert logs and panics with an *AssertionError when cond is false. It
// guards programming errors such as out-of-range indices.
func (l *Log) Assert(cond bool, expr, msg string) {
	if cond {
		return
	}
	l.log(LevelFatal, "Assertion failed: "+expr)
	l.log(LevelFatal, "  "+msg)
	panic(&AssertionError{Expr: expr, Msg: msg})
}

// ParseLevel maps a level name, as used in configuration files, to a level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "success":
		return LevelSuccess, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	}
	return LevelInfo, errors.Newf("unknown log level %q", name)
}
