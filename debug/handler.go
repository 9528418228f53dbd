package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// Levels understood by the handler. Fatal and Success sit between the
// standard slog levels so that level filtering keeps working.
const (
	LevelDebug   = slog.LevelDebug
	LevelInfo    = slog.LevelInfo
	LevelSuccess = slog.LevelInfo + 2
	LevelWarn    = slog.LevelWarn
	LevelError   = slog.LevelError
	LevelFatal   = slog.LevelError + 4
)

const timeFormat = "2006-01-02 15:04:05"

// Stats counts emitted messages per level.
type Stats struct {
	Debug   int
	Info    int
	Warn    int
	Error   int
	Fatal   int
	Success int
	Total   int
}

func (s *Stats) add(level slog.Level) {
	s.Total++
	switch {
	case level >= LevelFatal:
		s.Fatal++
	case level >= LevelError:
		s.Error++
	case level >= LevelWarn:
		s.Warn++
	case level >= LevelSuccess:
		s.Success++
	case level >= LevelInfo:
		s.Info++
	default:
		s.Debug++
	}
}

type frame struct {
	name  string
	stats Stats
}

// sinkState is shared by a handler and every handler derived from it
// through WithAttrs or WithGroup.
type sinkState struct {
	mu     sync.Mutex
	sinks  []io.Writer
	frames []frame
}

// Handler is a slog.Handler writing one line per record to every sink,
// indented by the depth of the context stack.
type Handler struct {
	state  *sinkState
	level  slog.Leveler
	prefix string
	attrs  string
}

// NewHandler creates a handler with a root context called name.
func NewHandler(name string, level slog.Leveler, sinks ...io.Writer) *Handler {
	if level == nil {
		level = LevelDebug
	}
	return &Handler{
		state: &sinkState{
			sinks:  sinks,
			frames: []frame{{name: name}},
		},
		level: level,
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.prefix, a)
		return true
	})

	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	for i := range h.state.frames {
		h.state.frames[i].stats.add(r.Level)
	}

	line := h.formatLocked(r, sb.String(), len(h.state.frames)-1)
	return h.writeLocked(r.Level, line)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		writeAttr(&sb, h.prefix, a)
	}
	return &Handler{state: h.state, level: h.level, prefix: h.prefix, attrs: sb.String()}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{state: h.state, level: h.level, prefix: h.prefix + name + ".", attrs: h.attrs}
}

func (h *Handler) formatLocked(r slog.Record, attrs string, depth int) string {
	var sb strings.Builder

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	sb.WriteString(ts.Format(timeFormat))
	sb.WriteString(" | ")
	sb.WriteString(fmt.Sprintf("%-24s", source(r.PC)))
	sb.WriteString(" | ")
	sb.WriteString(fmt.Sprintf("%-7s", LevelName(r.Level)))
	sb.WriteString(" | ")
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(r.Message)
	sb.WriteString(attrs)
	return sb.String()
}

func (h *Handler) writeLocked(level slog.Level, line string) error {
	var firstErr error
	for _, sink := range h.state.sinks {
		out := line
		if isTerminal(sink) {
			out = levelColor(level) + line + "\033[m"
		}
		if _, err := io.WriteString(sink, out+"\n"); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// marker writes an unlevelled context line without touching stats.
func (h *Handler) marker(text string, depth int, separator bool) {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	for _, sink := range h.state.sinks {
		if separator {
			io.WriteString(sink, strings.Repeat("-", 20)+"|"+strings.Repeat("-", 26)+"|"+strings.Repeat("-", 9)+"+\n")
		}
		io.WriteString(sink, time.Now().Format(timeFormat)+" | "+fmt.Sprintf("%-24s", "")+" | "+fmt.Sprintf("%-7s", "")+" | "+
			strings.Repeat("  ", depth)+text+"\n")
	}
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(sb, prefix+a.Key+".", ga)
		}
		return
	}
	sb.WriteByte(' ')
	sb.WriteString(prefix)
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	value := a.Value.String()
	if strings.ContainsAny(value, " \t\"") {
		value = fmt.Sprintf("%q", value)
	}
	sb.WriteString(value)
}

func source(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	f, _ := frames.Next()
	if f.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
}

// LevelName returns the label printed for level.
func LevelName(level slog.Level) string {
	switch {
	case level >= LevelFatal:
		return "FATAL"
	case level >= LevelError:
		return "ERROR"
	case level >= LevelWarn:
		return "WARN"
	case level >= LevelSuccess:
		return "SUCCESS"
	case level >= LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func levelColor(level slog.Level) string {
	switch {
	case level >= LevelFatal:
		return "\033[1;31m"
	case level >= LevelError:
		return "\033[31m"
	case level >= LevelWarn:
		return "\033[33m"
	case level >= LevelSuccess:
		return "\033[32m"
	case level >= LevelInfo:
		return "\033[34m"
	default:
		return "\033[m"
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
