// Package logger provides tetrad's leveled, stderr-only logger. stdout is
// reserved for the MCP JSON-RPC stream, so unlike the teacher's console
// logger (which writes operator-facing CLI output to stdout) every tetrad
// log line goes to stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level is a log severity, ordered trace < debug < info < warn < error.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func parseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Field is a structured key/value attached to a log line.
type Field struct {
	Key   string
	Value any
}

// F constructs a Field.
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger is tetrad's logging interface.
type Logger interface {
	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// New constructs a Logger for the given level name ("trace".."error") and
// format ("text" or "json"), writing to w (os.Stderr in production).
func New(levelName, format string, w io.Writer) Logger {
	base := &baseLogger{level: parseLevel(levelName), out: w}
	if format == "json" {
		return &jsonLogger{baseLogger: base}
	}
	return &textLogger{
		baseLogger: base,
		color:      isatty.IsTerminal(fileDescriptor(w)),
	}
}

func fileDescriptor(w io.Writer) uintptr {
	if f, ok := w.(*os.File); ok {
		return f.Fd()
	}
	return ^uintptr(0)
}

type baseLogger struct {
	mu    sync.Mutex
	level Level
	out   io.Writer
}

func (b *baseLogger) enabled(l Level) bool { return l >= b.level }

type textLogger struct {
	*baseLogger
	color bool
}

func (t *textLogger) log(l Level, msg string, fields []Field) {
	if !t.enabled(l) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	ts := time.Now().Format(time.RFC3339)
	levelStr := strings.ToUpper(l.String())
	if t.color {
		levelStr = colorFor(l)(levelStr)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %-5s %s", ts, levelStr, msg)
	for _, f := range sortedFields(fields) {
		fmt.Fprintf(&sb, " %s=%v", f.Key, f.Value)
	}
	fmt.Fprintln(t.out, sb.String())
}

func colorFor(l Level) func(a ...interface{}) string {
	switch l {
	case LevelError:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case LevelWarn:
		return color.New(color.FgYellow).SprintFunc()
	case LevelDebug, LevelTrace:
		return color.New(color.FgHiBlack).SprintFunc()
	default:
		return color.New(color.FgCyan).SprintFunc()
	}
}

func sortedFields(fields []Field) []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (t *textLogger) Trace(msg string, fields ...Field) { t.log(LevelTrace, msg, fields) }
func (t *textLogger) Debug(msg string, fields ...Field) { t.log(LevelDebug, msg, fields) }
func (t *textLogger) Info(msg string, fields ...Field)  { t.log(LevelInfo, msg, fields) }
func (t *textLogger) Warn(msg string, fields ...Field)  { t.log(LevelWarn, msg, fields) }
func (t *textLogger) Error(msg string, fields ...Field) { t.log(LevelError, msg, fields) }

type jsonLogger struct {
	*baseLogger
}

func (j *jsonLogger) log(l Level, msg string, fields []Field) {
	if !j.enabled(l) {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("{")
	fmt.Fprintf(&sb, "\"ts\":%q,\"level\":%q,\"msg\":%q", time.Now().Format(time.RFC3339), l.String(), msg)
	for _, f := range sortedFields(fields) {
		fmt.Fprintf(&sb, ",%q:%q", f.Key, fmt.Sprint(f.Value))
	}
	sb.WriteString("}")
	fmt.Fprintln(j.out, sb.String())
}

func (j *jsonLogger) Trace(msg string, fields ...Field) { j.log(LevelTrace, msg, fields) }
func (j *jsonLogger) Debug(msg string, fields ...Field) { j.log(LevelDebug, msg, fields) }
func (j *jsonLogger) Info(msg string, fields ...Field)  { j.log(LevelInfo, msg, fields) }
func (j *jsonLogger) Warn(msg string, fields ...Field)  { j.log(LevelWarn, msg, fields) }
func (j *jsonLogger) Error(msg string, fields ...Field) { j.log(LevelError, msg, fields) }

// Nop returns a Logger that discards everything, used by tests and by CLI
// commands that print their own output (doctor, status).
func Nop() Logger { return New("error", "text", io.Discard) }
