// Package logging provides simple leveled, structured logging for the
// profiling pipeline: every call site attaches key/value pairs, and a
// Logger can be narrowed to a connection, a packet, or a counter so
// those identifiers tag every subsequent line without being repeated at
// each call site.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger wraps stdlib log with level support, a fixed set of contextual
// fields (set via With*), and a choice of text or JSON rendering.
type Logger struct {
	logger *log.Logger
	level  LogLevel
	format string
	fields []any
	mu     *sync.Mutex
}

var (
	defaultLogger *Logger
	mu            sync.RWMutex
)

// LogLevel represents the available log levels.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Config holds logging configuration. Format selects "text" (the
// default, key=value pairs after the message) or "json" (one object per
// line); an unrecognized value falls back to text.
type Config struct {
	Level  LogLevel
	Output io.Writer
	Format string
}

// DefaultConfig returns a sensible default configuration: info level,
// text format, stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:  LevelInfo,
		Output: os.Stderr,
		Format: "text",
	}
}

// NewLogger creates a new logger from config, or DefaultConfig if nil.
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}
	format := config.Format
	if format != "json" {
		format = "text"
	}
	// JSON lines carry their own "time" field; a stdlib log.Logger
	// timestamp prefix would corrupt the line as JSON, so only text
	// format gets one.
	flags := log.LstdFlags
	if format == "json" {
		flags = 0
	}
	return &Logger{
		logger: log.New(output, "", flags),
		level:  config.Level,
		format: format,
		mu:     &sync.Mutex{},
	}
}

// Default returns the default logger, creating it if necessary.
func Default() *Logger {
	mu.RLock()
	if defaultLogger != nil {
		defer mu.RUnlock()
		return defaultLogger
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(nil)
	}
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(logger *Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

// With returns a derived Logger that prepends keyvals to every
// subsequent log call. The receiver is left unmodified.
func (l *Logger) With(keyvals ...any) *Logger {
	fields := make([]any, 0, len(l.fields)+len(keyvals))
	fields = append(fields, l.fields...)
	fields = append(fields, keyvals...)
	return &Logger{logger: l.logger, level: l.level, format: l.format, fields: fields, mu: l.mu}
}

// WithConnection tags subsequent log lines with the remote address of
// the monitor connection being serviced.
func (l *Logger) WithConnection(remoteAddr string) *Logger {
	return l.With("conn", remoteAddr)
}

// WithPacket tags subsequent log lines with a packet's (family, class)
// for tracing one command through dispatch and into its handler.
func (l *Logger) WithPacket(family, class uint8) *Logger {
	return l.With("family", family, "class", class)
}

// WithCounter tags subsequent log lines with a counter UID, for tracing
// directory registration and value-store activity for one counter.
func (l *Logger) WithCounter(uid uint16) *Logger {
	return l.With("uid", uid)
}

// WithBackend tags subsequent log lines with a backend's stable id.
func (l *Logger) WithBackend(id string) *Logger {
	return l.With("backend", id)
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if level < l.level {
		return
	}
	all := make([]any, 0, len(l.fields)+len(args))
	all = append(all, l.fields...)
	all = append(all, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.format == "json" {
		l.logger.Print(encodeJSONLine(level, msg, all))
		return
	}
	l.logger.Printf("[%s] %s%s", level, msg, formatArgs(all))
}

// formatArgs renders key/value pairs as " k1=v1 k2=v2 ...".
func formatArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			break
		}
		b.WriteByte(' ')
		fmt.Fprintf(&b, "%v=%v", args[i], args[i+1])
	}
	return b.String()
}

// encodeJSONLine renders one log line as a JSON object: time, level,
// msg, then every key/value pair in order. Falls back to a text line if
// marshaling fails (e.g. a non-string key), since logging must never
// itself be the thing that panics.
func encodeJSONLine(level LogLevel, msg string, args []any) string {
	obj := make(map[string]any, 3+len(args)/2)
	obj["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	obj["level"] = level.String()
	obj["msg"] = msg
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			break
		}
		key := fmt.Sprintf("%v", args[i])
		obj[key] = args[i+1]
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return fmt.Sprintf("[%s] %s%s", level, msg, formatArgs(args))
	}
	return string(b)
}

func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// Debugf/Infof/Warnf/Errorf are printf-style counterparts for call
// sites that already have a formatted string rather than key/value
// pairs.
func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, fmt.Sprintf(format, args...)) }

// Printf logs at info level, for call sites that only have fmt-style
// logging to offer (e.g. adapting third-party code expecting a Printf
// sink).
func (l *Logger) Printf(format string, args ...any) { l.Infof(format, args...) }

// Global convenience functions operate on the default logger.
func Debug(msg string, args ...any) { Default().Debug(msg, args...) }
func Info(msg string, args ...any)  { Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { Default().Warn(msg, args...) }
func Error(msg string, args ...any) { Default().Error(msg, args...) }
