// Package logger provides structured JSON logging with PII redaction.
// Loggers are explicit values: request-scoped fields (request id,
// subscriber id) are bound with With and the derived logger is passed
// into the operation, instead of mutating ambient global state.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// ParseLevel maps a configuration string to a Level. Unknown values
// fall back to INFO.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG
	case "warn":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger emits structured JSON entries. The zero value is not usable;
// construct with New. Loggers are cheap to derive and safe for
// concurrent use.
type Logger struct {
	out       io.Writer
	mu        *sync.Mutex
	level     Level
	redactPII bool
	fields    []field
}

type field struct {
	key string
	val string
}

// New creates a logger writing to out at the given minimum level.
// Email addresses in field values are redacted.
func New(out io.Writer, level Level) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{out: out, mu: &sync.Mutex{}, level: level, redactPII: true}
}

// WithoutRedaction returns a copy that logs field values verbatim.
// Only for local development.
func (l *Logger) WithoutRedaction() *Logger {
	cp := *l
	cp.redactPII = false
	return &cp
}

// With returns a derived logger with the given key-value pairs bound to
// every subsequent entry.
func (l *Logger) With(kv ...any) *Logger {
	cp := *l
	cp.fields = append(append([]field(nil), l.fields...), pairs(kv)...)
	return &cp
}

// Debug emits a DEBUG-level entry.
func (l *Logger) Debug(msg string, kv ...any) { l.log(DEBUG, msg, kv) }

// Info emits an INFO-level entry.
func (l *Logger) Info(msg string, kv ...any) { l.log(INFO, msg, kv) }

// Warn emits a WARN-level entry.
func (l *Logger) Warn(msg string, kv ...any) { l.log(WARN, msg, kv) }

// Error emits an ERROR-level entry.
func (l *Logger) Error(msg string, kv ...any) { l.log(ERROR, msg, kv) }

func (l *Logger) log(level Level, msg string, kv []any) {
	if level < l.level {
		return
	}

	entry := map[string]string{
		"time":  time.Now().UTC().Format(time.RFC3339),
		"level": levelNames[level],
		"msg":   msg,
	}
	for _, f := range l.fields {
		entry[f.key] = l.render(f)
	}
	for _, f := range pairs(kv) {
		entry[f.key] = l.render(f)
	}

	data, _ := json.Marshal(entry)
	l.mu.Lock()
	fmt.Fprintln(l.out, string(data))
	l.mu.Unlock()
}

func (l *Logger) render(f field) string {
	if l.redactPII {
		return redactValue(f.key, f.val)
	}
	return f.val
}

func pairs(kv []any) []field {
	out := make([]field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, field{
			key: fmt.Sprintf("%v", kv[i]),
			val: fmt.Sprintf("%v", kv[i+1]),
		})
	}
	return out
}
