package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

var levelRank = map[LogLevel]int{
	LogLevelDebug: 0,
	LogLevelInfo:  1,
	LogLevelWarn:  2,
	LogLevelError: 3,
}

// Logger provides leveled logging scoped to a single component
// (e.g. "tracker", "store", "ocr").
type Logger struct {
	component string
	minLevel  LogLevel
	out       io.Writer
	mu        sync.Mutex
}

// NewLogger creates a logger for a specific component writing to stdout.
func NewLogger(component string) *Logger {
	return &Logger{
		component: component,
		minLevel:  LogLevelInfo,
		out:       os.Stdout,
	}
}

// SetMinLevel sets the minimum level to output.
func (l *Logger) SetMinLevel(level LogLevel) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
	return l
}

// SetOutput replaces the output writer.
func (l *Logger) SetOutput(w io.Writer) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
	return l
}

func (l *Logger) log(level LogLevel, message string, err error, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if levelRank[level] < levelRank[l.minLevel] {
		return
	}

	msg := fmt.Sprintf("[%s] %s [%s] %s",
		time.Now().Format("2006-01-02 15:04:05.000"), level, l.component, message)
	if err != nil {
		msg += fmt.Sprintf(" | error=%v", err)
	}
	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		msg += " |"
		for _, k := range keys {
			msg += fmt.Sprintf(" %s=%v", k, fields[k])
		}
	}

	fmt.Fprintln(l.out, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(message string) {
	l.log(LogLevelDebug, message, nil, nil)
}

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(LogLevelDebug, fmt.Sprintf(format, args...), nil, nil)
}

// Info logs an info message.
func (l *Logger) Info(message string) {
	l.log(LogLevelInfo, message, nil, nil)
}

// Infof logs a formatted info message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(LogLevelInfo, fmt.Sprintf(format, args...), nil, nil)
}

// InfoWithFields logs an info message with context fields.
func (l *Logger) InfoWithFields(message string, fields map[string]interface{}) {
	l.log(LogLevelInfo, message, nil, fields)
}

// Warn logs a warning message.
func (l *Logger) Warn(message string) {
	l.log(LogLevelWarn, message, nil, nil)
}

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(LogLevelWarn, fmt.Sprintf(format, args...), nil, nil)
}

// Error logs an error message.
func (l *Logger) Error(message string, err error) {
	l.log(LogLevelError, message, err, nil)
}

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(LogLevelError, fmt.Sprintf(format, args...), nil, nil)
}

// ErrorWithFields logs an error message with context fields.
func (l *Logger) ErrorWithFields(message string, err error, fields map[string]interface{}) {
	l.log(LogLevelError, message, err, fields)
}
