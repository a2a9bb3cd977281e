package logging

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var levelTags = map[level]string{
	levelDebug: "DEBUG",
	levelInfo:  "INFO",
	levelWarn:  "WARN",
	levelError: "ERROR",
}

var (
	disabled atomic.Bool

	mu     sync.Mutex
	logger = log.New(os.Stdout, "", log.LstdFlags)
)

// Disable turns off all logging (used for clean CLI output)
func Disable() {
	disabled.Store(true)
}

// Enable turns logging back on
func Enable() {
	disabled.Store(false)
}

// SetOutput redirects log output, e.g. to a file in daemon mode
func SetOutput(f *os.File) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(f)
}

func emit(lv level, msg string) {
	if disabled.Load() {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	logger.Printf("[%s] %s", levelTags[lv], msg)
}

// Info logs an info message
func Info(v ...any) { emit(levelInfo, fmt.Sprint(v...)) }

// Infof logs a formatted info message
func Infof(format string, v ...any) { emit(levelInfo, fmt.Sprintf(format, v...)) }

// Warn logs a warning message
func Warn(v ...any) { emit(levelWarn, fmt.Sprint(v...)) }

// Warnf logs a formatted warning message
func Warnf(format string, v ...any) { emit(levelWarn, fmt.Sprintf(format, v...)) }

// Error logs an error message
func Error(v ...any) { emit(levelError, fmt.Sprint(v...)) }

// Errorf logs a formatted error message
func Errorf(format string, v ...any) { emit(levelError, fmt.Sprintf(format, v...)) }

// Debugf logs a formatted debug message
func Debugf(format string, v ...any) { emit(levelDebug, fmt.Sprintf(format, v...)) }

// Logger is a lightweight logger that can be embedded in structs
type Logger struct{}

// WithContext creates a new Logger (context is ignored, kept for call-site symmetry)
func WithContext(ctx context.Context) Logger {
	return Logger{}
}

func (l Logger) Info(v ...any)                  { Info(v...) }
func (l Logger) Infof(format string, v ...any)  { Infof(format, v...) }
func (l Logger) Warnf(format string, v ...any)  { Warnf(format, v...) }
func (l Logger) Error(v ...any)                 { Error(v...) }
func (l Logger) Errorf(format string, v ...any) { Errorf(format, v...) }
