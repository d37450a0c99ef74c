// Package logger is a small levelled logger. Entries go to stdout, to an
// optional rotating file set up by Init, and to in-process subscribers.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the name of the log file created by Init.
const LogFileName = "hellotimer.log"

// LogLevel is the severity printed between brackets in each line.
type LogLevel string

const (
	Debug LogLevel = "DEBUG"
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

// severity orders the levels; anything missing ranks as Info.
var severity = map[LogLevel]int{Debug: 0, Info: 1, Warn: 2, Error: 3}

var levelNames = map[string]LogLevel{
	"debug": Debug,
	"info":  Info,
	"warn":  Warn,
	"error": Error,
}

func rank(level LogLevel) int {
	if s, ok := severity[level]; ok {
		return s
	}
	return severity[Info]
}

// ParseLevel maps "debug", "info", "warn" or "error" to a LogLevel.
// The second result is false for anything else, with Info as the level.
func ParseLevel(level string) (LogLevel, bool) {
	l, ok := levelNames[level]
	if !ok {
		return Info, false
	}
	return l, true
}

// LogEntry is one message as delivered to subscribers.
type LogEntry struct {
	Timestamp string
	Level     LogLevel
	Message   string
}

var (
	mu        sync.Mutex
	threshold = Info
	listeners []chan LogEntry
	file      *lumberjack.Logger
)

func init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(0)
}

// SetLevel drops messages below level. Unknown names mean info.
func SetLevel(level string) {
	l, _ := ParseLevel(level)
	mu.Lock()
	threshold = l
	mu.Unlock()
}

// Init tees output into logDir/hellotimer.log, rotated by size.
// An empty logDir is a no-op.
func Init(logDir string) error {
	if logDir == "" {
		return nil
	}
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	file = &lumberjack.Logger{
		Filename:   filepath.Join(logDir, LogFileName),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	log.SetOutput(io.MultiWriter(os.Stdout, file))
	return nil
}

// Close closes the log file opened by Init, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	log.SetOutput(os.Stdout)
	return err
}

// GetLogDir returns the directory of the open log file, or "" when logging to stdout only.
func GetLogDir() string {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return ""
	}
	return filepath.Dir(file.Filename)
}

// Subscribe returns a buffered channel fed with every entry that passes the level filter.
// Entries are dropped while the buffer is full.
func Subscribe() chan LogEntry {
	ch := make(chan LogEntry, 100)
	mu.Lock()
	listeners = append(listeners, ch)
	mu.Unlock()
	return ch
}

// Unsubscribe stops delivery to ch and closes it. Unknown channels are ignored.
func Unsubscribe(ch chan LogEntry) {
	mu.Lock()
	defer mu.Unlock()
	for i, l := range listeners {
		if l == ch {
			listeners = append(listeners[:i], listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

func publish(entry LogEntry) {
	mu.Lock()
	defer mu.Unlock()
	for _, ch := range listeners {
		select {
		case ch <- entry:
		default:
		}
	}
}

func write(level LogLevel, format string, v ...interface{}) {
	mu.Lock()
	floor := threshold
	mu.Unlock()
	if rank(level) < rank(floor) {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     level,
		Message:   fmt.Sprintf(format, v...),
	}
	log.Printf("%s [%s] %s", entry.Timestamp, entry.Level, entry.Message)
	publish(entry)
}

// Debugf logs at DEBUG.
func Debugf(format string, v ...interface{}) { write(Debug, format, v...) }

// Infof logs at INFO.
func Infof(format string, v ...interface{}) { write(Info, format, v...) }

// Warnf logs at WARN.
func Warnf(format string, v ...interface{}) { write(Warn, format, v...) }

// Errorf logs at ERROR.
func Errorf(format string, v ...interface{}) { write(Error, format, v...) }
