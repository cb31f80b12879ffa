package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Logger writes leveled, timestamped lines to a log file and mirrors
// each line to stderr.
type Logger struct {
	file *os.File
	out  *log.Logger
}

// NewLogger opens the log file at logPath for appending, creating parent
// directories as needed.
func NewLogger(logPath string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &Logger{
		file: file,
		out:  log.New(io.MultiWriter(file, os.Stderr), "", log.LstdFlags),
	}, nil
}

// Close closes the underlying log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) emit(level, format string, v ...interface{}) {
	l.out.Printf("[%s] %s", level, fmt.Sprintf(format, v...))
}

func (l *Logger) Debug(format string, v ...interface{}) { l.emit("DEBUG", format, v...) }

func (l *Logger) Info(format string, v ...interface{}) { l.emit("INFO", format, v...) }

func (l *Logger) Warn(format string, v ...interface{}) { l.emit("WARN", format, v...) }

func (l *Logger) Error(format string, v ...interface{}) { l.emit("ERROR", format, v...) }

// GetLogPath returns today's log file, one file per day, under the same
// per-user directory GetConfigPath uses.
func GetLogPath() string {
	name := time.Now().Format("2006-01-02") + ".log"
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("logs", name)
	}
	return filepath.Join(base, "logdeck", "logs", name)
}
