package logsvc

import (
	"io"
	"log"
	"strings"

	"github.com/trezcool/aula/core"
)

// Levels
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ConsoleLogger prints to a *log.Logger only, dropping entries below its level.
type ConsoleLogger struct {
	std   *log.Logger
	level int
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(std *log.Logger, level int) *ConsoleLogger {
	return &ConsoleLogger{std: std, level: level}
}

// NewDiscardLogger drops everything but fatal entries.
func NewDiscardLogger() *ConsoleLogger {
	return NewConsoleLogger(log.New(io.Discard, "", 0), LevelError+1)
}

func (l ConsoleLogger) Debug(msg string, args ...interface{}) {
	if l.level <= LevelDebug {
		printTo(l.std, "DEBUG", msg, args)
	}
}

func (l ConsoleLogger) Info(msg string, args ...interface{}) {
	if l.level <= LevelInfo {
		printTo(l.std, "INFO", msg, args)
	}
}

func (l ConsoleLogger) Warn(msg string, args ...interface{}) {
	if l.level <= LevelWarn {
		printTo(l.std, "WARN", msg, args)
	}
}

func (l ConsoleLogger) Error(msg string, args ...interface{}) {
	if l.level <= LevelError {
		printTo(l.std, "ERROR", msg, args)
	}
}

func (l ConsoleLogger) Fatal(msg string, args ...interface{}) {
	printTo(l.std, "FATAL", msg, args)
	l.std.Fatal(msg)
}

// ParseLevel maps debug|info|warn|error to a level, defaulting to info.
func ParseLevel(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func printTo(std *log.Logger, level, msg string, args []interface{}) {
	std.Printf("%s %s", level, msg)
	for _, arg := range args {
		std.Printf("  %+v", arg)
	}
}
