package utils

import (
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type Log interface {
	Debug(a ...interface{})
	Info(a ...interface{})
	Warn(a ...interface{})
	Error(a ...interface{})
	Output(a ...interface{})
}

type LevelType int

const (
	ERROR LevelType = iota
	WARN
	INFO
	DEBUG
)

// NullLog is a logger that does nothing
type NullLog struct {
}

func (nl *NullLog) Debug(...interface{}) {
}

func (nl *NullLog) Info(...interface{}) {
}

func (nl *NullLog) Warn(...interface{}) {
}

func (nl *NullLog) Error(...interface{}) {
}

func (nl *NullLog) Output(...interface{}) {
}

// defaultLogger writes leveled messages to stderr and command output to stdout.
type defaultLogger struct {
	logger *charmlog.Logger
	output *charmlog.Logger
}

func NewDefaultLogger(level LevelType) Log {
	return NewLogger(level, os.Stderr, os.Stdout)
}

func NewLogger(level LevelType, logWriter, outputWriter io.Writer) Log {
	return &defaultLogger{
		logger: charmlog.NewWithOptions(logWriter, charmlog.Options{
			Level:           toCharmLevel(level),
			ReportTimestamp: true,
			Prefix:          "rp",
		}),
		output: charmlog.NewWithOptions(outputWriter, charmlog.Options{}),
	}
}

func toCharmLevel(level LevelType) charmlog.Level {
	switch level {
	case ERROR:
		return charmlog.ErrorLevel
	case WARN:
		return charmlog.WarnLevel
	case DEBUG:
		return charmlog.DebugLevel
	default:
		return charmlog.InfoLevel
	}
}

func (dl *defaultLogger) Debug(a ...interface{}) {
	dl.logger.Debug(fmt.Sprint(a...))
}

func (dl *defaultLogger) Info(a ...interface{}) {
	dl.logger.Info(fmt.Sprint(a...))
}

func (dl *defaultLogger) Warn(a ...interface{}) {
	dl.logger.Warn(fmt.Sprint(a...))
}

func (dl *defaultLogger) Error(a ...interface{}) {
	dl.logger.Error(fmt.Sprint(a...))
}

func (dl *defaultLogger) Output(a ...interface{}) {
	dl.output.Print(fmt.Sprint(a...))
}
