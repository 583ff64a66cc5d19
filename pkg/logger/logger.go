package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Interface is the logging surface used across fsformats.
// *logrus.Logger and *logrus.Entry both satisfy it.
type Interface interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

// NewLogger returns a logrus logger with its level taken from the LOGLEVEL env var.
func NewLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(LevelFromEnv())
	return l
}

// NewNullLogger returns a logger that discards everything.
func NewNullLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func LevelFromEnv() logrus.Level {
	switch strings.ToLower(os.Getenv("LOGLEVEL")) {
	case "error":
		return logrus.ErrorLevel
	case "warning", "warn":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}
