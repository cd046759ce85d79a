package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

// Init configures the process-wide logger. Output goes to stderr so that
// report tables written to stdout stay machine readable.
func Init(level, format string) *logrus.Logger {
	return InitWithOutput(level, format, os.Stderr)
}

// InitWithOutput is Init with an explicit writer.
func InitWithOutput(level, format string, out io.Writer) *logrus.Logger {
	log := logrus.New()

	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}

	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", level).Warn("Invalid LOG_LEVEL, using INFO")
	}

	if strings.ToLower(format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	log.SetOutput(out)

	Logger = log
	return log
}

// GetLogger returns the global logger, initializing it with defaults when needed.
func GetLogger() *logrus.Logger {
	if Logger == nil {
		return Init("info", "text")
	}
	return Logger
}

// WithComponent tags log lines with the emitting component.
func WithComponent(name string) *logrus.Entry {
	return GetLogger().WithField("component", name)
}

// WithLeague creates a logger with league context
func WithLeague(league string) *logrus.Entry {
	return GetLogger().WithField("league", league)
}

// WithHTTPContext creates a logger with HTTP request context
func WithHTTPContext(method, path string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"http_method": method,
		"http_path":   path,
	})
}

// Discard returns an entry that drops everything; handy in tests.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
