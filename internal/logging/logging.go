// Package logging builds the logrus logger for each runtime environment.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"devtask/internal/config"
)

// Setup returns a logger for env.
//
// local logs debug text to stderr; dev and prod append plain text to
// logPath at info and warn respectively. A non-empty level overrides the
// environment's default. The returned closer releases the log file.
func Setup(env, level, logPath string) (*logrus.Entry, io.Closer, error) {
	log := logrus.New()
	var closer io.Closer = nopCloser{}

	switch env {
	case config.EnvLocal:
		log.SetOutput(os.Stderr)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	default:
		f, err := openLogFile(logPath)
		if err != nil {
			return nil, nil, err
		}
		closer = f
		log.SetOutput(f)
		log.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
		if env == config.EnvDev {
			log.SetLevel(logrus.InfoLevel)
		} else {
			log.SetLevel(logrus.WarnLevel)
		}
	}

	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			closer.Close()
			return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		log.SetLevel(lvl)
	}
	return logrus.NewEntry(log), closer, nil
}

// Discard returns a logger that drops everything
func Discard() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("log path is required outside the local environment")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
