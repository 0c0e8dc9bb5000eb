package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes every entry to a per-program log file and mirrors it to the
// console. The file always records at info level; the console level comes
// from configuration. All entries of one run share a run_id field.
type Logger struct {
	file    *logrus.Logger
	console *logrus.Logger
	runID   string
}

// New builds a Logger logging to <dir>/<prog>.log and to stderr at
// consoleLevel.
func New(dir, consoleLevel, prog string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir failed: %w", err)
	}

	file := logrus.New()
	file.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(dir, prog+".log"),
		MaxSize:    10, // MB
		MaxBackups: 5,
	})
	file.SetLevel(logrus.InfoLevel)
	file.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(consoleLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", consoleLevel, err)
	}
	console := logrus.New()
	console.SetOutput(os.Stderr)
	console.SetLevel(level)
	console.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &Logger{file: file, console: console, runID: uuid.NewString()}, nil
}

// RunID returns the identifier shared by all log entries of this run.
func (l *Logger) RunID() string {
	return l.runID
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.file.WithField("run_id", l.runID).Debugf(format, args...)
	l.console.WithField("run_id", l.runID).Debugf(format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.file.WithField("run_id", l.runID).Infof(format, args...)
	l.console.WithField("run_id", l.runID).Infof(format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.file.WithField("run_id", l.runID).Warnf(format, args...)
	l.console.WithField("run_id", l.runID).Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.file.WithField("run_id", l.runID).Errorf(format, args...)
	l.console.WithField("run_id", l.runID).Errorf(format, args...)
}
