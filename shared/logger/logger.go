package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"comment-insights/shared/config"
)

type Logger struct {
	*logrus.Logger
	fileLogger *logrus.Logger
}

var defaultLogger = &Logger{Logger: newConsoleLogger(os.Stdout)}

func newConsoleLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Setup applies the configured level and, when a log directory is set,
// mirrors every entry into a rotating JSON log file.
func Setup(cfg *config.LoggingConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	defaultLogger.SetLevel(level)

	if cfg.Dir == "" {
		defaultLogger.fileLogger = nil
		return nil
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return err
	}

	fileLogger := logrus.New()
	fileLogger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})
	fileLogger.SetLevel(level)
	fileLogger.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, "mention-miner.log"),
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})
	defaultLogger.fileLogger = fileLogger
	return nil
}

// SetOutput redirects the console logger.
func SetOutput(out io.Writer) {
	defaultLogger.SetOutput(out)
}

func Infof(format string, args ...any) {
	defaultLogger.Logger.Infof(format, args...)
	if defaultLogger.fileLogger != nil {
		defaultLogger.fileLogger.Infof(format, args...)
	}
}

func Warnf(format string, args ...any) {
	defaultLogger.Logger.Warnf(format, args...)
	if defaultLogger.fileLogger != nil {
		defaultLogger.fileLogger.Warnf(format, args...)
	}
}

func Errorf(format string, args ...any) {
	defaultLogger.Logger.Errorf(format, args...)
	if defaultLogger.fileLogger != nil {
		defaultLogger.fileLogger.Errorf(format, args...)
	}
}

func Debugf(format string, args ...any) {
	defaultLogger.Logger.Debugf(format, args...)
	if defaultLogger.fileLogger != nil {
		defaultLogger.fileLogger.Debugf(format, args...)
	}
}

func Fatalf(format string, args ...any) {
	if defaultLogger.fileLogger != nil {
		defaultLogger.fileLogger.Errorf(format, args...)
	}
	defaultLogger.Logger.Fatalf(format, args...)
}
