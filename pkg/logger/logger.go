package logger

import (
	"io"
	"os"

	"go-vaccination-booking/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New configures the standard logrus logger from cfg and returns it.
// Output always goes to stdout; when a file is configured it is also
// written there with size-based rotation.
func New(cfg config.LogConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(Writer(cfg))

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

// Writer builds the log destination for cfg
func Writer(cfg config.LogConfig) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
}
