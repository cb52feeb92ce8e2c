package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerOptions configures NewLogger
type LoggerOptions struct {
	Level string
	// File is the path of the rotating log file; empty disables it
	File string
	// Console is where human readable output goes; defaults to stdout
	Console io.Writer
}

// NewLogger creates a new configured logger
func NewLogger(opts LoggerOptions) *logrus.Logger {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	out := console
	if opts.File != "" {
		out = io.MultiWriter(console, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
		})
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Parse log level
	logLevel, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	return logger
}
