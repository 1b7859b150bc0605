// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogFileMB    = 50
	maxLogBackups   = 10
	logFileSuffix   = ".log"
	defaultLogLevel = logrus.InfoLevel
)

type LoggerSetupParams struct {
	LogFileName   string // rotated through lumberjack; empty logs to stdout only
	LogToStdout   bool   // also copy file output to stdout
	LogLevel      string
	LogFormatJSON bool
}

func Setup(params LoggerSetupParams) {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))

	out, target := outputFor(params)
	logrus.SetOutput(out)
	logrus.WithField("target", target).Info("logger configured")
}

func outputFor(params LoggerSetupParams) (io.Writer, string) {
	if params.LogFileName == "" {
		return os.Stdout, "stdout"
	}

	fileName := params.LogFileName
	if !strings.HasSuffix(fileName, logFileSuffix) {
		fileName += logFileSuffix
	}
	rotating := &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    maxLogFileMB,
		MaxBackups: maxLogBackups,
		Compress:   true,
	}

	if params.LogToStdout {
		return io.MultiWriter(os.Stdout, rotating), fileName + "+stdout"
	}
	return rotating, fileName
}

// GetLevel parses a level name. Unknown or empty names fall back to info.
func GetLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return defaultLogLevel
	}
	return parsed
}
