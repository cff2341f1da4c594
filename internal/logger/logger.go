package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"tg-agegate/internal/config"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarning
	levelError
)

var (
	std      = log.New(os.Stdout, "", log.Ldate|log.Ltime|log.Lshortfile)
	minLevel = levelInfo
)

// createLogFilePath generates a log file path with the current date
func createLogFilePath(logDir, prefix string) string {
	currentDate := time.Now().Format("2006-01-02")
	return filepath.Join(logDir, fmt.Sprintf("%s-%s.log", prefix, currentDate))
}

// createRotatingLogger creates a lumberjack rotating logger
func createRotatingLogger(logFilePath string, cfg *config.Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    cfg.Logger.Rotation.MaxSize,
		MaxBackups: cfg.Logger.Rotation.MaxBackups,
		MaxAge:     cfg.Logger.Rotation.MaxAge,
		Compress:   cfg.Logger.Rotation.Compress,
	}
}

func parseLevel(name string) level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return levelDebug
	case "WARNING", "WARN":
		return levelWarning
	case "ERROR":
		return levelError
	default:
		return levelInfo
	}
}

// Setup configures logging to output to both stdout and a rotating log file
func Setup(cfg *config.Config) error {
	logDir := cfg.Logger.Directory

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFilePath := createLogFilePath(logDir, "agegate")
	rotatingLogger := createRotatingLogger(logFilePath, cfg)
	multiWriter := io.MultiWriter(os.Stdout, rotatingLogger)

	std = log.New(multiWriter, "", log.Ldate|log.Ltime|log.Lshortfile)
	minLevel = parseLevel(cfg.Logger.Level)

	// Redirect the standard logger too so library output lands in the file
	log.SetOutput(multiWriter)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	Infof("Logging initialized: writing to %s", logFilePath)
	return nil
}

func output(l level, tag, msg string) {
	if l < minLevel {
		return
	}
	std.Output(3, fmt.Sprintf("[%s] %s", tag, msg))
}

func Debugf(format string, args ...interface{}) {
	output(levelDebug, "DEBUG", fmt.Sprintf(format, args...))
}

func Infof(format string, args ...interface{}) {
	output(levelInfo, "INFO", fmt.Sprintf(format, args...))
}

func Info(args ...interface{}) {
	output(levelInfo, "INFO", fmt.Sprint(args...))
}

func Warningf(format string, args ...interface{}) {
	output(levelWarning, "WARNING", fmt.Sprintf(format, args...))
}

func Warning(args ...interface{}) {
	output(levelWarning, "WARNING", fmt.Sprint(args...))
}

func Errorf(format string, args ...interface{}) {
	output(levelError, "ERROR", fmt.Sprintf(format, args...))
}

func Error(args ...interface{}) {
	output(levelError, "ERROR", fmt.Sprint(args...))
}

func Fatalf(format string, args ...interface{}) {
	output(levelError, "FATAL", fmt.Sprintf(format, args...))
	os.Exit(1)
}
