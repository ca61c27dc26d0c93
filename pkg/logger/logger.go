/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package logger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	RDP_DIAGNOSTICS_LOG_FOLDER = "RDP_DIAGNOSTICS_LOG_FOLDER" // Folder to write diagnostics logs to (defaults to a temp folder)
	RDP_DIAGNOSTICS_LOG_LEVEL  = "RDP_DIAGNOSTICS_LOG_LEVEL"  // Log level to include in diagnostics logs (defaults to none)

	verbosityFlagName      = "verbosity"
	verbosityFlagShortName = "v"

	diagnosticsLogMaxSizeMB  = 50
	diagnosticsLogMaxBackups = 5
)

var (
	defaultLogPath = filepath.Join(os.TempDir(), "devtools-rdp", "logs")

	errDiagnosticsLogNotEnabled = errors.New("diagnostics log not enabled")
)

type Logger struct {
	logr.Logger
	name        string
	atomicLevel zap.AtomicLevel
	flush       func()
}

// New creates a logger that writes human-readable output to stderr and, when enabled
// through the environment, machine-readable output to a rotating diagnostics log file.
func New(name string) *Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)

	consoleAtomicLevel := zap.NewAtomicLevel()

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), consoleAtomicLevel),
	}

	var diagnosticsLogErr error
	var diagnosticsLog *lumberjack.Logger
	if logCore, logFile, err := getDiagnosticsLogCore(name, encoderConfig); err != nil {
		// Ignore the error if diagnostics log isn't enabled
		if !errors.Is(err, errDiagnosticsLogNotEnabled) {
			diagnosticsLogErr = err
		}
	} else {
		cores = append(cores, logCore)
		diagnosticsLog = logFile
	}

	zapLogger := zap.New(zapcore.NewTee(cores...))
	logger := zapr.NewLogger(zapLogger)

	if diagnosticsLogErr != nil {
		logger.Error(diagnosticsLogErr, "failed to enable diagnostics log output")
	}

	return &Logger{
		Logger:      logger,
		name:        name,
		atomicLevel: consoleAtomicLevel,
		flush: func() {
			_ = zapLogger.Sync()
			if diagnosticsLog != nil {
				_ = diagnosticsLog.Close()
			}
		},
	}
}

func (l *Logger) WithName(name string) *Logger {
	l.Logger = l.Logger.WithName(name)
	return l
}

func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) SetLevel(level zapcore.Level) {
	l.atomicLevel.SetLevel(level)
}

func (l *Logger) Flush() {
	l.flush()
}

// Add verbosity flag to enable setting stderr log levels
func (l *Logger) AddLevelFlag(fs *pflag.FlagSet) {
	levelVal := NewLevelFlagValue(func(level zapcore.Level) {
		l.SetLevel(level)
	})
	fs.VarP(&levelVal, verbosityFlagName, verbosityFlagShortName, "Logging verbosity level (e.g. -v=debug). Can be one of 'debug', 'info', 'warn', or 'error', or any positive integer corresponding to increasing levels of debug verbosity.")
}

func getDiagnosticsLogCore(name string, encoderConfig zapcore.EncoderConfig) (zapcore.Core, *lumberjack.Logger, error) {
	logLevel, err := GetDiagnosticsLogLevel()
	if err != nil {
		return nil, nil, err
	}

	logFolder, err := EnsureDiagnosticsLogsFolder()
	if err != nil {
		return nil, nil, err
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(logFolder, fmt.Sprintf("%s-%d.log", name, os.Getpid())),
		MaxSize:    diagnosticsLogMaxSizeMB,
		MaxBackups: diagnosticsLogMaxBackups,
		Compress:   true,
	}

	// Format diagnostics log to be machine readable
	logEncoder := zapcore.NewJSONEncoder(encoderConfig)
	return zapcore.NewCore(logEncoder, zapcore.AddSync(logFile), zap.NewAtomicLevelAt(logLevel)), logFile, nil
}

// Returns the folder to write diagnostics logs to.
func EnsureDiagnosticsLogsFolder() (string, error) {
	logFolder, found := os.LookupEnv(RDP_DIAGNOSTICS_LOG_FOLDER)
	if !found {
		logFolder = defaultLogPath
	}

	info, err := os.Stat(logFolder)
	if errors.Is(err, fs.ErrNotExist) {
		if err = os.MkdirAll(logFolder, 0o700); err != nil {
			return "", fmt.Errorf("failed to create the diagnostic log folder '%s': %w", logFolder, err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to verify the existence of the diagnostic log folder '%s': %w", logFolder, err)
	} else if !info.IsDir() {
		return "", fmt.Errorf("'%s' is not a directory and cannot be used as a log folder", logFolder)
	}

	return logFolder, nil
}

func GetDiagnosticsLogLevel() (zapcore.Level, error) {
	diagnosticsLogLevel, found := os.LookupEnv(RDP_DIAGNOSTICS_LOG_LEVEL)
	if !found {
		return zapcore.InvalidLevel, errDiagnosticsLogNotEnabled
	}

	logLevel, err := StringToLevel(diagnosticsLogLevel, zapcore.ErrorLevel)
	if err != nil {
		return zapcore.InvalidLevel, fmt.Errorf("failed to parse log level: %v", diagnosticsLogLevel)
	}

	return logLevel, nil
}
