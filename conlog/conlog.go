// SPDX-License-Identifier: GPL-2.0-or-later

// Package conlog is the process wide logger. It is a no-op until Init is
// called.
package conlog

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger atomic.Pointer[zap.Logger]
)

func init() {
	logger.Store(zap.NewNop())
}

// FileConfig controls the rotating log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init logs to stderr at level, and additionally to file if it is not empty.
func Init(level string, file string) error {
	fc := FileConfig{}
	if file != "" {
		fc = FileConfig{Path: file, MaxSizeMB: 20, MaxBackups: 3, MaxAgeDays: 7}
	}
	return InitWithFileConfig(level, fc, true)
}

func InitWithFileConfig(level string, fc FileConfig, console bool) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	var cores []zapcore.Core
	if console {
		enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			MessageKey:       "msg",
			EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stderr), lvl))
	}
	if fc.Path != "" {
		w := &lumberjack.Logger{
			Filename:   fc.Path,
			MaxSize:    fc.MaxSizeMB,
			MaxBackups: fc.MaxBackups,
			MaxAge:     fc.MaxAgeDays,
		}
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(w), lvl))
	}
	SetLogger(zap.New(zapcore.NewTee(cores...)))
	return nil
}

// SetLogger replaces the logger, tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

func L() *zap.Logger {
	return logger.Load()
}

func Sync() {
	_ = L().Sync()
}

func Debugf(format string, v ...interface{}) {
	L().Sugar().Debugf(format, v...)
}

func Printf(format string, v ...interface{}) {
	L().Sugar().Infof(format, v...)
}

func Warnf(format string, v ...interface{}) {
	L().Sugar().Warnf(format, v...)
}
