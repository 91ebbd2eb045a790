// Copyright 2026 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/wire"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ProviderSet is the Wire provider set for the log package.
var ProviderSet = wire.NewSet(ProvideLogger)

// Conf defines logger configuration.
type Conf struct {
	Output     string `mapstructure:"output"` // stdout | file
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	Level      string `mapstructure:"level"`
	RotateSize int    `mapstructure:"rotateSize"` // MB
	RotateNum  int    `mapstructure:"rotateNum"`
	KeepDays   int    `mapstructure:"keepDays"`
}

// SetDefaults fills missing configuration fields.
func (c *Conf) SetDefaults() {
	if c.Output == "" {
		c.Output = "stdout"
	}
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Path == "" {
		c.Path = "./logs"
	}
	if c.Filename == "" {
		c.Filename = "caseforge.log"
	}
	if c.RotateSize <= 0 {
		c.RotateSize = 100
	}
	if c.RotateNum <= 0 {
		c.RotateNum = 10
	}
	if c.KeepDays <= 0 {
		c.KeepDays = 7
	}
}

// Logger wraps zap.SugaredLogger to satisfy dependency injection usage.
type Logger struct {
	*zap.SugaredLogger
}

var (
	mu     sync.RWMutex
	global = newNop()
)

func newNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// ProvideLogger creates a logger from config and installs it as the global one.
func ProvideLogger(conf *Conf) (*Logger, error) {
	l, err := New(conf)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	global = l
	mu.Unlock()
	return l, nil
}

// New builds a logger without touching the global instance.
func New(conf *Conf) (*Logger, error) {
	if conf == nil {
		conf = &Conf{}
	}
	conf.SetDefaults()

	level, err := zapcore.ParseLevel(strings.ToLower(conf.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var ws zapcore.WriteSyncer
	switch strings.ToLower(conf.Output) {
	case "file":
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(conf.Path, conf.Filename),
			MaxSize:    conf.RotateSize,
			MaxBackups: conf.RotateNum,
			MaxAge:     conf.KeepDays,
			Compress:   true,
		})
	default:
		ws = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, level)
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{SugaredLogger: zl.Sugar()}, nil
}

// Default returns the current global logger.
func Default() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Sync flushes buffered log entries.
func Sync() error {
	return Default().SugaredLogger.Sync()
}

// Named returns a child logger with the given name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.Named(name)}
}

// Package-level helpers delegate to the global logger.

func Debug(args ...any)                       { Default().Debug(args...) }
func Debugw(msg string, keysAndValues ...any) { Default().Debugw(msg, keysAndValues...) }
func Info(args ...any)                        { Default().Info(args...) }
func Infow(msg string, keysAndValues ...any)  { Default().Infow(msg, keysAndValues...) }
func Warn(args ...any)                        { Default().Warn(args...) }
func Warnw(msg string, keysAndValues ...any)  { Default().Warnw(msg, keysAndValues...) }
func Error(args ...any)                       { Default().Error(args...) }
func Errorw(msg string, keysAndValues ...any) { Default().Errorw(msg, keysAndValues...) }
