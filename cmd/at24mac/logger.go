package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/moffa90/go-at24mac/at24mac"
)

// newLogger builds a console logger on stderr at the given level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	cfg.DisableCaller = lvl > zapcore.DebugLevel
	return cfg.Build()
}

// zapLogger adapts a zap SugaredLogger to at24mac.Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

var _ at24mac.Logger = zapLogger{}

func (l zapLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l zapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l zapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}
