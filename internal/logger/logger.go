package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Logger is a structured key/value logger backed by zap.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a logger for the given mode: "prod"/"production", "test" (discards
// output) or anything else for the development console encoder.
func New(mode string) (*Logger, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "test", "nop":
		return Nop(), nil
	case "prod", "production":
		zl, err := zap.NewProductionConfig().Build()
		if err != nil {
			return nil, err
		}
		return &Logger{SugaredLogger: zl.Sugar()}, nil
	default:
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		zl, err := cfg.Build()
		if err != nil {
			return nil, err
		}
		return &Logger{SugaredLogger: zl.Sugar()}, nil
	}
}

// Nop returns a logger that drops everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, keysAndValues...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, keysAndValues...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, keysAndValues...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, keysAndValues...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...)}
}
