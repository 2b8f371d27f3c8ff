// Package logger owns the process-wide zap logger and the field sets that
// chat code attaches to it.
package logger

import (
	"sync"

	"clinic-assistant/pkg/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "clinic-assistant"

var (
	globalLogger *zap.Logger
	once         sync.Once
)

// Init builds the global logger. Only the first call has any effect.
func Init(cfg config.LoggerConfig) error {
	var err error
	once.Do(func() {
		globalLogger, err = New(cfg)
	})
	return err
}

// Get returns the global logger, falling back to JSON at info level when
// Init was never called.
func Get() *zap.Logger {
	if globalLogger == nil {
		_ = Init(config.LoggerConfig{Level: "info"})
	}
	return globalLogger
}

func Sync() {
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}

// New builds a logger from cfg. Unknown levels become info and unknown
// formats become json.
func New(cfg config.LoggerConfig) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(cfg.Level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(zapLevel)
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.MessageKey = "message"

	return zc.Build(zap.Fields(zap.String("service", serviceName)))
}

// ForChat scopes base to one chat exchange. Guests are tagged as such
// instead of carrying a patient id.
func ForChat(base *zap.Logger, sessionID string, patientID *int64) *zap.Logger {
	if patientID == nil {
		return base.With(zap.String("session_id", sessionID), zap.Bool("guest", true))
	}
	return base.With(zap.String("session_id", sessionID), zap.Int64("patient_id", *patientID))
}
