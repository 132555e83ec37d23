package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Fields map[string]interface{}

var (
	once   sync.Once
	logger *zap.Logger
)

func get() *zap.Logger {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
		l, err := cfg.Build(zap.AddCallerSkip(2))
		if err != nil {
			l = zap.NewNop()
		}
		logger = l
	})
	return logger
}

func zapFields(fields Fields) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	get().Info(msg, zapFields(fields)...)
}

// Error logs an error message and includes the error text in the fields.
func Error(msg string, err error, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	get().Error(msg, zapFields(fields)...)
}

// Fatal logs a fatal error and exits the process.
func Fatal(msg string, err error, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	get().Error(msg, zapFields(fields)...)
	_ = get().Sync()
	os.Exit(1)
}
