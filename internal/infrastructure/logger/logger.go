package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration
type Config struct {
	Level       string // debug, info, warn, error
	Format      string // json, console
	Output      string // stdout, stderr, or file path
	TimeFormat  string // Go time layout
	ServiceName string // added to every entry when set
}

const defaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// New creates a new zap logger with the given configuration.
// Entries are also written to every extra core, e.g. an OTLP log bridge.
func New(cfg *Config, extra ...zapcore.Core) (*zap.Logger, error) {
	level := parseLevel(cfg.Level)
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = defaultTimeFormat
	}

	out, err := createWriter(cfg.Output)
	if err != nil {
		return nil, err
	}
	cores := []zapcore.Core{zapcore.NewCore(createEncoder(cfg.Format, timeFormat), out, level)}
	for _, c := range extra {
		if c != nil {
			cores = append(cores, c)
		}
	}

	logger := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if cfg.ServiceName != "" {
		logger = logger.With(zap.String("service", cfg.ServiceName))
	}
	return logger, nil
}

// parseLevel converts a string level to zapcore.Level
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// createEncoder creates the appropriate encoder based on format
func createEncoder(format, timeFormat string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(timeFormat),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}

	return zapcore.NewJSONEncoder(encoderConfig)
}

// createWriter resolves stdout, stderr or an append-only log file
func createWriter(output string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}
	file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log output %q: %w", output, err)
	}
	return zapcore.AddSync(file), nil
}

// MaskEmail keeps the first character of the local part and the domain,
// e.g. "j***@example.com". Strings that are not addresses are fully masked.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 1 {
		if email == "" {
			return ""
		}
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// Email returns a zap field carrying a masked address
func Email(key, email string) zap.Field {
	return zap.String(key, MaskEmail(email))
}
