package app

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"toolgate/internal/domain"
)

// LoggingConfig configures logging wiring.
type LoggingConfig struct {
	Logger *zap.Logger
	// Level, when set, is adjusted to the configured log level after load.
	Level *zap.AtomicLevel
	// LevelOverride wins over the configured level when non-empty.
	LevelOverride string
}

// Logging bundles the application logger.
type Logging struct {
	Logger *zap.Logger
}

// NewLogging applies the configured level and names the root logger.
func NewLogging(cfg LoggingConfig, gateway domain.GatewayConfig) (Logging, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	levelName := gateway.LogLevel
	if cfg.LevelOverride != "" {
		levelName = cfg.LevelOverride
	}
	if cfg.Level != nil && levelName != "" {
		level, err := ParseLevel(levelName)
		if err != nil {
			return Logging{}, err
		}
		cfg.Level.SetLevel(level)
	}

	return Logging{Logger: logger.Named("toolgate")}, nil
}

// NewLogger returns the logger from a Logging bundle.
func NewLogger(logging Logging) *zap.Logger {
	return logging.Logger
}

// ParseLevel maps a configured level name to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// NewProductionLogger builds the JSON production logger used by the CLI,
// returning the atomic level so it can follow the loaded configuration.
func NewProductionLogger(level string) (*zap.Logger, zap.AtomicLevel, error) {
	parsed, err := ParseLevel(level)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("build logger: %w", err)
	}
	return logger, cfg.Level, nil
}
