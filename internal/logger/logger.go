package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var level = zap.NewAtomicLevelAt(zap.InfoLevel)

// Init replaces the global zap logger. "development" gets a console encoder
// and debug level; every other environment logs JSON at info.
func Init(environment string) error {
	var conf zap.Config
	if environment == "development" {
		conf = zap.NewDevelopmentConfig()
		level.SetLevel(zap.DebugLevel)
	} else {
		conf = zap.NewProductionConfig()
		level.SetLevel(zap.InfoLevel)
	}
	conf.Level = level

	l, err := conf.Build()
	if err != nil {
		return fmt.Errorf("conf.Build -> %w", err)
	}

	zap.ReplaceGlobals(l)

	return nil
}

// SetLevel changes the level of the logger built by Init at runtime.
func SetLevel(text string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(text)); err != nil {
		return fmt.Errorf("invalid log level %q -> %w", text, err)
	}
	level.SetLevel(lvl)

	return nil
}

func Level() zapcore.Level {
	return level.Level()
}
