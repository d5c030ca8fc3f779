// Package logging builds the zerolog loggers shared by the prober, the
// dispatcher and the backend app.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/heytom-labs/heytom-healthroute/internal/config"
)

const (
	FieldComponent = "component"
	FieldService   = "service"
	FieldAddress   = "address"
	FieldWorker    = "worker"
)

// ProviderSet 日志Provider集合
var ProviderSet = wire.NewSet(
	ProvideLogger,
)

// ProvideLogger 提供日志实例
func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return New(cfg.Log, os.Stdout)
}

// New creates a logger writing to out. Unknown levels fall back to info.
func New(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	if strings.ToLower(cfg.Format) == "json" {
		zl = zerolog.New(out)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"})
	}
	return zl.Level(level).With().Timestamp().Logger()
}

// Component returns a child logger tagged with a component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str(FieldComponent, name).Logger()
}
