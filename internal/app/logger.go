// Package app provides logger initialization.
package app

import (
	"github.com/rs/zerolog/log"

	"github.com/guttosm/bundle-service/config"
	"github.com/guttosm/bundle-service/internal/logger"
)

// InitializeLogger configures the global JSON logger.
func InitializeLogger(cfg config.LogConfig) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	logger.Init(level, cfg.Pretty)
	log.Debug().Str("level", level).Bool("pretty", cfg.Pretty).Msg("Logger initialized")
}
