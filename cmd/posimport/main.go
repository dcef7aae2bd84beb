package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/maasanto/pos-import/internal/config"
	"github.com/maasanto/pos-import/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := logger.Setup(cfg.LoggerConfig()); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logging")
	}

	Execute(cfg)
}
