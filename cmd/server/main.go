package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/maasanto/pos-import/internal/api"
	"github.com/maasanto/pos-import/internal/config"
	"github.com/maasanto/pos-import/internal/docstore"
	"github.com/maasanto/pos-import/internal/importer"
	"github.com/maasanto/pos-import/internal/logger"
	"github.com/maasanto/pos-import/internal/repository"
)

func main() {
	// .env is optional; the environment wins either way.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := logger.Setup(cfg.LoggerConfig()); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logging")
	}

	log.Info().Str("db_path", cfg.DBPath).Msg("initializing database")
	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init DB")
	}
	defer db.Close()

	store, err := docstore.NewSQLiteStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init invoice store")
	}

	repo := repository.NewImportRepo(db)
	svc := importer.NewService(repo, store)

	connectors, err := config.LoadConnectorDir(cfg.ConnectorDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.ConnectorDir).Msg("failed to load connectors")
	}
	if len(connectors) == 0 {
		log.Warn().Str("dir", cfg.ConnectorDir).Msg("no connectors defined")
	}
	for code := range connectors {
		log.Info().Str("connector", code).Msg("connector loaded")
	}

	router := api.NewRouter(svc, repo, connectors)

	log.Info().Str("port", cfg.Port).Msg("POS import server listening")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
