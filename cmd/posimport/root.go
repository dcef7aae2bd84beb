package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maasanto/pos-import/internal/config"
	"github.com/maasanto/pos-import/internal/docstore"
	"github.com/maasanto/pos-import/internal/domain"
	"github.com/maasanto/pos-import/internal/importer"
	"github.com/maasanto/pos-import/internal/repository"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "posimport",
	Short: "Import POS Z-ticket files into sales invoices",
	Long: `posimport parses POS closing reports (Z-tickets), maps their revenue
and payment lines onto accounting entities through a connector definition,
reconciles the generated invoices against the source totals and records the
outcome per report.`,
	SilenceUsage: true,
}

// Execute runs the CLI with the loaded environment configuration.
func Execute(c *config.Config) {
	cfg = c
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("connector-dir", "", "directory holding connector YAML files (default $CONNECTOR_DIR)")
	rootCmd.PersistentFlags().String("db", "", "path to the SQLite database (default $DB_PATH)")
}

// resolveConnector loads the connector directory and picks one by code.
func resolveConnector(cmd *cobra.Command, code string) (*domain.Connector, error) {
	dir, _ := cmd.Flags().GetString("connector-dir")
	if dir == "" {
		dir = cfg.ConnectorDir
	}

	connectors, err := config.LoadConnectorDir(dir)
	if err != nil {
		return nil, err
	}
	conn, ok := connectors[code]
	if !ok {
		return nil, fmt.Errorf("connector %q not found in %s", code, dir)
	}
	return conn, nil
}

// openService wires the database-backed import service. The caller must
// invoke the returned close function.
func openService(cmd *cobra.Command) (*importer.Service, *repository.ImportRepo, func(), error) {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = cfg.DBPath
	}

	db, err := repository.InitDB(dbPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}

	store, err := docstore.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("init invoice store: %w", err)
	}

	repo := repository.NewImportRepo(db)
	return importer.NewService(repo, store), repo, func() { db.Close() }, nil
}
