package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/maasanto/pos-import/internal/domain"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a POS file: one invoice per Z-ticket",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringP("connector", "c", "", "connector code (required)")
	importCmd.MarkFlagRequired("connector")
}

func runImport(cmd *cobra.Command, args []string) error {
	code, _ := cmd.Flags().GetString("connector")
	conn, err := resolveConnector(cmd, code)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	svc, _, closeFn, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	batch, err := svc.Run(data, filepath.Base(args[0]), conn)
	if err != nil {
		return err
	}

	printBatch(batch)
	if batch.Status == domain.BatchError {
		return fmt.Errorf("import finished with status %s", batch.Status)
	}
	return nil
}

func printBatch(batch *domain.ImportBatch) {
	fmt.Printf("Batch %s: %s\n", batch.ID, batch.Status)
	if batch.Log != "" {
		fmt.Println(batch.Log)
	}
}
