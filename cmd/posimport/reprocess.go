package main

import (
	"os"

	"github.com/spf13/cobra"
)

var reprocessCmd = &cobra.Command{
	Use:   "reprocess <file>",
	Short: "Retry the failed rows of an earlier import batch",
	Args:  cobra.ExactArgs(1),
	RunE:  runReprocess,
}

func init() {
	rootCmd.AddCommand(reprocessCmd)
	reprocessCmd.Flags().StringP("connector", "c", "", "connector code (required)")
	reprocessCmd.Flags().StringP("batch", "b", "", "batch ID to reprocess (required)")
	reprocessCmd.MarkFlagRequired("connector")
	reprocessCmd.MarkFlagRequired("batch")
}

func runReprocess(cmd *cobra.Command, args []string) error {
	code, _ := cmd.Flags().GetString("connector")
	batchID, _ := cmd.Flags().GetString("batch")

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

	batch, err := svc.Reprocess(data, conn, batchID)
	if err != nil {
		return err
	}

	printBatch(batch)
	return nil
}
