package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maasanto/pos-import/internal/parser"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check that a file matches its connector's expected format",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("connector", "c", "", "connector code (required)")
	validateCmd.MarkFlagRequired("connector")
}

func runValidate(cmd *cobra.Command, args []string) error {
	code, _ := cmd.Flags().GetString("connector")
	conn, err := resolveConnector(cmd, code)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	p, err := parser.New(conn.Parser, conn)
	if err != nil {
		return err
	}
	if valid, message := p.Validate(data); !valid {
		return fmt.Errorf("invalid file: %s", message)
	}

	fmt.Printf("%s is a valid %s file\n", args[0], conn.Parser)
	return nil
}
