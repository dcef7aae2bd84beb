package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Parse a file, record a pending batch, and show its reports",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringP("connector", "c", "", "connector code (required)")
	previewCmd.MarkFlagRequired("connector")
}

func runPreview(cmd *cobra.Command, args []string) error {
	code, _ := cmd.Flags().GetString("connector")
	conn, err := resolveConnector(cmd, code)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	svc, _, closeDB, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	preview, err := svc.Preview(data, filepath.Base(args[0]), conn)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REPORT\tDATE\tLINES\tPAYMENTS\tNET\tTAX\tGROSS")
	for _, r := range preview.Reports {
		fmt.Fprintf(w, "Z-%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			r.ReportNumber,
			r.ReportDate.Format("2006-01-02"),
			r.LineCount,
			r.PaymentCount,
			r.TotalNet.StringFixed(2),
			r.TotalTax.StringFixed(2),
			r.TotalGross.StringFixed(2),
		)
	}
	w.Flush()

	fmt.Printf("\nbatch %s: %d report(s), revenue %s, tax %s, payments %s\n",
		preview.BatchID,
		preview.ReportCount,
		preview.TotalRevenue.StringFixed(2),
		preview.TotalTax.StringFixed(2),
		preview.TotalPayments.StringFixed(2),
	)
	return nil
}
