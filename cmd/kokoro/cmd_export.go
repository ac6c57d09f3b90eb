package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kokorolog/internal/export"
)

var (
	exportFormat string
	exportClass  string
	exportLimit  int
	exportOut    string
)

// exportCmd dumps journal rows to a file or stdout
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export journal rows as CSV or JSON",
	Long: `Writes the newest journal rows in the chosen format. Rows carry
classification outputs and signal features; the journal text itself is
never exported.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	n, err := export.NewExporter(st).Export(cmd.Context(), out, format, exportClass, exportLimit)
	if err != nil {
		return err
	}
	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "wrote %d rows to %s\n", n, exportOut)
	}
	return nil
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json or csv")
	exportCmd.Flags().StringVar(&exportClass, "class", "", "Class ID filter (empty: all classes)")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 1000, "Maximum rows")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default stdout)")
}
