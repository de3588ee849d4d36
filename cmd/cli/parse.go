package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kosarica/price-comparator/internal/ingestion"
	"github.com/kosarica/price-comparator/internal/types"
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a single snapshot file and report row errors",
	Long: `Parse one price or discount snapshot file (CSV or XLSX) the way the
server would and print parsing statistics. The store and date come from the
file name, e.g. lidl_2025-05-01.csv or kaufland_discounts_2025-05-01.xlsx.

Supported encodings: auto (default), utf-8, windows-1250, iso-8859-2`,
	Example: `  price-comparator parse ./data/lidl_2025-05-01.csv
  price-comparator parse ./data/profi_discounts_2025-05-08.csv --encoding windows-1250
  price-comparator parse ./data/kaufland_2025-05-01.xlsx -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	info, err := ingestion.ParseFileName(filePath)
	if err != nil {
		return err
	}
	loader, err := newLoader()
	if err != nil {
		return err
	}

	result, err := loader.LoadFile(cmd.Context(), filePath)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if output == "json" {
		return printJSON(result)
	}
	outputParseTable(info, result)
	return nil
}

func outputParseTable(info ingestion.FileInfo, result *types.ParseResult) {
	fmt.Printf("\nParse Results for %s (%s, %s, %s)\n",
		filepath.Base(info.Path), info.Store, info.Kind, info.Date.Format(types.DateLayout))
	fmt.Println(strings.Repeat("-", 60))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Metric\tValue\n")
	fmt.Fprintf(w, "------\t-----\n")
	fmt.Fprintf(w, "Total Rows\t%d\n", result.TotalRows)
	fmt.Fprintf(w, "Valid Rows\t%d\n", result.ValidRows)
	fmt.Fprintf(w, "Invalid Rows\t%d\n", result.TotalRows-result.ValidRows)
	fmt.Fprintf(w, "Warnings\t%d\n", len(result.Warnings))
	w.Flush()

	if len(result.Errors) > 0 {
		fmt.Printf("\nFirst %d Errors:\n", min(len(result.Errors), 10))
		fmt.Println(strings.Repeat("-", 60))
		for i, err := range result.Errors {
			if i >= 10 {
				break
			}
			rowNum := "-"
			if err.RowNumber != nil {
				rowNum = fmt.Sprintf("%d", *err.RowNumber)
			}
			field := "-"
			if err.Field != nil {
				field = *err.Field
			}
			fmt.Printf("Row %s, Field '%s': %s\n", rowNum, field, err.Message)
		}
		if len(result.Errors) > 10 {
			fmt.Printf("... and %d more errors\n", len(result.Errors)-10)
		}
	}

	switch {
	case len(result.Prices) > 0:
		fmt.Printf("\nSample Rows (first %d):\n", min(len(result.Prices), 5))
		fmt.Println(strings.Repeat("-", 60))
		for i, p := range result.Prices[:min(len(result.Prices), 5)] {
			fmt.Printf("%d. %s - %s (%.2f %s)\n", i+1, p.ProductID, p.ProductName, p.Price, p.Currency)
		}
	case len(result.Discounts) > 0:
		fmt.Printf("\nSample Rows (first %d):\n", min(len(result.Discounts), 5))
		fmt.Println(strings.Repeat("-", 60))
		for i, d := range result.Discounts[:min(len(result.Discounts), 5)] {
			fmt.Printf("%d. %s - %s (-%.0f%% until %s)\n", i+1, d.ProductID, d.ProductName,
				d.PercentageOfDiscount, d.EndingDate.Format(types.DateLayout))
		}
	}
}
