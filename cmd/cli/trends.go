package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kosarica/price-comparator/internal/types"
)

var (
	trendProduct  string
	trendStore    string
	trendCategory string
	trendBrand    string
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Price history of a product, category or brand",
	Example: `  price-comparator trends --product P001
  price-comparator trends --product P001 --store lidl
  price-comparator trends --category lactate -o json`,
	RunE: runTrends,
}

func init() {
	rootCmd.AddCommand(trendsCmd)

	trendsCmd.Flags().StringVar(&trendProduct, "product", "", "product id")
	trendsCmd.Flags().StringVar(&trendStore, "store", "", "limit --product to one store")
	trendsCmd.Flags().StringVar(&trendCategory, "category", "", "product category")
	trendsCmd.Flags().StringVar(&trendBrand, "brand", "", "brand")
	trendsCmd.MarkFlagsOneRequired("product", "category", "brand")
	trendsCmd.MarkFlagsMutuallyExclusive("product", "category", "brand")
}

func runTrends(cmd *cobra.Command, args []string) error {
	if trendStore != "" && trendProduct == "" {
		return fmt.Errorf("--store requires --product")
	}
	snap, err := loadSnapshot(cmd.Context())
	if err != nil {
		return err
	}

	var records []types.PriceRecord
	switch {
	case trendProduct != "" && trendStore != "":
		records = snap.TrendForProductAtStore(trendProduct, trendStore)
	case trendProduct != "":
		records = snap.TrendForProduct(trendProduct)
	case trendCategory != "":
		records = snap.TrendByCategory(trendCategory)
	default:
		records = snap.TrendByBrand(trendBrand)
	}

	if output == "json" {
		return printJSON(records)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Date\tStore\tProduct\tName\tPrice\n")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f %s\n",
			r.Date.Format(types.DateLayout), r.StoreName, r.ProductID, r.ProductName, r.Price, r.Currency)
	}
	return w.Flush()
}
