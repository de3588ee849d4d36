package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kosarica/price-comparator/internal/discounts"
)

var discountLimit int

var discountsCmd = &cobra.Command{
	Use:   "discounts",
	Short: "List discounts active on the reference date",
}

var discountsHighestCmd = &cobra.Command{
	Use:   "highest",
	Short: "Largest active discounts across all stores",
	RunE: runDiscounts(func(r *discounts.Ranking) []discounts.View {
		return r.HighestDiscounts(discountLimit)
	}),
}

var discountsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Discounts starting on the reference date",
	RunE: runDiscounts(func(r *discounts.Ranking) []discounts.View {
		return r.NewlyAdded()
	}),
}

var discountsMaxCmd = &cobra.Command{
	Use:   "max-per-product",
	Short: "Best active discount of each product",
	RunE: runDiscounts(func(r *discounts.Ranking) []discounts.View {
		return r.MaxDiscountPerProduct(discountLimit)
	}),
}

func init() {
	rootCmd.AddCommand(discountsCmd)
	discountsCmd.AddCommand(discountsHighestCmd, discountsNewCmd, discountsMaxCmd)
	discountsCmd.PersistentFlags().IntVar(&discountLimit, "limit", 10, "maximum number of discounts")
}

func runDiscounts(query func(*discounts.Ranking) []discounts.View) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if discountLimit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}
		snap, err := loadSnapshot(cmd.Context())
		if err != nil {
			return err
		}
		views := query(discounts.NewRanking(snap, now))

		if output == "json" {
			return printJSON(views)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "Product\tName\tBrand\tPackage\tDiscount\tFrom\tUntil\n")
		for _, v := range views {
			fmt.Fprintf(w, "%s\t%s\t%s\t%g %s\t%.0f%%\t%s\t%s\n",
				v.ProductID, v.ProductName, v.Brand, v.PackageQuantity, v.PackageUnit,
				v.PercentageOfDiscount, v.StartingDate, v.EndingDate)
		}
		return w.Flush()
	}
}
