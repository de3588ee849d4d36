package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kosarica/price-comparator/internal/optimizer"
	"github.com/kosarica/price-comparator/internal/types"
)

var (
	basketFile string
	unitPrice  bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Split a basket across stores for the lowest total",
	Long: `Read a basket (a JSON list of {"productId", "productName", "quantity"})
and print one shopping list per store, buying every item where its discounted
price is lowest on the reference date. The single-store baseline is printed
for comparison.`,
	Example: `  price-comparator optimize --basket basket.json --date 2025-05-08
  price-comparator optimize --basket basket.json --unit-price -o json`,
	RunE: runOptimize,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringVar(&basketFile, "basket", "", "basket JSON file, - for stdin (required)")
	optimizeCmd.Flags().BoolVar(&unitPrice, "unit-price", false, "also report price per package unit")
	optimizeCmd.MarkFlagRequired("basket")
}

func readBasket(path string) ([]types.BasketItem, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read basket: %w", err)
	}

	var items []types.BasketItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("invalid basket JSON: %w", err)
	}
	return items, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	items, err := readBasket(basketFile)
	if err != nil {
		return err
	}
	snap, err := loadSnapshot(cmd.Context())
	if err != nil {
		return err
	}

	optCfg := optimizer.Defaults()
	if cfg != nil {
		optCfg = &cfg.Optimizer
	}
	req := &optimizer.OptimizeRequest{Items: items, Date: now(), Variant: optimizer.VariantPlain}
	if unitPrice {
		req.Variant = optimizer.VariantUnitPrice
	}

	plan, err := optimizer.NewBasketOptimizer(optCfg, logger).Optimize(cmd.Context(), snap, req)
	if err != nil {
		return err
	}

	if output == "json" {
		return printJSON(plan)
	}
	outputPlanTable(plan)
	return nil
}

func outputPlanTable(plan *optimizer.OptimizedBasketPlan) {
	for _, list := range plan.ShoppingLists {
		fmt.Printf("\n%s\n", list.StoreName)
		fmt.Println(strings.Repeat("-", 60))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "Product\tQty\tTotal\tSavings\tUnit Price\n")
		for _, item := range list.Items {
			unit := "-"
			if item.UnitPriceLabel == optimizer.UnitPriceUnavailable {
				unit = item.UnitPriceLabel
			} else if item.UnitPriceLabel != "" {
				unit = fmt.Sprintf("%.2f %s", item.UnitPrice, item.UnitPriceLabel)
			}
			fmt.Fprintf(w, "%s (%s)\t%d\t%.2f\t%.2f\t%s\n",
				item.ProductName, item.ProductID, item.Quantity, item.TotalPrice, item.Savings, unit)
		}
		fmt.Fprintf(w, "Subtotal\t\t%.2f\t%.2f\t\n", list.TotalCost, list.TotalSavings)
		w.Flush()
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Date\t%s\n", plan.Date)
	fmt.Fprintf(w, "Total Cost\t%.2f\n", plan.TotalCost)
	fmt.Fprintf(w, "Total Savings\t%.2f\n", plan.TotalSavings)
	fmt.Fprintf(w, "Single-Store Baseline\t%.2f\n", plan.OriginalCost)
	fmt.Fprintf(w, "Saved vs Baseline\t%.2f\n", plan.SavingsVsBaseline)
	w.Flush()

	if len(plan.SkippedItems) > 0 {
		fmt.Printf("\nNot found in any store: %s\n", strings.Join(plan.SkippedItems, ", "))
	}
}
