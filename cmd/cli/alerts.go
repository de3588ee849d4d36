package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kosarica/price-comparator/config"
	"github.com/kosarica/price-comparator/internal/alerts"
	"github.com/kosarica/price-comparator/internal/catalog"
	"github.com/kosarica/price-comparator/internal/database"
)

var (
	alertsUser    string
	alertsProduct string
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Work with price alerts stored in Postgres",
	Long: `Price alert commands operate on the Postgres alert store configured in
database.url; the in-memory store only lives inside the server.`,
}

var alertsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate armed alerts against the current snapshot",
	RunE:  runAlertsCheck,
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List alerts with current prices, all of them or one user's",
	RunE:  runAlertsList,
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsCheckCmd, alertsListCmd)

	alertsCheckCmd.Flags().StringVar(&alertsProduct, "product", "", "only check alerts on this product id")
	alertsListCmd.Flags().StringVar(&alertsUser, "user", "", "only list this user's alerts")
}

// openEngine connects to the alert store and loads the snapshot prices.
func openEngine(cmd *cobra.Command) (*alerts.Engine, func(), error) {
	if cfg == nil || cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("database.url (or DATABASE_URL) is required for alert commands")
	}
	snap, err := loadSnapshot(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Connect(cmd.Context(), poolConfig(cfg.Database))
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(cmd.Context()); err != nil {
		db.Close()
		return nil, nil, err
	}

	engine := alerts.NewEngine(database.NewAlertRepository(db), catalog.New(snap), logger).WithClock(now)
	return engine, db.Close, nil
}

func poolConfig(c config.DatabaseConfig) database.PoolConfig {
	return database.PoolConfig{
		URL:         c.URL,
		MaxConns:    c.MaxConnections,
		MinConns:    c.MinConnections,
		MaxLifetime: c.MaxConnLifetime,
		MaxIdleTime: c.MaxConnIdleTime,
	}
}

func runAlertsCheck(cmd *cobra.Command, args []string) error {
	engine, closeDB, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	var result alerts.CheckResult
	if alertsProduct != "" {
		result, err = engine.CheckProduct(cmd.Context(), alertsProduct)
	} else {
		result, err = engine.Check(cmd.Context())
	}
	if err != nil {
		return err
	}

	if output == "json" {
		return printJSON(result)
	}
	fmt.Printf("Evaluated %d armed alerts over %d products, triggered %d (%s)\n",
		result.Evaluated, result.Products, result.Triggered, result.Duration)
	return nil
}

func runAlertsList(cmd *cobra.Command, args []string) error {
	engine, closeDB, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	var views []alerts.PriceAlertView
	if alertsUser != "" {
		views, err = engine.AlertsForUser(cmd.Context(), alertsUser)
	} else {
		views, err = engine.AllAlerts(cmd.Context())
	}
	if err != nil {
		return err
	}

	if output == "json" {
		return printJSON(views)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "ID\tUser\tProduct\tTarget\tCurrent\tStore\tState\n")
	for _, v := range views {
		current := "-"
		if v.CurrentPrice != nil {
			current = fmt.Sprintf("%.2f", *v.CurrentPrice)
		}
		state := "armed"
		if !v.Active {
			state = "triggered"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\t%s\t%s\n", v.ID, v.UserID, v.ProductID, v.TargetPrice, current, v.StoreName, state)
	}
	return w.Flush()
}
