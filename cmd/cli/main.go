package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kosarica/price-comparator/config"
	"github.com/kosarica/price-comparator/internal/catalog"
	"github.com/kosarica/price-comparator/internal/ingestion"
	"github.com/kosarica/price-comparator/internal/types"
)

var (
	cfgFile  string
	dataDir  string
	encoding string
	output   string
	refDate  string
	cfg      *config.Config
	logger   *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "price-comparator",
	Short: "Price Comparator CLI - query store price snapshots",
	Long: `A CLI tool for working with store price snapshots. It loads the
<store>_<date>.csv and <store>_discounts_<date>.csv files of a data directory
and answers the same questions as the HTTP API: the cheapest way to buy a
basket, the best discounts, price history and price alerts.`,
	SilenceUsage:      true,
	PersistentPreRunE: persistentPreRun,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
	flags.StringVar(&dataDir, "data-dir", "", "snapshot directory (overrides ingestion.data_dir)")
	flags.StringVar(&encoding, "encoding", "", "CSV encoding: utf-8, windows-1250 or iso-8859-2 (default auto)")
	flags.StringVarP(&output, "output", "o", "table", "Output format: table or json")
	flags.StringVar(&refDate, "date", "", "reference date YYYY-MM-DD (default today)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Flags can supply everything the commands need.
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

// persistentPreRun runs before each command and initializes dependencies
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}
	logger = initLogger()

	if output != "table" && output != "json" {
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", output)
	}
	if refDate != "" {
		if _, err := types.ParseDay(refDate); err != nil {
			return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", refDate)
		}
	}
	return nil
}

// initLogger logs to stderr so JSON output on stdout stays parseable.
func initLogger() *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.WarnLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = parsedLevel
		}
	}

	noColor := false
	if cfg != nil {
		noColor = cfg.Logging.NoColor
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor}).Level(level).With().Timestamp().Logger()
	return &log
}

// now returns the --date reference day or the wall clock.
func now() time.Time {
	if refDate != "" {
		d, _ := types.ParseDay(refDate)
		return d
	}
	return time.Now()
}

func snapshotDir() string {
	if dataDir != "" {
		return dataDir
	}
	if cfg != nil && cfg.Ingestion.DataDir != "" {
		return cfg.Ingestion.DataDir
	}
	return "./data"
}

func newLoader() (*ingestion.Loader, error) {
	name := encoding
	concurrency := 0
	if cfg != nil {
		if name == "" {
			name = cfg.Ingestion.Encoding
		}
		concurrency = cfg.Ingestion.Concurrency
	}
	enc, err := ingestion.ParseEncoding(name)
	if err != nil {
		return nil, err
	}
	return ingestion.NewLoader(enc, concurrency, logger), nil
}

// loadSnapshot loads the data directory into a snapshot.
func loadSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	loader, err := newLoader()
	if err != nil {
		return nil, err
	}
	snap, stats, err := loader.LoadDir(ctx, snapshotDir())
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", snapshotDir(), err)
	}
	logger.Info().
		Int("files", stats.Files).
		Int("prices", stats.Prices).
		Int("discounts", stats.Discounts).
		Int("row_errors", stats.RowErrors).
		Msg("Snapshot loaded")
	return snap, nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
