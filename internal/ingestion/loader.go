package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kosarica/price-comparator/internal/catalog"
	"github.com/kosarica/price-comparator/internal/types"
)

// LoadStats summarises one directory load.
type LoadStats struct {
	Files        int           `json:"files"`
	SkippedFiles int           `json:"skippedFiles"`
	TotalRows    int           `json:"totalRows"`
	ValidRows    int           `json:"validRows"`
	RowErrors    int           `json:"rowErrors"`
	Prices       int           `json:"prices"`
	Discounts    int           `json:"discounts"`
	Duration     time.Duration `json:"duration"`
}

// Loader reads snapshot files into catalog snapshots.
type Loader struct {
	encoding    Encoding
	concurrency int
	now         func() time.Time
	metrics     *MetricsRecorder
	logger      zerolog.Logger
}

// NewLoader creates a loader. An empty encoding means auto-detect; a
// concurrency below 1 uses GOMAXPROCS.
func NewLoader(enc Encoding, concurrency int, logger *zerolog.Logger) *Loader {
	if concurrency < 1 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "loader").Logger()
	}
	return &Loader{
		encoding:    enc,
		concurrency: concurrency,
		now:         time.Now,
		metrics:     NewMetricsRecorder(),
		logger:      l,
	}
}

// LoadFile parses a single snapshot file.
func (l *Loader) LoadFile(ctx context.Context, path string) (*types.ParseResult, error) {
	info, err := ParseFileName(path)
	if err != nil {
		return nil, err
	}
	return l.load(ctx, info)
}

func (l *Loader) load(ctx context.Context, info FileInfo) (*types.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(info.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", info.Path, err)
	}

	var result *types.ParseResult
	switch info.Type {
	case types.FileTypeXLSX:
		result, err = ParseXLSX(content, info)
	default:
		result, err = ParseCSV(content, info, l.encoding)
	}
	if err != nil {
		l.metrics.RecordFile(string(info.Kind), false)
		return nil, err
	}

	l.metrics.RecordFile(string(info.Kind), true)
	l.metrics.RecordRows(string(info.Kind), result.ValidRows, len(result.Errors))
	if len(result.Errors) > 0 {
		l.logger.Warn().
			Str("file", filepath.Base(info.Path)).
			Int("invalid_rows", len(result.Errors)).
			Str("first_error", result.Errors[0].Message).
			Msg("Skipped malformed rows")
	}
	return result, nil
}

// LoadDir parses every recognised snapshot file in dir concurrently and
// builds a snapshot from them. Unrecognised files are skipped; a file that
// cannot be read or parsed fails the whole load.
func (l *Loader) LoadDir(ctx context.Context, dir string) (*catalog.Snapshot, LoadStats, error) {
	startTime := time.Now()
	var stats LoadStats

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read data directory %s: %w", dir, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := ParseFileName(filepath.Join(dir, e.Name()))
		if errors.Is(err, ErrUnrecognizedFile) {
			stats.SkippedFiles++
			l.logger.Debug().Str("file", e.Name()).Msg("Skipping unrecognised file")
			continue
		}
		if err != nil {
			return nil, stats, err
		}
		files = append(files, info)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	results := make([]*types.ParseResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, info := range files {
		g.Go(func() error {
			r, err := l.load(gctx, info)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	var (
		prices    []types.PriceRecord
		discounts []types.DiscountRecord
	)
	for _, r := range results {
		prices = append(prices, r.Prices...)
		discounts = append(discounts, r.Discounts...)
		stats.TotalRows += r.TotalRows
		stats.ValidRows += r.ValidRows
		stats.RowErrors += len(r.Errors)
	}

	snap, err := catalog.NewSnapshot(prices, discounts, l.now())
	if err != nil {
		return nil, stats, err
	}

	stats.Files = len(files)
	stats.Prices = len(prices)
	stats.Discounts = len(discounts)
	stats.Duration = time.Since(startTime)
	l.metrics.RecordLoad(stats.Duration)

	l.logger.Info().
		Str("dir", dir).
		Int("files", stats.Files).
		Int("prices", stats.Prices).
		Int("discounts", stats.Discounts).
		Int("row_errors", stats.RowErrors).
		Dur("duration", stats.Duration).
		Msg("Snapshot loaded")

	return snap, stats, nil
}
