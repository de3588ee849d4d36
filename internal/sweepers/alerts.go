package sweepers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kosarica/price-comparator/internal/alerts"
)

// Checker runs one alert evaluation pass.
type Checker interface {
	Check(ctx context.Context) (alerts.CheckResult, error)
}

// AlertSweeper re-evaluates price alerts on a fixed interval and whenever
// Trigger is called. A single goroutine runs every check, so runs never
// overlap; bursts of triggers collapse into one pending run.
type AlertSweeper struct {
	checker  Checker
	logger   *zerolog.Logger
	interval time.Duration
	signal   chan struct{}
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewAlertSweeper creates a new sweeper for price alerts.
func NewAlertSweeper(checker Checker, logger *zerolog.Logger, interval time.Duration) *AlertSweeper {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &AlertSweeper{
		checker:  checker,
		logger:   logger,
		interval: interval,
		signal:   make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
}

// Start runs the sweep loop until ctx is cancelled or Stop is called.
func (s *AlertSweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Msg("Starting alert sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Alert sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Alert sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			s.run(ctx, "schedule")
		case <-s.signal:
			s.run(ctx, "signal")
		}
	}
}

// Trigger requests a check without blocking. If one is already pending
// the call is a no-op.
func (s *AlertSweeper) Trigger() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Stop signals the sweeper to stop. It is safe to call more than once.
func (s *AlertSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *AlertSweeper) run(ctx context.Context, source string) {
	result, err := s.checker.Check(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("source", source).Msg("Failed to check price alerts")
		return
	}
	if result.Skipped {
		s.logger.Debug().Str("source", source).Msg("Alert check skipped, another run in progress")
		return
	}
	s.logger.Debug().
		Str("source", source).
		Int("evaluated", result.Evaluated).
		Int("triggered", result.Triggered).
		Dur("duration", result.Duration).
		Msg("Alert check finished")
}
