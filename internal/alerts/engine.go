package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kosarica/price-comparator/internal/types"
)

var tracer = otel.Tracer("github.com/kosarica/price-comparator/internal/alerts")

// PriceLookup resolves a product's current price: its latest-dated record
// across all stores.
type PriceLookup interface {
	LatestPrice(productKey string) (types.PriceRecord, bool)
}

// CheckResult summarises one Check run.
type CheckResult struct {
	Skipped   bool          `json:"skipped"`   // another check was running
	Evaluated int           `json:"evaluated"` // armed alerts looked at
	Triggered int           `json:"triggered"`
	Products  int           `json:"products"` // distinct products with armed alerts
	Duration  time.Duration `json:"duration"`
}

// Engine runs the alert lifecycle against a repository and a price lookup.
type Engine struct {
	repo    Repository
	prices  PriceLookup
	now     func() time.Time
	metrics *MetricsRecorder
	logger  zerolog.Logger

	checkMu sync.Mutex
}

// NewEngine creates an alert engine. A nil logger disables logging.
func NewEngine(repo Repository, prices PriceLookup, logger *zerolog.Logger) *Engine {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "alert_engine").Logger()
	}
	return &Engine{
		repo:    repo,
		prices:  prices,
		now:     time.Now,
		metrics: NewMetricsRecorder(),
		logger:  l,
	}
}

// WithClock replaces the clock used for createdAt and triggeredAt.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	if now != nil {
		e.now = now
	}
	return e
}

// Create stores a new armed alert.
func (e *Engine) Create(ctx context.Context, userID, productID string, target float64) (PriceAlert, error) {
	if userID == "" {
		return PriceAlert{}, ErrInvalidAlert{Field: "userId", Reason: "is required"}
	}
	if productID == "" {
		return PriceAlert{}, ErrInvalidAlert{Field: "productId", Reason: "is required"}
	}
	if err := validateTarget(target); err != nil {
		return PriceAlert{}, err
	}

	alert := PriceAlert{
		UserID:      userID,
		ProductID:   productID,
		TargetPrice: target,
		Active:      true,
		CreatedAt:   e.now().UTC(),
	}
	if err := e.repo.Save(ctx, &alert); err != nil {
		return PriceAlert{}, fmt.Errorf("failed to save alert: %w", err)
	}

	e.metrics.RecordOperation("create")
	e.logger.Debug().
		Int64("alert_id", alert.ID).
		Str("user_id", userID).
		Str("product_id", productID).
		Float64("target_price", target).
		Msg("Price alert created")

	return alert, nil
}

// Update sets a new target and re-arms the alert whatever its state. The
// current price is not evaluated until the next Check.
func (e *Engine) Update(ctx context.Context, id int64, target float64) (PriceAlert, error) {
	if err := validateTarget(target); err != nil {
		return PriceAlert{}, err
	}
	alert, err := e.repo.Rearm(ctx, id, target)
	if err != nil {
		return PriceAlert{}, err
	}

	e.metrics.RecordOperation("update")
	e.logger.Debug().
		Int64("alert_id", id).
		Float64("target_price", target).
		Msg("Price alert re-armed")

	return alert, nil
}

// Delete removes an alert. Unknown ids are not an error.
func (e *Engine) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := e.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete alert %d: %w", id, err)
	}
	if deleted {
		e.metrics.RecordOperation("delete")
	}
	return deleted, nil
}

// Check triggers every armed alert whose product's current price is at or
// below its target. Triggered alerts are never looked at again, so repeated
// runs without new prices change nothing. A call that overlaps a running
// check returns immediately with Skipped set.
func (e *Engine) Check(ctx context.Context) (CheckResult, error) {
	return e.run(ctx, "alerts.Check", e.check)
}

// CheckProduct runs the same evaluation for the armed alerts of one
// product only. It shares Check's lock, so the two never overlap.
func (e *Engine) CheckProduct(ctx context.Context, productID string) (CheckResult, error) {
	if productID == "" {
		return CheckResult{}, ErrInvalidAlert{Field: "productId", Reason: "is required"}
	}
	return e.run(ctx, "alerts.CheckProduct", func(ctx context.Context) (CheckResult, error) {
		var result CheckResult
		armed, err := e.repo.FindActiveByProduct(ctx, productID)
		if err != nil {
			return result, fmt.Errorf("failed to load active alerts for %s: %w", productID, err)
		}
		result.Evaluated = len(armed)
		if len(armed) > 0 {
			result.Products = 1
		}
		result.Triggered, err = e.trigger(ctx, productID, armed, e.now().UTC())
		return result, err
	})
}

func (e *Engine) run(ctx context.Context, name string, fn func(context.Context) (CheckResult, error)) (CheckResult, error) {
	if !e.checkMu.TryLock() {
		e.metrics.RecordCheck("skipped", 0, 0)
		e.logger.Debug().Str("check", name).Msg("Alert check already running, skipping")
		return CheckResult{Skipped: true}, nil
	}
	defer e.checkMu.Unlock()

	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	startTime := time.Now()
	result, err := fn(ctx)
	result.Duration = time.Since(startTime)

	span.SetAttributes(
		attribute.Int("evaluated", result.Evaluated),
		attribute.Int("triggered", result.Triggered),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.metrics.RecordCheck("failed", result.Duration, result.Triggered)
		return result, err
	}

	e.metrics.RecordCheck("completed", result.Duration, result.Triggered)
	if result.Triggered > 0 {
		e.logger.Info().
			Int("evaluated", result.Evaluated).
			Int("triggered", result.Triggered).
			Dur("duration", result.Duration).
			Msg("Price alerts triggered")
	}
	return result, nil
}

func (e *Engine) check(ctx context.Context) (CheckResult, error) {
	var result CheckResult

	armed, err := e.repo.FindActive(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load active alerts: %w", err)
	}
	result.Evaluated = len(armed)
	e.metrics.SetArmed(len(armed))

	byProduct := make(map[string][]PriceAlert)
	order := make([]string, 0)
	for _, a := range armed {
		if _, ok := byProduct[a.ProductID]; !ok {
			order = append(order, a.ProductID)
		}
		byProduct[a.ProductID] = append(byProduct[a.ProductID], a)
	}
	result.Products = len(order)

	now := e.now().UTC()
	for _, productID := range order {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		n, err := e.trigger(ctx, productID, byProduct[productID], now)
		result.Triggered += n
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

// trigger fires the armed alerts of one product whose target is at or
// above the product's current price, and returns how many changed.
func (e *Engine) trigger(ctx context.Context, productID string, armed []PriceAlert, now time.Time) (int, error) {
	if len(armed) == 0 {
		return 0, nil
	}
	current, ok := e.prices.LatestPrice(productID)
	if !ok {
		return 0, nil
	}

	triggered := 0
	for _, a := range armed {
		if current.Price > a.TargetPrice {
			continue
		}
		changed, err := e.repo.MarkTriggered(ctx, a.ID, current.Price, now)
		if err != nil {
			return triggered, fmt.Errorf("failed to trigger alert %d: %w", a.ID, err)
		}
		if !changed {
			continue
		}
		triggered++
		e.logger.Debug().
			Int64("alert_id", a.ID).
			Str("user_id", a.UserID).
			Str("product_id", productID).
			Str("store", current.StoreName).
			Float64("current_price", current.Price).
			Float64("target_price", a.TargetPrice).
			Msg("Price alert triggered")
	}
	return triggered, nil
}

// AlertsForUser returns all of a user's alerts in any state.
func (e *Engine) AlertsForUser(ctx context.Context, userID string) ([]PriceAlertView, error) {
	alerts, err := e.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts for user %s: %w", userID, err)
	}
	return e.views(alerts, func(PriceAlert) bool { return true }), nil
}

// AllAlerts returns every stored alert in any state.
func (e *Engine) AllAlerts(ctx context.Context) ([]PriceAlertView, error) {
	alerts, err := e.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}
	return e.views(alerts, func(PriceAlert) bool { return true }), nil
}

// TriggeredForUser returns a user's triggered alerts.
func (e *Engine) TriggeredForUser(ctx context.Context, userID string) ([]PriceAlertView, error) {
	alerts, err := e.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts for user %s: %w", userID, err)
	}
	return e.views(alerts, PriceAlert.Triggered), nil
}

func (e *Engine) views(alerts []PriceAlert, keep func(PriceAlert) bool) []PriceAlertView {
	out := make([]PriceAlertView, 0, len(alerts))
	for _, a := range alerts {
		if keep(a) {
			out = append(out, e.view(a))
		}
	}
	return out
}

func (e *Engine) view(a PriceAlert) PriceAlertView {
	v := PriceAlertView{
		ID:          a.ID,
		UserID:      a.UserID,
		ProductID:   a.ProductID,
		TargetPrice: a.TargetPrice,
		Active:      a.Active,
		CreatedAt:   a.CreatedAt,
		TriggeredAt: a.TriggeredAt,
	}
	if current, ok := e.prices.LatestPrice(a.ProductID); ok {
		price := current.Price
		v.ProductName = current.ProductName
		v.CurrentPrice = &price
		v.StoreName = current.StoreName
	}
	return v
}
