package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kosarica/price-comparator/internal/alerts"
)

const alertColumns = `id, user_id, product_id, target_price, active, created_at, triggered_at`

// AlertRepository stores price alerts in Postgres.
type AlertRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRepository creates a repository on the given pool.
func NewAlertRepository(db *DB) *AlertRepository {
	return &AlertRepository{pool: db.Pool()}
}

var _ alerts.Repository = (*AlertRepository)(nil)

func (r *AlertRepository) Save(ctx context.Context, alert *alerts.PriceAlert) error {
	if alert.ID == 0 {
		err := r.pool.QueryRow(ctx, `
			INSERT INTO price_alerts (user_id, product_id, target_price, active, created_at, triggered_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, alert.UserID, alert.ProductID, alert.TargetPrice, alert.Active, alert.CreatedAt, alert.TriggeredAt).Scan(&alert.ID)
		if err != nil {
			return fmt.Errorf("failed to insert alert: %w", err)
		}
		return nil
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE price_alerts
		SET user_id = $2, product_id = $3, target_price = $4, active = $5,
		    created_at = $6, triggered_at = $7
		WHERE id = $1
	`, alert.ID, alert.UserID, alert.ProductID, alert.TargetPrice, alert.Active, alert.CreatedAt, alert.TriggeredAt)
	if err != nil {
		return fmt.Errorf("failed to update alert %d: %w", alert.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return alerts.ErrAlertNotFound
	}
	return nil
}

func (r *AlertRepository) FindByID(ctx context.Context, id int64) (alerts.PriceAlert, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+alertColumns+` FROM price_alerts WHERE id = $1`, id)
	a, err := scanAlert(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return alerts.PriceAlert{}, alerts.ErrAlertNotFound
	}
	if err != nil {
		return alerts.PriceAlert{}, fmt.Errorf("error querying alert %d: %w", id, err)
	}
	return a, nil
}

func (r *AlertRepository) FindByUser(ctx context.Context, userID string) ([]alerts.PriceAlert, error) {
	return r.query(ctx, `SELECT `+alertColumns+` FROM price_alerts WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *AlertRepository) FindActiveByProduct(ctx context.Context, productID string) ([]alerts.PriceAlert, error) {
	return r.query(ctx, `SELECT `+alertColumns+` FROM price_alerts WHERE active AND product_id = $1 ORDER BY id`, productID)
}

func (r *AlertRepository) FindActive(ctx context.Context) ([]alerts.PriceAlert, error) {
	return r.query(ctx, `SELECT `+alertColumns+` FROM price_alerts WHERE active ORDER BY id`)
}

func (r *AlertRepository) ListAll(ctx context.Context) ([]alerts.PriceAlert, error) {
	return r.query(ctx, `SELECT `+alertColumns+` FROM price_alerts ORDER BY id`)
}

func (r *AlertRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM price_alerts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete alert %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkTriggered relies on the WHERE clause so a concurrent re-arm with a
// lower target is never overwritten.
func (r *AlertRepository) MarkTriggered(ctx context.Context, id int64, price float64, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE price_alerts
		SET active = FALSE, triggered_at = $2
		WHERE id = $1 AND active AND target_price >= $3
	`, id, at, price)
	if err != nil {
		return false, fmt.Errorf("failed to trigger alert %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *AlertRepository) Rearm(ctx context.Context, id int64, target float64) (alerts.PriceAlert, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE price_alerts
		SET target_price = $2, active = TRUE, triggered_at = NULL
		WHERE id = $1
		RETURNING `+alertColumns, id, target)
	a, err := scanAlert(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return alerts.PriceAlert{}, alerts.ErrAlertNotFound
	}
	if err != nil {
		return alerts.PriceAlert{}, fmt.Errorf("failed to re-arm alert %d: %w", id, err)
	}
	return a, nil
}

func (r *AlertRepository) query(ctx context.Context, sql string, args ...any) ([]alerts.PriceAlert, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying alerts: %w", err)
	}
	defer rows.Close()

	out := make([]alerts.PriceAlert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning alert: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}
	return out, nil
}

func scanAlert(row pgx.Row) (alerts.PriceAlert, error) {
	var a alerts.PriceAlert
	err := row.Scan(&a.ID, &a.UserID, &a.ProductID, &a.TargetPrice, &a.Active, &a.CreatedAt, &a.TriggeredAt)
	if err != nil {
		return alerts.PriceAlert{}, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	if a.TriggeredAt != nil {
		t := a.TriggeredAt.UTC()
		a.TriggeredAt = &t
	}
	return a, nil
}
