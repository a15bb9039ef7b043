package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/shopvoice/internal/models"
	"github.com/foxxcyber/shopvoice/internal/services"
)

// HistoryRepo stores one owner's history events and aggregates in Postgres
type HistoryRepo struct {
	db    *DB
	owner string
}

// History returns the history repository for owner
func (db *DB) History(owner string) services.HistoryRepository {
	return &HistoryRepo{db: db, owner: owner}
}

// RecordEvent appends ev to the event log and folds it into the item's aggregate
func (r *HistoryRepo) RecordEvent(ctx context.Context, ev models.HistoryEvent) error {
	key := services.Canonical(ev.Item)
	if key == "" {
		return nil
	}

	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO history_events (owner, event_type, item, category, quantity, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, r.owner, string(ev.Type), ev.Item, ev.Category, ev.Quantity, ev.At)
		if err != nil {
			return fmt.Errorf("failed to insert history event: %w", err)
		}

		prev, err := scanAggregate(tx.QueryRow(ctx, aggregateSelect+`
			WHERE owner = $1 AND item_key = $2
			FOR UPDATE
		`, r.owner, key))
		if errors.Is(err, pgx.ErrNoRows) {
			prev = nil
		} else if err != nil {
			return fmt.Errorf("failed to load aggregate: %w", err)
		}

		next := services.ApplyEvent(prev, ev)
		_, err = tx.Exec(ctx, `
			INSERT INTO history_aggregates (
				owner, item_key, display_name, category, count_adds, count_bought,
				last_added_at, last_bought_at, accepts, rejects, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
			ON CONFLICT (owner, item_key) DO UPDATE SET
				display_name = EXCLUDED.display_name,
				category = EXCLUDED.category,
				count_adds = EXCLUDED.count_adds,
				count_bought = EXCLUDED.count_bought,
				last_added_at = EXCLUDED.last_added_at,
				last_bought_at = EXCLUDED.last_bought_at,
				accepts = EXCLUDED.accepts,
				rejects = EXCLUDED.rejects,
				updated_at = NOW()
		`, r.owner, key, next.DisplayName, next.Category, next.CountAdds, next.CountBought,
			next.LastAddedAt, next.LastBoughtAt, next.AcceptCount, next.RejectCount)
		if err != nil {
			return fmt.Errorf("failed to save aggregate: %w", err)
		}
		return nil
	})
}

// GetAggregate returns the aggregate for name, or nil when it has no history
func (r *HistoryRepo) GetAggregate(ctx context.Context, name string) (*models.HistoryAggregate, error) {
	agg, err := scanAggregate(r.db.Pool.QueryRow(ctx, aggregateSelect+`
		WHERE owner = $1 AND item_key = $2
	`, r.owner, services.Canonical(name)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// ListAggregates returns every aggregate of the owner keyed by canonical name
func (r *HistoryRepo) ListAggregates(ctx context.Context) (map[string]models.HistoryAggregate, error) {
	rows, err := r.db.Pool.Query(ctx, aggregateSelect+`
		WHERE owner = $1
	`, r.owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]models.HistoryAggregate)
	for rows.Next() {
		var key string
		agg, err := scanAggregateRow(rows, &key)
		if err != nil {
			return nil, err
		}
		out[key] = *agg
	}
	return out, rows.Err()
}

const aggregateSelect = `
	SELECT item_key, display_name, category, count_adds, count_bought,
		last_added_at, last_bought_at, accepts, rejects
	FROM history_aggregates
`

func scanAggregate(row pgx.Row) (*models.HistoryAggregate, error) {
	var key string
	return scanAggregateRow(row, &key)
}

func scanAggregateRow(row pgx.Row, key *string) (*models.HistoryAggregate, error) {
	var agg models.HistoryAggregate
	err := row.Scan(
		key, &agg.DisplayName, &agg.Category, &agg.CountAdds, &agg.CountBought,
		&agg.LastAddedAt, &agg.LastBoughtAt, &agg.AcceptCount, &agg.RejectCount,
	)
	if err != nil {
		return nil, err
	}
	return &agg, nil
}
