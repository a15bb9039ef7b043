package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/shopvoice/internal/models"
	"github.com/foxxcyber/shopvoice/internal/services"
)

// SaveSnapshot stores a full copy of the owner's list
func (db *DB) SaveSnapshot(ctx context.Context, snapshot models.ListSnapshot) error {
	items := snapshot.Items
	if items == nil {
		items = []models.ListItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO list_snapshots (owner, items, reason)
		VALUES ($1, $2, $3)
	`, snapshot.Owner, payload, snapshot.Reason)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the items of the owner's most recent snapshot
func (db *DB) LatestSnapshot(ctx context.Context, owner string) ([]models.ListItem, error) {
	var payload []byte
	err := db.Pool.QueryRow(ctx, `
		SELECT items FROM list_snapshots
		WHERE owner = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, owner).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, services.ErrSnapshotNotFound
		}
		return nil, err
	}

	var items []models.ListItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return items, nil
}
