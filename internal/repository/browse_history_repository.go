package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shop1111/flight-booking/internal/model"
)

// BrowseHistoryRepo stores the recently viewed flights of each user.
type BrowseHistoryRepo struct {
	db *sqlx.DB
}

func NewBrowseHistoryRepo(db *sqlx.DB) *BrowseHistoryRepo { return &BrowseHistoryRepo{db: db} }

// IDsForUpdateTx returns the entry ids of a user oldest first and locks
// them, so concurrent views by the same user evict one at a time.
func (r *BrowseHistoryRepo) IDsForUpdateTx(ctx context.Context, tx *sqlx.Tx, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := tx.SelectContext(ctx, &ids,
		`SELECT id FROM browse_history WHERE user_id = ? ORDER BY browse_time, id FOR UPDATE`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read browse history: %w", err)
	}
	return ids, nil
}

// DeleteTx removes the given entries.
func (r *BrowseHistoryRepo) DeleteTx(ctx context.Context, tx *sqlx.Tx, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM browse_history WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("failed to build history eviction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(q), args...); err != nil {
		return fmt.Errorf("failed to evict browse history: %w", err)
	}
	return nil
}

// InsertTx appends an entry. snapshot may be nil.
func (r *BrowseHistoryRepo) InsertTx(ctx context.Context, tx *sqlx.Tx, userID, flightID uint64, snapshot json.RawMessage, at time.Time) error {
	var data any
	if len(snapshot) > 0 {
		data = []byte(snapshot)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO browse_history (user_id, flight_id, flight_data, browse_time) VALUES (?, ?, ?, ?)`,
		userID, flightID, data, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert browse history: %w", err)
	}
	return nil
}

// ListRecent returns up to limit entries newest first, joined with the
// flight as it is now.
func (r *BrowseHistoryRepo) ListRecent(ctx context.Context, userID uint64, limit int) ([]model.BrowseEntry, error) {
	entries := []model.BrowseEntry{}
	err := r.db.SelectContext(ctx, &entries, `SELECT b.id, b.user_id, b.flight_id, b.flight_data, b.browse_time,
		f.flight_number, f.origin, f.destination, f.departure_time
		FROM browse_history b
		LEFT JOIN flights f ON f.id = b.flight_id
		WHERE b.user_id = ?
		ORDER BY b.browse_time DESC, b.id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list browse history: %w", err)
	}
	return entries, nil
}

// DeleteAll clears a user's history and returns how many entries went.
func (r *BrowseHistoryRepo) DeleteAll(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM browse_history WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear browse history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to clear browse history: %w", err)
	}
	return n, nil
}
