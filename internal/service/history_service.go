package service

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/shop1111/flight-booking/internal/apperror"
	"github.com/shop1111/flight-booking/internal/model"
)

// HistoryService keeps the last model.HistoryCap flights each user viewed.
type HistoryService struct {
	d Deps
}

func NewHistoryService(d Deps) *HistoryService { return &HistoryService{d: d} }

// Record appends a view. When the user already has HistoryCap entries the
// oldest ones are evicted in the same transaction, so the cap holds even
// under concurrent views. snapshot is stored verbatim when present.
func (s *HistoryService) Record(ctx context.Context, userID, flightID uint64, snapshot json.RawMessage) error {
	if userID == 0 || flightID == 0 {
		return apperror.ErrInvalidInput.WithMessage("user and flight are required")
	}
	if len(snapshot) > 0 && !json.Valid(snapshot) {
		return apperror.ErrInvalidInput.WithMessage("snapshot is not valid JSON")
	}
	if _, err := s.d.Flights.GetByID(ctx, flightID); err != nil {
		return err
	}
	return s.d.Tx.Run(ctx, func(tx *sqlx.Tx) error {
		ids, err := s.d.History.IDsForUpdateTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if n := len(ids); n >= model.HistoryCap {
			if err := s.d.History.DeleteTx(ctx, tx, ids[:n-model.HistoryCap+1]); err != nil {
				return err
			}
		}
		return s.d.History.InsertTx(ctx, tx, userID, flightID, snapshot, s.d.now())
	})
}

// List returns the user's recent views, newest first.
func (s *HistoryService) List(ctx context.Context, userID uint64) ([]model.BrowseEntry, error) {
	return s.d.History.ListRecent(ctx, userID, model.HistoryCap)
}

// Clear deletes the user's history and reports how many entries it held.
func (s *HistoryService) Clear(ctx context.Context, userID uint64) (int64, error) {
	return s.d.History.DeleteAll(ctx, userID)
}
