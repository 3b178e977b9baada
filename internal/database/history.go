package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// HistoryRecord is one stored prediction.
type HistoryRecord struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	TextPreview string
	TextLen     int
	FinalLabel  string
	LogRegAI    *float64
	SVMAI       *float64
	NBAI        *float64
}

// CreateHistoryParams contains parameters for recording a prediction.
type CreateHistoryParams struct {
	TextPreview string
	TextLen     int
	FinalLabel  string
	LogRegAI    *float64
	SVMAI       *float64
	NBAI        *float64
}

// historyColumns is the standard column list for history queries.
const historyColumns = `id, created_at, text_preview, text_len, final_label, logreg_ai, svm_ai, nb_ai`

func scanHistory(row pgx.Row) (*HistoryRecord, error) {
	var h HistoryRecord
	err := row.Scan(&h.ID, &h.CreatedAt, &h.TextPreview, &h.TextLen, &h.FinalLabel, &h.LogRegAI, &h.SVMAI, &h.NBAI)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// CreateHistory stores a prediction and returns the stored row.
func (db *DB) CreateHistory(ctx context.Context, params CreateHistoryParams) (*HistoryRecord, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO history (text_preview, text_len, final_label, logreg_ai, svm_ai, nb_ai)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+historyColumns,
		params.TextPreview, params.TextLen, params.FinalLabel, params.LogRegAI, params.SVMAI, params.NBAI,
	)
	return scanHistory(row)
}

// ListHistory returns at most limit records, newest first.
func (db *DB) ListHistory(ctx context.Context, limit int) ([]HistoryRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+historyColumns+` FROM history ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []HistoryRecord{}
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *h)
	}
	return records, rows.Err()
}

// ClearHistory deletes every record and reports how many were removed.
func (db *DB) ClearHistory(ctx context.Context) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM history`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
