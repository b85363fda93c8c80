package audit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage writes events to the auth_events table.
type PostgresStorage struct {
	db *pgxpool.Pool
}

func NewPostgresStorage(db *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{db: db}
}

const insertEventQuery = `
INSERT INTO auth_events (id, user_id, action, result, error, request_id, ip, user_agent, metadata, created_at)
VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9, $10)`

func (s *PostgresStorage) Store(ctx context.Context, event Event) error {
	return s.StoreBatch(ctx, []Event{event})
}

func (s *PostgresStorage) StoreBatch(ctx context.Context, events []Event) error {
	batch := &pgx.Batch{}
	for _, e := range events {
		metadata, err := json.Marshal(e.Metadata)
		if err != nil {
			return errors.Join(ErrEventValidation, err)
		}
		batch.Queue(insertEventQuery,
			e.ID, e.UserID, e.Action, string(e.Result), e.Error,
			e.RequestID, e.IP, e.UserAgent, metadata, e.CreatedAt,
		)
	}
	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Join(ErrStorageNotAvailable, err)
	}
	return nil
}
