package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartengine/internal/port"
)

const (
	getSlotSQL = `SELECT payload FROM cart_slots WHERE slot_key = $1`

	putSlotSQL = `INSERT INTO cart_slots (slot_key, payload)
VALUES ($1, $2)
ON CONFLICT (slot_key) DO UPDATE
SET payload    = EXCLUDED.payload,
    revision   = cart_slots.revision + 1,
    updated_at = NOW()`

	deleteSlotSQL = `DELETE FROM cart_slots WHERE slot_key = $1`
)

type postgresSlots struct {
	q    querier
	pool *pgxpool.Pool
}

func NewPostgresSlots(pool *pgxpool.Pool) port.SlotStore {
	return &postgresSlots{
		q:    pool,
		pool: pool,
	}
}

// NewPostgresSlotsWithTx writes through a caller-owned transaction.
func NewPostgresSlotsWithTx(tx pgx.Tx) port.SlotStore {
	return &postgresSlots{
		q:    tx,
		pool: nil,
	}
}

func (s *postgresSlots) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	var payload string
	err := s.q.QueryRow(ctx, getSlotSQL, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("q.QueryRow: %w", err)
	}

	return []byte(payload), nil
}

func (s *postgresSlots) Put(ctx context.Context, key string, payload []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	_, err := withTx(ctx, s.pool, s.q, func(q querier) (struct{}, error) {
		if _, err := q.Exec(ctx, putSlotSQL, key, string(payload)); err != nil {
			return struct{}{}, fmt.Errorf("q.Exec: %w", err)
		}
		return struct{}{}, nil
	})

	return err
}

func (s *postgresSlots) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	_, err := withTx(ctx, s.pool, s.q, func(q querier) (int64, error) {
		tag, err := q.Exec(ctx, deleteSlotSQL, key)
		if err != nil {
			return 0, fmt.Errorf("q.Exec: %w", err)
		}
		return tag.RowsAffected(), nil
	})

	return err
}
