package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres persists registry records in a single jsonb-valued table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Get(ctx context.Context, name string) (json.RawMessage, error) {
	var value []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM registry_records WHERE name = $1`, name).Scan(&value)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get registry record %q: %w", name, err)
	}
	return json.RawMessage(value), nil
}

func (s *Postgres) Set(ctx context.Context, name string, value json.RawMessage) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO registry_records (name, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		name, []byte(value))
	if err != nil {
		return fmt.Errorf("set registry record %q: %w", name, err)
	}
	return nil
}
