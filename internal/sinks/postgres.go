package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/relabs-tech/weather_station/internal/env"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// Postgres stores each reading as one JSONB document in
// table (device text, uploaded_at timestamptz, doc jsonb).
type Postgres struct {
	db     execer
	insert string
}

// NewPostgres opens a pool for url. table may be schema-qualified.
func NewPostgres(ctx context.Context, url, table string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("postgres: pool: %w", err)
	}
	return newPostgres(pool, table), nil
}

func newPostgres(db execer, table string) *Postgres {
	ident := pgx.Identifier(strings.Split(table, ".")).Sanitize()
	return &Postgres{
		db:     db,
		insert: `INSERT INTO ` + ident + ` (device, uploaded_at, doc) VALUES ($1, $2, $3)`,
	}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Deliver(ctx context.Context, r env.Reading) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("postgres: marshal: %w", err)
	}
	if _, err := p.db.Exec(ctx, p.insert, r.Device, r.At.UTC(), string(doc)); err != nil {
		return fmt.Errorf("postgres: insert: %w", err)
	}
	return nil
}

func (p *Postgres) Close(context.Context) error {
	p.db.Close()
	return nil
}
