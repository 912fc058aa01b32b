package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/dish-catalog/internal/db"
	"github.com/sells-group/dish-catalog/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"insert_run":   `INSERT INTO runs (id, prefix, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"complete_run": `UPDATE runs SET status = $1, report = $2, error = $3, updated_at = $4 WHERE id = $5`,
	"get_run":      `SELECT id, prefix, status, report, error, created_at, updated_at FROM runs WHERE id = $1`,
	"get_dish":     `SELECT key, name, country, city, latitude, longitude, description, images FROM dishes WHERE key = $1`,
}

var dishColumns = []string{
	"key", "name", "country", "city", "latitude", "longitude",
	"description", "images", "run_id", "updated_at",
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	prefix     TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'running',
	report     JSONB,
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS dishes (
	seq         BIGSERIAL,
	key         TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	country     TEXT NOT NULL,
	city        TEXT NOT NULL DEFAULT '',
	latitude    DOUBLE PRECISION,
	longitude   DOUBLE PRECISION,
	description TEXT NOT NULL DEFAULT '',
	images      JSONB NOT NULL DEFAULT '[]'::jsonb,
	run_id      TEXT NOT NULL DEFAULT '',
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_dishes_country ON dishes(lower(country));
CREATE INDEX IF NOT EXISTS idx_dishes_seq ON dishes(seq);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, prefix string) (*model.SyncRun, error) {
	now := time.Now().UTC()
	run := &model.SyncRun{
		ID:        uuid.New().String(),
		Prefix:    prefix,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, prefix, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.Prefix, string(run.Status), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create run")
	}
	return run, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, report *model.RunReport, runErr error) error {
	var reportJSON []byte
	if report != nil {
		b, err := json.Marshal(report)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal report")
		}
		reportJSON = b
	}
	status, errText := runState(runErr)
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, report = $2, error = $3, updated_at = $4 WHERE id = $5`,
		string(status), reportJSON, errText, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: complete run")
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.SyncRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, prefix, status, report, error, created_at, updated_at FROM runs WHERE id = $1`, runID)
	run, err := scanPgRun(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.SyncRun, error) {
	query := `SELECT id, prefix, status, report, error, created_at, updated_at FROM runs`
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` WHERE status = $1`
	}
	args = append(args, pageLimit(filter.Limit), filter.Offset)
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.SyncRun
	for rows.Next() {
		run, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: list runs")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs rows")
}

// UpsertDishes merges dishes by key through db.BulkUpsert.
func (s *PostgresStore) UpsertDishes(ctx context.Context, runID string, dishes []*model.DishRecord) (int64, error) {
	if len(dishes) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	rows := make([][]any, 0, len(dishes))
	for _, d := range dishes {
		images, err := marshalImages(d.Images)
		if err != nil {
			return 0, err
		}
		rows = append(rows, []any{
			string(d.Key), d.Name, d.Country, d.City, d.Latitude, d.Longitude,
			d.Description, images, runID, now,
		})
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "dishes",
		Columns:      dishColumns,
		ConflictKeys: []string{"key"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert dishes")
	}
	return n, nil
}

// DeleteDishes removes the dishes with the given keys.
func (s *PostgresStore) DeleteDishes(ctx context.Context, keys []model.DishKey) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	ks := make([]string, len(keys))
	for i, k := range keys {
		ks[i] = string(k)
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM dishes WHERE key = ANY($1)`, ks)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete dishes")
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) ListDishes(ctx context.Context, filter DishFilter) ([]*model.DishRecord, error) {
	query := `SELECT key, name, country, city, latitude, longitude, description, images FROM dishes`
	var args []any
	if filter.Country != "" {
		args = append(args, filter.Country)
		query += ` WHERE lower(country) = lower($1)`
	}
	query += ` ORDER BY seq`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list dishes")
	}
	defer rows.Close()

	var out []*model.DishRecord
	for rows.Next() {
		d, err := scanPgDish(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: list dishes")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list dishes rows")
}

func (s *PostgresStore) GetDish(ctx context.Context, key model.DishKey) (*model.DishRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT key, name, country, city, latitude, longitude, description, images FROM dishes WHERE key = $1`, string(key))
	d, err := scanPgDish(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get dish %s", key)
	}
	return d, nil
}

func scanPgRun(row pgx.Row) (*model.SyncRun, error) {
	var r model.SyncRun
	var status string
	var reportJSON []byte

	err := row.Scan(&r.ID, &r.Prefix, &status, &reportJSON, &r.Error, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan run")
	}
	r.Status = model.RunStatus(status)
	if len(reportJSON) > 0 {
		r.Report = &model.RunReport{}
		if err := json.Unmarshal(reportJSON, r.Report); err != nil {
			return nil, eris.Wrap(err, "unmarshal report")
		}
	}
	return &r, nil
}

func scanPgDish(row pgx.Row) (*model.DishRecord, error) {
	var d model.DishRecord
	var key string
	var images []byte

	err := row.Scan(&key, &d.Name, &d.Country, &d.City, &d.Latitude, &d.Longitude, &d.Description, &images)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan dish")
	}
	d.Key = model.DishKey(key)
	if len(images) > 0 {
		if err := json.Unmarshal(images, &d.Images); err != nil {
			return nil, eris.Wrap(err, "unmarshal images")
		}
	}
	return &d, nil
}
