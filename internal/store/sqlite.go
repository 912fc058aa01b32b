package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/dish-catalog/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	prefix     TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'running',
	report     TEXT,
	error      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS dishes (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	key         TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL,
	country     TEXT NOT NULL,
	city        TEXT NOT NULL DEFAULT '',
	latitude    REAL,
	longitude   REAL,
	description TEXT NOT NULL DEFAULT '',
	images      TEXT NOT NULL DEFAULT '[]',
	run_id      TEXT NOT NULL DEFAULT '',
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_dishes_country ON dishes(country);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, prefix string) (*model.SyncRun, error) {
	now := time.Now().UTC()
	run := &model.SyncRun{
		ID:        uuid.New().String(),
		Prefix:    prefix,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, prefix, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Prefix, string(run.Status), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: create run")
	}
	return run, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, report *model.RunReport, runErr error) error {
	var reportJSON sql.NullString
	if report != nil {
		b, err := json.Marshal(report)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal report")
		}
		reportJSON = sql.NullString{String: string(b), Valid: true}
	}
	status, errText := runState(runErr)
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, report = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), reportJSON, errText, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: complete run")
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.SyncRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, prefix, status, report, error, created_at, updated_at FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.SyncRun, error) {
	query := `SELECT id, prefix, status, report, error, created_at, updated_at FROM runs`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, pageLimit(filter.Limit), filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs rows")
}

// UpsertDishes inserts or replaces dishes by key in a single transaction.
// Existing rows keep their original position.
func (s *SQLiteStore) UpsertDishes(ctx context.Context, runID string, dishes []*model.DishRecord) (int64, error) {
	if len(dishes) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dishes (key, name, country, city, latitude, longitude, description, images, run_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			name = excluded.name, country = excluded.country, city = excluded.city,
			latitude = excluded.latitude, longitude = excluded.longitude,
			description = excluded.description, images = excluded.images,
			run_id = excluded.run_id, updated_at = excluded.updated_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	var n int64
	for _, d := range dishes {
		images, err := marshalImages(d.Images)
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx,
			string(d.Key), d.Name, d.Country, d.City,
			nullFloat(d.Latitude), nullFloat(d.Longitude),
			d.Description, string(images), runID, now,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert dish %s", d.Key)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return n, nil
}

// DeleteDishes removes the dishes with the given keys. Unknown keys are
// ignored.
func (s *SQLiteStore) DeleteDishes(ctx context.Context, keys []model.DishKey) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin delete")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM dishes WHERE key = ?`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare delete")
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for _, k := range keys {
		res, err := stmt.ExecContext(ctx, string(k))
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: delete dish %s", k)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		n += affected
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit delete")
	}
	return n, nil
}

func (s *SQLiteStore) ListDishes(ctx context.Context, filter DishFilter) ([]*model.DishRecord, error) {
	query := `SELECT key, name, country, city, latitude, longitude, description, images FROM dishes`
	var args []any
	if filter.Country != "" {
		query += ` WHERE lower(country) = ?`
		args = append(args, strings.ToLower(filter.Country))
	}
	query += ` ORDER BY seq`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list dishes")
	}
	defer rows.Close() //nolint:errcheck

	var out []*model.DishRecord
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list dishes rows")
}

func (s *SQLiteStore) GetDish(ctx context.Context, key model.DishKey) (*model.DishRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT key, name, country, city, latitude, longitude, description, images FROM dishes WHERE key = ?`, string(key))
	d, err := scanDish(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get dish %s", key)
	}
	return d, nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.SyncRun, error) {
	var r model.SyncRun
	var status string
	var reportJSON sql.NullString

	err := row.Scan(&r.ID, &r.Prefix, &status, &reportJSON, &r.Error, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan run")
	}
	r.Status = model.RunStatus(status)
	if reportJSON.Valid && reportJSON.String != "" {
		r.Report = &model.RunReport{}
		if err := json.Unmarshal([]byte(reportJSON.String), r.Report); err != nil {
			return nil, eris.Wrap(err, "unmarshal report")
		}
	}
	return &r, nil
}

func scanDish(row scannable) (*model.DishRecord, error) {
	var d model.DishRecord
	var key, images string
	var lat, lng sql.NullFloat64

	err := row.Scan(&key, &d.Name, &d.Country, &d.City, &lat, &lng, &d.Description, &images)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan dish")
	}
	d.Key = model.DishKey(key)
	if lat.Valid {
		d.Latitude = &lat.Float64
	}
	if lng.Valid {
		d.Longitude = &lng.Float64
	}
	if err := json.Unmarshal([]byte(images), &d.Images); err != nil {
		return nil, eris.Wrap(err, "unmarshal images")
	}
	return &d, nil
}

func marshalImages(images []string) ([]byte, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	return b, eris.Wrap(err, "marshal images")
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
