// Package store persists sync runs and the dish catalog.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dish-catalog/internal/model"
)

// ErrNotFound is returned when a run or dish does not exist.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// DishFilter specifies criteria for listing dishes. A zero Limit returns
// every matching dish.
type DishFilter struct {
	Country string `json:"country,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for catalog sync.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, prefix string) (*model.SyncRun, error)
	CompleteRun(ctx context.Context, runID string, report *model.RunReport, runErr error) error
	GetRun(ctx context.Context, runID string) (*model.SyncRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.SyncRun, error)

	// Dishes
	UpsertDishes(ctx context.Context, runID string, dishes []*model.DishRecord) (int64, error)
	DeleteDishes(ctx context.Context, keys []model.DishKey) (int64, error)
	ListDishes(ctx context.Context, filter DishFilter) ([]*model.DishRecord, error)
	GetDish(ctx context.Context, key model.DishKey) (*model.DishRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the store for driver: "sqlite" (dsn is a file path) or
// "postgres" (dsn is a connection string).
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "", DriverSQLite:
		return NewSQLite(dsn)
	case DriverPostgres:
		return NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

// Driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// runState maps a run outcome to its persisted status and error text.
func runState(runErr error) (model.RunStatus, string) {
	if runErr != nil {
		return model.RunStatusFailed, runErr.Error()
	}
	return model.RunStatusComplete, ""
}

func pageLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	return limit
}
