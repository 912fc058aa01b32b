package model

import "time"

// RunStatus represents the state of a catalog sync run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunReport holds the counts reported at the end of every run.
type RunReport struct {
	Processed        int      `json:"processed"`
	Unparsed         int      `json:"unparsed"`
	NonFood          int      `json:"non_food"`
	DuplicateAssets  int      `json:"duplicate_assets"`
	Dishes           int      `json:"dishes"`
	SheetRows        int      `json:"sheet_rows"`
	SheetRowsSkipped int      `json:"sheet_rows_skipped"`
	Matched          int      `json:"matched"`
	Unmatched        int      `json:"unmatched"`
	Deleted          int      `json:"deleted"`
	NotFound         int      `json:"not_found"`
	RemovedDishes    int      `json:"removed_dishes"`
	Errored          int      `json:"errored"`
	Errors           []string `json:"errors,omitempty"`
}

// AddError records a recovered error message and bumps the errored count.
func (r *RunReport) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Errored++
}

// SyncRun is one persisted execution of the sync pipeline.
type SyncRun struct {
	ID        string     `json:"id"`
	Prefix    string     `json:"prefix"`
	Status    RunStatus  `json:"status"`
	Report    *RunReport `json:"report,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
