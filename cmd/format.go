package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sells-group/dish-catalog/internal/model"
	"github.com/sells-group/dish-catalog/internal/monitoring"
	"github.com/sells-group/dish-catalog/internal/pipeline"
	"github.com/sells-group/dish-catalog/internal/sheet"
	"github.com/sells-group/dish-catalog/pkg/gsheets"
)

// formatReport writes the end-of-run counts to out.
func formatReport(out io.Writer, r *model.RunReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Processed:\t%d\n", r.Processed)
	_, _ = fmt.Fprintf(w, "  Unparsed:\t%d\n", r.Unparsed)
	_, _ = fmt.Fprintf(w, "  Non-food:\t%d\n", r.NonFood)
	_, _ = fmt.Fprintf(w, "  Duplicate assets:\t%d\n", r.DuplicateAssets)
	_, _ = fmt.Fprintf(w, "Dishes:\t%d\n", r.Dishes)
	_, _ = fmt.Fprintf(w, "Sheet rows:\t%d\n", r.SheetRows)
	_, _ = fmt.Fprintf(w, "  Skipped:\t%d\n", r.SheetRowsSkipped)
	_, _ = fmt.Fprintf(w, "Matched:\t%d\n", r.Matched)
	_, _ = fmt.Fprintf(w, "Unmatched:\t%d\n", r.Unmatched)
	_, _ = fmt.Fprintf(w, "Deleted:\t%d\n", r.Deleted)
	_, _ = fmt.Fprintf(w, "Not found:\t%d\n", r.NotFound)
	_, _ = fmt.Fprintf(w, "Removed dishes:\t%d\n", r.RemovedDishes)
	_, _ = fmt.Fprintf(w, "Errored:\t%d\n", r.Errored)
	_ = w.Flush()
	for _, e := range r.Errors {
		_, _ = fmt.Fprintf(out, "  error: %s\n", e)
	}
}

// formatVerdicts writes one line per asset. With onlyRejected, food assets
// are left out.
func formatVerdicts(out io.Writer, verdicts []pipeline.AssetVerdict, onlyRejected bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSIZE\tBYTES\tVERDICT\tREASONS")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t-------\t-------")
	rejected := 0
	for _, v := range verdicts {
		if v.Verdict.IsNonFood {
			rejected++
		} else if onlyRejected {
			continue
		}
		verdict := "food"
		if v.Verdict.IsNonFood {
			verdict = "non-food"
		}
		_, _ = fmt.Fprintf(w, "%s\t%dx%d\t%d\t%s\t%s\n",
			v.Asset.ID,
			v.Asset.Width, v.Asset.Height,
			v.Asset.SizeBytes,
			verdict,
			strings.Join(v.Verdict.Reasons, ","),
		)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "%d assets, %d non-food\n", len(verdicts), rejected)
}

// formatCandidates lists the ids a dry-run prune would delete.
func formatCandidates(out io.Writer, ids []string) {
	for _, id := range ids {
		_, _ = fmt.Fprintln(out, id)
	}
	_, _ = fmt.Fprintf(out, "%d assets would be deleted\n", len(ids))
}

// formatOutcome summarizes a bulk delete.
func formatOutcome(out io.Writer, o *model.DeletionOutcome) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Requested:\t%d\n", len(o.Requested))
	_, _ = fmt.Fprintf(w, "Deleted:\t%d\n", len(o.Deleted))
	_, _ = fmt.Fprintf(w, "Not found:\t%d\n", len(o.NotFound))
	_, _ = fmt.Fprintf(w, "Errors:\t%d\n", len(o.Errors))
	_ = w.Flush()
	for _, e := range o.Errors {
		_, _ = fmt.Fprintf(out, "  %s: %s\n", e.ID, e.Message)
	}
}

// formatFiles writes a table of spreadsheets.
func formatFiles(out io.Writer, files []gsheets.File) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tMODIFIED")
	_, _ = fmt.Fprintln(w, "--\t----\t--------")
	for _, f := range files {
		modified := ""
		if !f.ModifiedTime.IsZero() {
			modified = f.ModifiedTime.Format("2006-01-02 15:04")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", f.ID, f.Name, modified)
	}
	_ = w.Flush()
}

// formatSheetCheck reports parsed rows and every row issue.
func formatSheetCheck(out io.Writer, source string, res *sheet.ParseResult) {
	_, _ = fmt.Fprintf(out, "%s: %d rows, %d skipped\n", source, len(res.Records), res.Skipped)
	for _, issue := range res.Issues {
		_, _ = fmt.Fprintf(out, "  row %d: %s\n", issue.Row, issue.Reason)
	}
}

// formatHealth writes a run health snapshot followed by its alerts.
func formatHealth(out io.Writer, snap *monitoring.MetricsSnapshot, alerts []monitoring.Alert) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Window:\t%dh\n", snap.LookbackHours)
	_, _ = fmt.Fprintf(w, "Runs:\t%d\n", snap.RunsTotal)
	_, _ = fmt.Fprintf(w, "  Complete:\t%d\n", snap.RunsComplete)
	_, _ = fmt.Fprintf(w, "  Failed:\t%d\n", snap.RunsFailed)
	_, _ = fmt.Fprintf(w, "  Running:\t%d (%d stale)\n", snap.RunsRunning, snap.StaleRuns)
	_, _ = fmt.Fprintf(w, "Failure rate:\t%.1f%%\n", snap.FailRate*100)
	_, _ = fmt.Fprintf(w, "Item errors:\t%d\n", snap.ItemErrors)
	last := "never"
	if snap.LastSuccessAt != nil {
		last = snap.LastSuccessAt.Format("2006-01-02 15:04")
	}
	_, _ = fmt.Fprintf(w, "Last success:\t%s\n", last)
	_ = w.Flush()

	if len(alerts) == 0 {
		_, _ = fmt.Fprintln(out, "No alerts.")
		return
	}
	for _, a := range alerts {
		_, _ = fmt.Fprintf(out, "[%s] %s: %s\n", a.Severity, a.Type, a.Message)
	}
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.SyncRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tPREFIX\tSTATUS\tDISHES\tERRORS\tCREATED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t------\t------\t------\t------\t-------\t--------")

	for _, r := range runs {
		dur := r.UpdatedAt.Sub(r.CreatedAt).Round(time.Second).String()

		dishes, errored := "-", "-"
		if r.Report != nil {
			dishes = fmt.Sprint(r.Report.Dishes)
			errored = fmt.Sprint(r.Report.Errored)
		}

		prefix := r.Prefix
		if prefix == "" {
			prefix = "(all)"
		}
		if len(prefix) > 30 {
			prefix = prefix[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			prefix,
			r.Status,
			dishes,
			errored,
			r.CreatedAt.Format("2006-01-02 15:04"),
			dur,
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
