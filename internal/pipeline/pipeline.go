// Package pipeline runs catalog sync: inventory, classification, catalog
// build, spreadsheet enrichment, persistence and pruning.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dish-catalog/internal/catalog"
	"github.com/sells-group/dish-catalog/internal/classify"
	"github.com/sells-group/dish-catalog/internal/config"
	"github.com/sells-group/dish-catalog/internal/model"
	"github.com/sells-group/dish-catalog/internal/prune"
	"github.com/sells-group/dish-catalog/internal/resolve"
	"github.com/sells-group/dish-catalog/internal/sheet"
	"github.com/sells-group/dish-catalog/internal/store"
	"github.com/sells-group/dish-catalog/pkg/cloudinary"
)

// Pipeline runs the sync stages strictly in sequence.
type Pipeline struct {
	cfg        *config.Config
	media      cloudinary.Client
	source     sheet.Source
	store      store.Store
	classifier *classify.Classifier
	aliases    resolve.Aliases
	log        *zap.Logger
}

// New creates a Pipeline. source and st may be nil: without a source the
// enrichment stage is skipped, without a store nothing is persisted.
func New(cfg *config.Config, media cloudinary.Client, source sheet.Source, st store.Store) (*Pipeline, error) {
	rules, err := cfg.Classifier.Rules()
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: classifier rules")
	}
	return &Pipeline{
		cfg:        cfg,
		media:      media,
		source:     source,
		store:      st,
		classifier: classify.New(rules),
		aliases:    resolve.NewAliases(cfg.Match.Aliases),
		log:        zap.L().With(zap.String("component", "pipeline")),
	}, nil
}

// RunOptions adjusts a single run. Empty fields fall back to configuration.
type RunOptions struct {
	Prefix     string
	SourceFile string
	DataFile   string
	Prune      bool
	// DryRun builds and reports without writing files, persisting or
	// deleting anything.
	DryRun bool
}

// Result is everything a run produced.
type Result struct {
	RunID    string
	Report   *model.RunReport
	Catalog  *model.Catalog
	Build    *catalog.BuildResult
	Deletion *model.DeletionOutcome
}

// Run executes one sync. Recoverable failures are recorded in the report and
// the run continues; only an inventory failure or cancellation returns an
// error, together with the partial result.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	opts = p.withDefaults(opts)
	log := p.log.With(zap.String("prefix", opts.Prefix), zap.Bool("dry_run", opts.DryRun))
	log.Info("pipeline: starting sync")

	res := &Result{Report: &model.RunReport{}}
	persist := p.store != nil && !opts.DryRun

	if persist {
		run, err := p.store.CreateRun(ctx, opts.Prefix)
		if err != nil {
			log.Warn("pipeline: failed to create run record", zap.Error(err))
			res.Report.AddError(eris.Wrap(err, "pipeline: create run record").Error())
			persist = false
		} else {
			res.RunID = run.ID
		}
	}

	err := p.run(ctx, opts, res, log)

	if persist {
		if cerr := p.store.CompleteRun(context.WithoutCancel(ctx), res.RunID, res.Report, err); cerr != nil {
			log.Warn("pipeline: failed to complete run record", zap.Error(cerr))
		}
	}
	if err != nil {
		log.Error("pipeline: sync failed", zap.Error(err))
		return res, err
	}

	r := res.Report
	log.Info("pipeline: sync complete",
		zap.Int("processed", r.Processed),
		zap.Int("non_food", r.NonFood),
		zap.Int("dishes", r.Dishes),
		zap.Int("matched", r.Matched),
		zap.Int("unmatched", r.Unmatched),
		zap.Int("deleted", r.Deleted),
		zap.Int("removed_dishes", r.RemovedDishes),
		zap.Int("errored", r.Errored),
	)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, opts RunOptions, res *Result, log *zap.Logger) error {
	report := res.Report

	assets, truncated, err := p.inventory(ctx, opts.Prefix)
	if err != nil {
		return err
	}

	cat, build := catalog.NewBuilder(p.classifier, nil).Build(assets)
	res.Catalog, res.Build = cat, build
	report.Processed = build.Processed
	report.Unparsed = build.Unparsed
	report.NonFood = build.NonFood
	report.DuplicateAssets = build.Duplicates
	report.Dishes = cat.Len()

	var known []*model.DishRecord
	if p.store != nil {
		known, err = p.carryForward(ctx, cat)
		if err != nil {
			report.AddError(err.Error())
		}
	}

	if p.source != nil {
		if err := p.enrich(ctx, cat, report); err != nil {
			report.AddError(err.Error())
		}
	}
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "pipeline: sync cancelled")
	}

	if opts.DryRun {
		log.Info("pipeline: dry run, skipping writes",
			zap.Int("dishes", cat.Len()),
			zap.Int("prunable", len(build.Rejected)),
		)
		return nil
	}

	// Dishes are only written under a run record.
	if res.RunID != "" {
		if _, err := p.store.UpsertDishes(ctx, res.RunID, cat.Records()); err != nil {
			report.AddError(eris.Wrap(err, "pipeline: persist dishes").Error())
		} else if p.fullListing(opts.Prefix, truncated, cat) {
			p.removeStale(ctx, known, cat, report, log)
		}
	}
	p.writeArtifacts(opts, cat, report, log)

	if opts.Prune {
		outcome, err := p.deleteAssets(ctx, build.Rejected, report)
		res.Deletion = outcome
		if err != nil {
			return eris.Wrap(err, "pipeline: prune cancelled")
		}
	}
	return nil
}

func (p *Pipeline) withDefaults(opts RunOptions) RunOptions {
	if opts.Prefix == "" {
		opts.Prefix = p.cfg.Media.Prefix
	}
	if opts.SourceFile == "" {
		opts.SourceFile = p.cfg.Catalog.SourceFile
	}
	if opts.DataFile == "" {
		opts.DataFile = p.cfg.Catalog.DataFile
	}
	return opts
}

// carryForward copies previously persisted metadata onto freshly built
// records so that enrichment from earlier runs survives a run without a
// spreadsheet. Images always come from the current inventory. The persisted
// dishes are returned.
func (p *Pipeline) carryForward(ctx context.Context, cat *model.Catalog) ([]*model.DishRecord, error) {
	known, err := p.store.ListDishes(ctx, store.DishFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load persisted dishes")
	}
	for _, prev := range known {
		rec, ok := cat.Get(prev.Key)
		if !ok {
			continue
		}
		rec.City = prev.City
		rec.Latitude = prev.Latitude
		rec.Longitude = prev.Longitude
		rec.Description = prev.Description
	}
	return known, nil
}

// fullListing reports whether the run saw the whole catalog: the configured
// root was listed, the listing was complete and produced dishes. Only then
// may persisted dishes missing from the run be removed.
func (p *Pipeline) fullListing(prefix string, truncated bool, cat *model.Catalog) bool {
	return listingRoot(prefix) == listingRoot(p.cfg.Media.Prefix) && !truncated && cat.Len() > 0
}

// removeStale deletes persisted dishes the current inventory no longer
// contains.
func (p *Pipeline) removeStale(ctx context.Context, known []*model.DishRecord, cat *model.Catalog, report *model.RunReport, log *zap.Logger) {
	var stale []model.DishKey
	for _, prev := range known {
		if _, ok := cat.Get(prev.Key); !ok {
			stale = append(stale, prev.Key)
		}
	}
	if len(stale) == 0 {
		return
	}
	n, err := p.store.DeleteDishes(ctx, stale)
	if err != nil {
		report.AddError(eris.Wrap(err, "pipeline: remove stale dishes").Error())
		return
	}
	report.RemovedDishes = int(n)
	log.Info("pipeline: removed stale dishes", zap.Int("count", int(n)))
}

// enrich reads the spreadsheet and merges matching rows into the catalog.
func (p *Pipeline) enrich(ctx context.Context, cat *model.Catalog, report *model.RunReport) error {
	parsed, err := sheet.Load(ctx, p.source)
	if err != nil {
		return err
	}
	report.SheetRows = len(parsed.Records)
	report.SheetRowsSkipped = parsed.Skipped
	for _, issue := range parsed.Issues {
		p.log.Debug("pipeline: sheet row issue", zap.Int("row", issue.Row), zap.String("reason", issue.Reason))
	}

	ix := resolve.NewIndex(parsed.Records, p.aliases)
	for _, rec := range cat.Records() {
		m, ok := ix.Match(rec.Name, rec.Country)
		if !ok {
			report.Unmatched++
			p.log.Debug("pipeline: no sheet row for dish", zap.String("key", string(rec.Key)))
			continue
		}
		resolve.Merge(rec, m.Record)
		report.Matched++
	}
	return nil
}

// writeArtifacts regenerates the source catalog block and the data file. A
// failure is recorded and does not stop the run.
func (p *Pipeline) writeArtifacts(opts RunOptions, cat *model.Catalog, report *model.RunReport, log *zap.Logger) {
	if opts.SourceFile != "" {
		changed, err := catalog.WriteSourceFile(opts.SourceFile, p.cfg.Catalog.Identifier, cat)
		if err != nil {
			report.AddError(eris.Wrap(err, "pipeline: write source file").Error())
		} else {
			log.Info("pipeline: source file written", zap.String("path", opts.SourceFile), zap.Bool("changed", changed))
		}
	}
	if opts.DataFile != "" {
		if err := catalog.WriteDataFile(opts.DataFile, cat); err != nil {
			report.AddError(eris.Wrap(err, "pipeline: write data file").Error())
		} else {
			log.Info("pipeline: data file written", zap.String("path", opts.DataFile))
		}
	}
}

// deleteAssets removes ids from the media store and folds the outcome into
// report. The returned error is non-nil only on cancellation.
func (p *Pipeline) deleteAssets(ctx context.Context, ids []string, report *model.RunReport) (*model.DeletionOutcome, error) {
	outcome, err := prune.NewCoordinator(p.media).DeleteAll(ctx, ids, p.cfg.Prune.BatchSize, p.cfg.Prune.Delay)
	if outcome != nil {
		report.Deleted += len(outcome.Deleted)
		report.NotFound += len(outcome.NotFound)
		for _, e := range outcome.Errors {
			report.AddError(fmt.Sprintf("delete %s: %s", e.ID, e.Message))
		}
	}
	return outcome, err
}
