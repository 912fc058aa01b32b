package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dish-catalog/internal/catalog"
	"github.com/sells-group/dish-catalog/internal/model"
)

// AssetVerdict pairs a listed asset with its classification.
type AssetVerdict struct {
	Asset   model.AssetDescriptor
	Verdict model.ClassificationVerdict
}

// Classify lists the inventory under prefix and classifies every asset
// without changing anything.
func (p *Pipeline) Classify(ctx context.Context, prefix string) ([]AssetVerdict, error) {
	if prefix == "" {
		prefix = p.cfg.Media.Prefix
	}
	assets, _, err := p.inventory(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]AssetVerdict, 0, len(assets))
	for _, a := range assets {
		out = append(out, AssetVerdict{Asset: a, Verdict: p.classifier.Classify(a)})
	}
	return out, nil
}

// PruneOptions selects what Prune deletes. With IDs empty the inventory under
// Prefix is classified and the non-food assets of parsable paths are
// deleted.
type PruneOptions struct {
	Prefix string
	IDs    []string
	DryRun bool
}

// PruneResult reports a prune. Outcome is nil for a dry run.
type PruneResult struct {
	Candidates []string
	Outcome    *model.DeletionOutcome
	Report     *model.RunReport
}

// Prune deletes non-food assets, or the explicit ids of opts.
func (p *Pipeline) Prune(ctx context.Context, opts PruneOptions) (*PruneResult, error) {
	res := &PruneResult{Report: &model.RunReport{}}

	res.Candidates = opts.IDs
	if len(res.Candidates) == 0 {
		prefix := opts.Prefix
		if prefix == "" {
			prefix = p.cfg.Media.Prefix
		}
		assets, _, err := p.inventory(ctx, prefix)
		if err != nil {
			return nil, err
		}
		_, build := catalog.NewBuilder(p.classifier, nil).Build(assets)
		res.Candidates = build.Rejected
		res.Report.Processed = build.Processed
		res.Report.Unparsed = build.Unparsed
		res.Report.NonFood = build.NonFood
	}

	if opts.DryRun {
		p.log.Info("pipeline: dry run, nothing deleted", zap.Int("candidates", len(res.Candidates)))
		return res, nil
	}

	outcome, err := p.deleteAssets(ctx, res.Candidates, res.Report)
	res.Outcome = outcome
	if err != nil {
		return res, eris.Wrap(err, "pipeline: prune cancelled")
	}
	return res, nil
}
