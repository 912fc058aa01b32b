// Package prune deletes assets from the media store in paced, fixed-size
// batches, isolating failures to the batch that caused them.
package prune

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/dish-catalog/internal/model"
	"github.com/sells-group/dish-catalog/pkg/cloudinary"
)

// DefaultBatchSize matches the media store's per-call delete limit.
const DefaultBatchSize = cloudinary.MaxDeleteIDs

// Deleter issues one bulk delete call.
type Deleter interface {
	DeleteResources(ctx context.Context, ids []string) (*cloudinary.DeleteResponse, error)
}

// Coordinator drives a bulk delete.
type Coordinator struct {
	deleter Deleter
	log     *zap.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(d Deleter) *Coordinator {
	return &Coordinator{
		deleter: d,
		log:     zap.L().With(zap.String("component", "prune")),
	}
}

// Batches splits ids into contiguous chunks of at most size.
func Batches(ids []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	out := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}

// DeleteAll deletes ids in batches of batchSize (DefaultBatchSize when not
// positive), pausing delay after each batch but the last, however long the
// batch took. Duplicate ids are requested
// once. Every batch is attempted: a failed call becomes one error entry
// covering the batch. Statuses other than deleted or not_found become
// per-id error entries.
//
// If ctx is cancelled the batches not yet sent are recorded as errors and
// the context error is returned with the partial outcome.
func (c *Coordinator) DeleteAll(ctx context.Context, ids []string, batchSize int, delay time.Duration) (*model.DeletionOutcome, error) {
	out := model.NewDeletionOutcome()
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && out.AddRequested(id) {
			unique = append(unique, id)
		}
	}

	batches := Batches(unique, batchSize)

	c.log.Info("deleting assets",
		zap.Int("requested", len(unique)),
		zap.Int("batches", len(batches)),
		zap.Duration("delay", delay),
	)

	for i, batch := range batches {
		if err := pause(ctx, i, delay); err != nil {
			for _, rest := range batches[i:] {
				out.AddBatchError(rest, "not attempted: "+err.Error())
			}
			c.log.Warn("delete cancelled", zap.Int("remaining_batches", len(batches)-i), zap.Error(err))
			return out, err
		}
		c.deleteBatch(ctx, i, batch, out)
	}

	c.log.Info("delete complete",
		zap.Int("deleted", len(out.Deleted)),
		zap.Int("not_found", len(out.NotFound)),
		zap.Int("errors", len(out.Errors)),
	)
	return out, nil
}

// pause waits delay before every batch after the first. It returns early
// only when ctx is done.
func pause(ctx context.Context, batch int, delay time.Duration) error {
	if batch == 0 || delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Coordinator) deleteBatch(ctx context.Context, n int, batch []string, out *model.DeletionOutcome) {
	resp, err := c.deleter.DeleteResources(ctx, batch)
	if err != nil {
		c.log.Warn("delete batch failed", zap.Int("batch", n), zap.Int("size", len(batch)), zap.Error(err))
		out.AddBatchError(batch, err.Error())
		return
	}

	for _, id := range batch {
		status, ok := resp.Status(id)
		switch {
		case !ok:
			out.AddError(id, "no status reported")
		case status == cloudinary.StatusDeleted:
			out.AddDeleted(id)
		case status == cloudinary.StatusNotFound:
			out.AddNotFound(id)
		default:
			out.AddError(id, fmt.Sprintf("unexpected status %q", status))
		}
	}
}
