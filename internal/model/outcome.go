package model

import "strings"

// DeletionError records one failed deletion. For a batch-level failure ID
// holds the batch's ids joined with "," and IDs lists them individually.
type DeletionError struct {
	ID      string   `json:"id"`
	IDs     []string `json:"ids,omitempty"`
	Message string   `json:"message"`
}

// DeletionOutcome accumulates the result of a bulk delete across batches.
// Requested, Deleted and NotFound have set semantics and keep first-seen order.
type DeletionOutcome struct {
	Requested []string        `json:"requested"`
	Deleted   []string        `json:"deleted"`
	NotFound  []string        `json:"not_found"`
	Errors    []DeletionError `json:"errors,omitempty"`

	index map[string]map[string]struct{}
}

// NewDeletionOutcome returns an empty outcome.
func NewDeletionOutcome() *DeletionOutcome {
	return &DeletionOutcome{index: make(map[string]map[string]struct{})}
}

func (o *DeletionOutcome) add(set string, dst *[]string, id string) bool {
	if o.index == nil {
		o.index = make(map[string]map[string]struct{})
	}
	m, ok := o.index[set]
	if !ok {
		m = make(map[string]struct{})
		o.index[set] = m
	}
	if _, dup := m[id]; dup {
		return false
	}
	m[id] = struct{}{}
	*dst = append(*dst, id)
	return true
}

// AddRequested records id as requested. Returns false if already requested.
func (o *DeletionOutcome) AddRequested(id string) bool {
	return o.add("requested", &o.Requested, id)
}

// AddDeleted records id as deleted.
func (o *DeletionOutcome) AddDeleted(id string) {
	o.add("deleted", &o.Deleted, id)
}

// AddNotFound records id as already absent at the remote.
func (o *DeletionOutcome) AddNotFound(id string) {
	o.add("not_found", &o.NotFound, id)
}

// AddError appends an error entry for a single id.
func (o *DeletionOutcome) AddError(id, msg string) {
	o.Errors = append(o.Errors, DeletionError{ID: id, Message: msg})
}

// AddBatchError appends one error entry covering every id of a batch.
func (o *DeletionOutcome) AddBatchError(ids []string, msg string) {
	batch := make([]string, len(ids))
	copy(batch, ids)
	o.Errors = append(o.Errors, DeletionError{ID: strings.Join(ids, ","), IDs: batch, Message: msg})
}

// ErroredIDs returns the ids covered by error entries.
func (o *DeletionOutcome) ErroredIDs() []string {
	var ids []string
	for _, e := range o.Errors {
		if len(e.IDs) > 0 {
			ids = append(ids, e.IDs...)
			continue
		}
		ids = append(ids, e.ID)
	}
	return ids
}

// Settled returns the ids that are gone from the remote: deleted ones first,
// then those already absent.
func (o *DeletionOutcome) Settled() []string {
	out := make([]string, 0, len(o.Deleted)+len(o.NotFound))
	out = append(out, o.Deleted...)
	return append(out, o.NotFound...)
}
