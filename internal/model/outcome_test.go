package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeletionOutcome_SetSemantics(t *testing.T) {
	t.Parallel()

	o := NewDeletionOutcome()
	assert.True(t, o.AddRequested("a"))
	assert.False(t, o.AddRequested("a"))
	o.AddDeleted("a")
	o.AddDeleted("a")
	o.AddNotFound("b")

	assert.Equal(t, []string{"a"}, o.Requested)
	assert.Equal(t, []string{"a"}, o.Deleted)
	assert.Equal(t, []string{"b"}, o.NotFound)
}

func TestDeletionOutcome_ErroredIDs(t *testing.T) {
	t.Parallel()

	o := NewDeletionOutcome()
	o.AddBatchError([]string{"x", "y"}, "transport failure")
	o.AddError("z", "unexpected status")

	assert.Equal(t, "x,y", o.Errors[0].ID)
	assert.Equal(t, []string{"x", "y", "z"}, o.ErroredIDs())
}

func TestDeletionOutcome_ZeroValueUsable(t *testing.T) {
	t.Parallel()

	var o DeletionOutcome
	o.AddDeleted("a")
	assert.Equal(t, []string{"a"}, o.Deleted)
}

func TestRunReport_AddError(t *testing.T) {
	t.Parallel()

	var r RunReport
	r.AddError("sheet read failed")
	assert.Equal(t, 1, r.Errored)
	assert.Equal(t, []string{"sheet read failed"}, r.Errors)
}

func TestDeletionOutcome_Settled(t *testing.T) {
	t.Parallel()

	o := NewDeletionOutcome()
	o.AddNotFound("b")
	o.AddDeleted("a")
	o.AddError("c", "unexpected status")

	assert.Equal(t, []string{"a", "b"}, o.Settled())
}
