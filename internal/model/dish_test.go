package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDishRecord_AddImageDedupesByAssetID(t *testing.T) {
	t.Parallel()

	rec := &DishRecord{Key: "biryani-india", Name: "Biryani", Country: "India"}
	assert.True(t, rec.AddImage("india/biryani/biryani_1", "https://cdn/a.jpg"))
	assert.False(t, rec.AddImage("india/biryani/biryani_1", "https://cdn/a.jpg"))
	assert.True(t, rec.AddImage("india/biryani/biryani_2", "https://cdn/b.jpg"))

	assert.Equal(t, []string{"https://cdn/a.jpg", "https://cdn/b.jpg"}, rec.Images)
}

func TestCatalog_InsertionOrder(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	c.Put(&DishRecord{Key: "pho-vietnam", Name: "Pho"})
	c.Put(&DishRecord{Key: "biryani-india", Name: "Biryani"})
	c.Put(&DishRecord{Key: "arepa-venezuela", Name: "Arepa"})

	assert.Equal(t, []DishKey{"pho-vietnam", "biryani-india", "arepa-venezuela"}, c.Keys())
	assert.Equal(t, 3, c.Len())

	recs := c.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, "Pho", recs[0].Name)
	assert.Equal(t, "Arepa", recs[2].Name)
}

func TestCatalog_PutReplaceKeepsPosition(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	c.Put(&DishRecord{Key: "a", Name: "A"})
	c.Put(&DishRecord{Key: "b", Name: "B"})
	c.Put(&DishRecord{Key: "a", Name: "A2"})

	assert.Equal(t, []DishKey{"a", "b"}, c.Keys())
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A2", got.Name)
}

func TestCatalog_Delete(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	c.Put(&DishRecord{Key: "a"})
	c.Put(&DishRecord{Key: "b"})
	c.Delete("a")
	c.Delete("missing")

	assert.Equal(t, []DishKey{"b"}, c.Keys())
	_, ok := c.Get("a")
	assert.False(t, ok)
}
