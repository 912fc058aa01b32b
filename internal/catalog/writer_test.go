package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dish-catalog/internal/model"
)

const sourceFixture = `import React from "react";

// generated below
const dishImages = {
  "Old": ["https://old.example.com/x.jpg"],
};

export default function Gallery() {
  return null;
};
`

func testCatalog() *model.Catalog {
	cat := model.NewCatalog()
	cat.Put(&model.DishRecord{
		Key: "biryani-india", Name: "Biryani", Country: "India",
		Images: []string{"https://cdn/b1.jpg", "https://cdn/b2.jpg"},
	})
	cat.Put(&model.DishRecord{
		Key: "pho-vietnam", Name: "Pho", Country: "Vietnam",
		Images: []string{"https://cdn/p1.jpg?a=1&b=2"},
	})
	return cat
}

func TestWriteSource_ReplacesBlockOnly(t *testing.T) {
	out, err := WriteSource(sourceFixture, DefaultIdentifier, testCatalog())
	require.NoError(t, err)

	want := `import React from "react";

// generated below
const dishImages = {
  "Biryani": [
    "https://cdn/b1.jpg",
    "https://cdn/b2.jpg",
  ],
  "Pho": [
    "https://cdn/p1.jpg?a=1&b=2",
  ],
};

export default function Gallery() {
  return null;
};
`
	assert.Equal(t, want, out)
}

func TestWriteSource_Idempotent(t *testing.T) {
	cat := testCatalog()
	once, err := WriteSource(sourceFixture, DefaultIdentifier, cat)
	require.NoError(t, err)
	twice, err := WriteSource(once, DefaultIdentifier, cat)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestWriteSource_MissingStartMarker(t *testing.T) {
	_, err := WriteSource("const other = {\n};\n", DefaultIdentifier, testCatalog())
	require.Error(t, err)

	var me *MarkerError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "const dishImages = {", me.Marker)
	assert.True(t, errors.Is(err, ErrMarkerNotFound))
}

func TestWriteSource_MissingEndMarker(t *testing.T) {
	_, err := WriteSource("const dishImages = {\n  \"x\": [],\n", DefaultIdentifier, testCatalog())

	var me *MarkerError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "};", me.Marker)
}

func TestWriteSource_EscapesEndMarkerInValues(t *testing.T) {
	cat := model.NewCatalog()
	cat.Put(&model.DishRecord{Key: "a-b", Name: "Odd };Name", Country: "B", Images: []string{"https://x/};.jpg"}})

	once, err := WriteSource("const dishImages = {};\n", DefaultIdentifier, cat)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(once, "};"))

	twice, err := WriteSource(once, DefaultIdentifier, cat)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestWriteSource_EmptyCatalog(t *testing.T) {
	out, err := WriteSource("x\nconst dishImages = {\n  \"a\": [],\n};\ny\n", DefaultIdentifier, model.NewCatalog())
	require.NoError(t, err)
	assert.Equal(t, "x\nconst dishImages = {\n};\ny\n", out)
}

func TestWriteSource_DuplicateDisplayNames(t *testing.T) {
	cat := model.NewCatalog()
	cat.Put(&model.DishRecord{Key: "dumplings-china", Name: "Dumplings", Country: "China"})
	cat.Put(&model.DishRecord{Key: "dumplings-poland", Name: "Dumplings", Country: "Poland"})

	out, err := WriteSource("const dishImages = {};", DefaultIdentifier, cat)
	require.NoError(t, err)
	assert.Contains(t, out, `"Dumplings": [],`)
	assert.Contains(t, out, `"Dumplings (Poland)": [],`)
}

func TestWriteSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Gallery.jsx")
	require.NoError(t, os.WriteFile(path, []byte(sourceFixture), 0o600))

	changed, err := WriteSourceFile(path, DefaultIdentifier, testCatalog())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = WriteSourceFile(path, DefaultIdentifier, testCatalog())
	require.NoError(t, err)
	assert.False(t, changed)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestWriteSourceFile_MarkerMissingLeavesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Gallery.jsx")
	require.NoError(t, os.WriteFile(path, []byte("no markers here"), 0o644))

	_, err := WriteSourceFile(path, DefaultIdentifier, testCatalog())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMarkerNotFound))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "no markers here", string(data))
}
