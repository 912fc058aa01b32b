package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules_Thresholds(t *testing.T) {
	r := DefaultRules()
	assert.Equal(t, 100, r.MinDimension)
	assert.InDelta(t, 0.9, r.SquareMinRatio, 0.0001)
	assert.InDelta(t, 1.1, r.SquareMaxRatio, 0.0001)
	assert.Equal(t, int64(20000), r.SquareMaxBytes)
	assert.InDelta(t, 0.25, r.MinAspect, 0.0001)
	assert.InDelta(t, 4.0, r.MaxAspect, 0.0001)
	assert.Contains(t, r.Keywords, "logo")
	assert.NoError(t, r.Validate())
}

func TestPreset(t *testing.T) {
	for _, name := range []string{"", "default", "STRICT", "lenient"} {
		r, err := Preset(name)
		require.NoError(t, err, name)
		assert.NoError(t, r.Validate(), name)
	}

	strict, err := Preset(PresetStrict)
	require.NoError(t, err)
	assert.Equal(t, 200, strict.MinDimension)
	assert.Contains(t, strict.Keywords, "clipart")

	_, err = Preset("aggressive")
	assert.Error(t, err)
}

func TestLoadRules_PartialFileKeepsBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
keywords: [Logo, "  stamp ", logo]
min_dimension: 150
`), 0o644))

	r, err := LoadRules(path, DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, []string{"logo", "stamp"}, r.Keywords)
	assert.Equal(t, 150, r.MinDimension)
	assert.InDelta(t, 4.0, r.MaxAspect, 0.0001)
	assert.Equal(t, []string{"ico", "svg"}, r.NonFoodFormats)
}

func TestLoadRules_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRules(filepath.Join(dir, "missing.yaml"), DefaultRules())
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("min_aspect: 5\nmax_aspect: 2\n"), 0o644))
	_, err = LoadRules(bad, DefaultRules())
	assert.Error(t, err)

	garbled := filepath.Join(dir, "garbled.yaml")
	require.NoError(t, os.WriteFile(garbled, []byte("keywords: {"), 0o644))
	_, err = LoadRules(garbled, DefaultRules())
	assert.Error(t, err)
}

func TestWithOverrides(t *testing.T) {
	r := DefaultRules().WithOverrides(Overrides{
		ExtraKeywords: []string{"Mascot"},
		MinDimension:  300,
		MaxAspect:     3,
	})

	assert.Contains(t, r.Keywords, "mascot")
	assert.Equal(t, 300, r.MinDimension)
	assert.InDelta(t, 3.0, r.MaxAspect, 0.0001)
	assert.InDelta(t, 0.25, r.MinAspect, 0.0001)
	assert.NotContains(t, DefaultRules().Keywords, "mascot")
}
