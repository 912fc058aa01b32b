package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssetDescriptor_Path(t *testing.T) {
	t.Parallel()

	a := AssetDescriptor{PathSegments: []string{"india", "biryani", "biryani_1.jpg"}}
	assert.Equal(t, "india/biryani/biryani_1.jpg", a.Path())
}

func TestAssetDescriptor_AspectRatio(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.5, AssetDescriptor{Width: 1200, Height: 800}.AspectRatio(), 0.0001)
	assert.Zero(t, AssetDescriptor{Width: 1200}.AspectRatio())
}
