package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dish-catalog/internal/classify"
	"github.com/sells-group/dish-catalog/internal/model"
)

func asset(id string, segments ...string) model.AssetDescriptor {
	return model.AssetDescriptor{
		ID:           id,
		PathSegments: segments,
		Width:        1200,
		Height:       800,
		SizeBytes:    500000,
		Format:       "jpg",
		URL:          "https://cdn.example.com/" + id + ".jpg",
	}
}

func newTestBuilder() *Builder {
	return NewBuilder(classify.New(classify.DefaultRules()), nil)
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		segments []string
		ok       bool
		country  string
		dish     string
	}{
		{[]string{"india", "biryani", "biryani_1.jpg"}, true, "india", "biryani"},
		{[]string{"vietnam", "pho", "pho-2"}, true, "vietnam", "pho"},
		{[]string{"peru", "ceviche", "ceviche.webp", "extra"}, true, "peru", "ceviche"},
		{[]string{"india", "biryani"}, false, "", ""},
		{[]string{"india", "biryani", "biryani"}, false, "", ""},
		{[]string{"india", "biryani", "_1"}, false, "", ""},
		{[]string{"", "biryani", "biryani_1.jpg"}, false, "", ""},
	}
	for _, tt := range tests {
		country, dish, _, ok := ParsePath(tt.segments)
		assert.Equal(t, tt.ok, ok, "%v", tt.segments)
		assert.Equal(t, tt.country, country)
		assert.Equal(t, tt.dish, dish)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Pad Thai", DisplayName("pad_thai"))
	assert.Equal(t, "South Korea", DisplayName("south-korea"))
	assert.Equal(t, "Biryani", DisplayName("BIRYANI"))
	assert.Equal(t, "Pão De Queijo", DisplayName("pão__de  queijo"))
}

func TestBuild_DuplicateAssetYieldsOneImage(t *testing.T) {
	a := asset("india/biryani/biryani_1", "india", "biryani", "biryani_1.jpg")

	cat, res := newTestBuilder().Build([]model.AssetDescriptor{a, a})

	require.Equal(t, 1, cat.Len())
	rec := cat.Records()[0]
	assert.Equal(t, "India", rec.Country)
	assert.Equal(t, "Biryani", rec.Name)
	assert.Equal(t, model.DishKey("biryani-india"), rec.Key)
	assert.Equal(t, []string{a.URL}, rec.Images)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 2, res.Processed)
}

func TestBuild_GroupsInDiscoveryOrder(t *testing.T) {
	assets := []model.AssetDescriptor{
		asset("vn/pho/pho_1", "vietnam", "pho", "pho_1.jpg"),
		asset("in/biryani/biryani_1", "india", "biryani", "biryani_1.jpg"),
		asset("vn/pho/pho_2", "vietnam", "pho", "pho_2.jpg"),
		asset("in/biryani/biryani_2", "india", "biryani", "biryani_2.jpg"),
	}

	cat, _ := newTestBuilder().Build(assets)

	assert.Equal(t, []model.DishKey{"pho-vietnam", "biryani-india"}, cat.Keys())
	pho, ok := cat.Get("pho-vietnam")
	require.True(t, ok)
	assert.Equal(t, []string{assets[0].URL, assets[2].URL}, pho.Images)
}

func TestBuild_SkipsUnparsedAndNonFood(t *testing.T) {
	logo := asset("in/biryani/logo_1", "india", "biryani", "logo_1.png")
	tiny := asset("in/biryani/tiny_1", "india", "biryani", "tiny_1.jpg")
	tiny.Width, tiny.Height, tiny.SizeBytes = 50, 50, 1000
	shallow := asset("stray", "india", "stray.jpg")
	noSeq := asset("in/biryani/biryani", "india", "biryani", "biryani")
	good := asset("in/biryani/biryani_1", "india", "biryani", "biryani_1.jpg")

	cat, res := newTestBuilder().Build([]model.AssetDescriptor{logo, tiny, shallow, noSeq, good, logo})

	assert.Equal(t, 6, res.Processed)
	assert.Equal(t, 2, res.Unparsed)
	assert.Equal(t, 3, res.NonFood)
	assert.Equal(t, []string{logo.ID, tiny.ID}, res.Rejected)
	require.Equal(t, 1, cat.Len())
	assert.Equal(t, []string{good.URL}, cat.Records()[0].Images)
}

func TestBuild_EmptyKeyIsUnparsed(t *testing.T) {
	a := asset("cn/x/x_1", "中国", "麻婆豆腐", "mapo_1.jpg")

	cat, res := newTestBuilder().Build([]model.AssetDescriptor{a})

	assert.Zero(t, cat.Len())
	assert.Equal(t, 1, res.Unparsed)
}

func TestBuild_CustomURLFunc(t *testing.T) {
	b := NewBuilder(classify.New(classify.DefaultRules()), func(a model.AssetDescriptor) string {
		return "https://img/" + a.ID
	})
	cat, _ := b.Build([]model.AssetDescriptor{asset("in/dal/dal_1", "india", "dal", "dal_1.jpg")})

	require.Equal(t, 1, cat.Len())
	assert.Equal(t, []string{"https://img/in/dal/dal_1"}, cat.Records()[0].Images)
}
