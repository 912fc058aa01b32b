package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dish-catalog/internal/catalog"
	"github.com/sells-group/dish-catalog/internal/config"
	"github.com/sells-group/dish-catalog/internal/model"
	"github.com/sells-group/dish-catalog/internal/sheet"
	"github.com/sells-group/dish-catalog/internal/store"
	storemocks "github.com/sells-group/dish-catalog/internal/store/mocks"
	"github.com/sells-group/dish-catalog/pkg/cloudinary"
	cloudinarymocks "github.com/sells-group/dish-catalog/pkg/cloudinary/mocks"
	gsheetsmocks "github.com/sells-group/dish-catalog/pkg/gsheets/mocks"
)

type staticSource struct {
	rows [][]string
	err  error
}

func (s *staticSource) Rows(context.Context) ([][]string, error) { return s.rows, s.err }

func (s *staticSource) Describe() string { return "static" }

func testConfig() *config.Config {
	return &config.Config{
		Media:      config.MediaConfig{Prefix: "dishes/", MaxResults: 500},
		Classifier: config.ClassifierConfig{Preset: "default"},
		Catalog:    config.CatalogConfig{Identifier: "dishImages"},
		Prune:      config.PruneConfig{BatchSize: 100},
	}
}

func photo(id string) cloudinary.Resource {
	return cloudinary.Resource{
		PublicID:  id,
		Format:    "jpg",
		Width:     800,
		Height:    600,
		Bytes:     120000,
		SecureURL: "https://res.example.com/" + id + ".jpg",
	}
}

func inventoryFixture() *cloudinary.ListResponse {
	return &cloudinary.ListResponse{Resources: []cloudinary.Resource{
		photo("dishes/France/Crêpes/crepes_1"),
		photo("dishes/India/Biryani/biryani_1"),
		photo("dishes/India/Biryani/biryani_2"),
		photo("dishes/India/Biryani/biryani_1"),
		{PublicID: "dishes/India/Biryani/logo_1", Format: "png", Width: 64, Height: 64, Bytes: 900},
		photo("dishes/readme"),
	}}
}

func sheetFixture() *staticSource {
	return &staticSource{rows: [][]string{
		{"Dish Name", "Country", "City", "Latitude", "Longitude", "Description", "Image URL"},
		{"Crêpes", "France", "Paris", "48.85", "2.35", "Thin pancakes", "https://ignored"},
		{"Pad Thai", "Thailand", "", "", "", "", ""},
		{"", "Nowhere", "", "", "", "", ""},
	}}
}

const sourceTemplate = "import x from 'y';\n\nconst dishImages = {\n};\n\nexport default dishImages;\n"

func writeSourceTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dishes.js")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestPipeline(t *testing.T, media cloudinary.Client, src *staticSource, st store.Store) *Pipeline {
	t.Helper()
	var p *Pipeline
	var err error
	if src == nil {
		p, err = New(testConfig(), media, nil, st)
	} else {
		p, err = New(testConfig(), media, src, st)
	}
	require.NoError(t, err)
	return p
}

func TestDescriptor(t *testing.T) {
	r := cloudinary.Resource{
		PublicID:  "dishes/India/Biryani/biryani_1",
		Format:    "JPG",
		Width:     640,
		Height:    480,
		Bytes:     5000,
		URL:       "http://res/1.jpg",
		SecureURL: "https://res/1.jpg",
		Tags:      []string{"food"},
		Context:   &cloudinary.ResourceContext{Custom: map[string]string{"alt": "Biryani bowl", "caption": "Hyderabadi"}},
	}
	d := Descriptor("dishes/*", r)
	assert.Equal(t, "dishes/India/Biryani/biryani_1", d.ID)
	assert.Equal(t, []string{"India", "Biryani", "biryani_1.JPG"}, d.PathSegments)
	assert.Equal(t, "jpg", d.Format)
	assert.Equal(t, "Biryani bowl", d.AltText)
	assert.Equal(t, "Hyderabadi", d.CaptionText)
	assert.Equal(t, "https://res/1.jpg", d.URL)
	assert.Equal(t, int64(5000), d.SizeBytes)

	// Falls back to the plain URL and keeps an existing extension.
	d = Descriptor("dishes", cloudinary.Resource{PublicID: "dishes/Peru/Ceviche/ceviche_1.jpg", Format: "jpg", URL: "http://res/2.jpg"})
	assert.Equal(t, []string{"Peru", "Ceviche", "ceviche_1.jpg"}, d.PathSegments)
	assert.Equal(t, "http://res/2.jpg", d.URL)
}

func TestListingRoot(t *testing.T) {
	assert.Equal(t, "", listingRoot(""))
	assert.Equal(t, "", listingRoot("*"))
	assert.Equal(t, "dishes/", listingRoot("dishes/*"))
	assert.Equal(t, "dishes/", listingRoot("dishes"))
	assert.Equal(t, "a/b/", listingRoot(" a/b/ "))
}

func TestRun_FullFlow(t *testing.T) {
	ctx := context.Background()
	media := cloudinarymocks.NewMockClient(t)
	st := storemocks.NewMockStore(t)

	media.On("ListResources", mock.Anything, cloudinary.ListRequest{Prefix: "dishes/", MaxResults: 500}).
		Return(inventoryFixture(), nil)
	media.On("DeleteResources", mock.Anything, []string{"dishes/India/Biryani/logo_1"}).
		Return(&cloudinary.DeleteResponse{Deleted: map[string]string{"dishes/India/Biryani/logo_1": cloudinary.StatusDeleted}}, nil)

	st.On("CreateRun", mock.Anything, "dishes/").Return(&model.SyncRun{ID: "run-1", Status: model.RunStatusRunning}, nil)
	st.On("ListDishes", mock.Anything, store.DishFilter{}).Return([]*model.DishRecord{
		{Key: "biryani-india", Name: "Biryani", Country: "India", City: "Hyderabad", Description: "Layered rice"},
		{Key: "gone-nowhere", Name: "Gone", Country: "Nowhere"},
	}, nil)
	st.On("UpsertDishes", mock.Anything, "run-1", mock.MatchedBy(func(d []*model.DishRecord) bool { return len(d) == 2 })).
		Return(int64(2), nil)
	st.On("DeleteDishes", mock.Anything, []model.DishKey{"gone-nowhere"}).Return(int64(1), nil)
	st.On("CompleteRun", mock.Anything, "run-1", mock.Anything, nil).Return(nil)

	sourcePath := writeSourceTemplate(t, sourceTemplate)
	dataPath := filepath.Join(t.TempDir(), "dishes.json")

	p := newTestPipeline(t, media, sheetFixture(), st)
	res, err := p.Run(ctx, RunOptions{Prune: true, SourceFile: sourcePath, DataFile: dataPath})
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	r := res.Report
	assert.Equal(t, 6, r.Processed)
	assert.Equal(t, 1, r.Unparsed)
	assert.Equal(t, 1, r.NonFood)
	assert.Equal(t, 1, r.DuplicateAssets)
	assert.Equal(t, 2, r.Dishes)
	assert.Equal(t, 2, r.SheetRows)
	assert.Equal(t, 1, r.SheetRowsSkipped)
	assert.Equal(t, 1, r.Matched)
	assert.Equal(t, 1, r.Unmatched)
	assert.Equal(t, 1, r.Deleted)
	assert.Equal(t, 1, r.RemovedDishes)
	assert.Zero(t, r.Errored)

	crepes, ok := res.Catalog.Get("crepes-france")
	require.True(t, ok)
	assert.Equal(t, "Paris", crepes.City)
	require.NotNil(t, crepes.Latitude)
	assert.InDelta(t, 48.85, *crepes.Latitude, 1e-9)
	assert.Equal(t, "Thin pancakes", crepes.Description)

	biryani, ok := res.Catalog.Get("biryani-india")
	require.True(t, ok)
	assert.Equal(t, "Hyderabad", biryani.City)
	assert.Equal(t, "Layered rice", biryani.Description)
	assert.Len(t, biryani.Images, 2)

	src, err := os.ReadFile(sourcePath)
	require.NoError(t, err)
	assert.Contains(t, string(src), `"Crêpes": [`)
	assert.Contains(t, string(src), `"https://res.example.com/dishes/India/Biryani/biryani_2.jpg"`)
	assert.Contains(t, string(src), "export default dishImages;")

	f, err := os.Open(dataPath)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	doc, err := catalog.ReadData(f, catalog.FormatJSON)
	require.NoError(t, err)
	assert.Len(t, doc.Dishes, 2)

	require.NotNil(t, res.Deletion)
	assert.Equal(t, []string{"dishes/India/Biryani/logo_1"}, res.Deletion.Deleted)
}

func TestRun_InventoryFailureFailsRun(t *testing.T) {
	media := cloudinarymocks.NewMockClient(t)
	st := storemocks.NewMockStore(t)

	media.On("ListResources", mock.Anything, mock.Anything).Return(nil, errors.New("unauthorized"))
	st.On("CreateRun", mock.Anything, "dishes/").Return(&model.SyncRun{ID: "run-2"}, nil)
	st.On("CompleteRun", mock.Anything, "run-2", mock.Anything,
		mock.MatchedBy(func(err error) bool { return err != nil })).Return(nil)

	p := newTestPipeline(t, media, nil, st)
	res, err := p.Run(context.Background(), RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list inventory")
	require.NotNil(t, res)
	assert.Nil(t, res.Catalog)
}

func TestRun_RecoverableFailuresAreReported(t *testing.T) {
	media := cloudinarymocks.NewMockClient(t)

	media.On("ListResources", mock.Anything, mock.Anything).Return(inventoryFixture(), nil)
	media.On("DeleteResources", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

	sourcePath := writeSourceTemplate(t, "const other = {\n};\n")
	dataPath := filepath.Join(t.TempDir(), "dishes.yaml")

	p := newTestPipeline(t, media, &staticSource{err: errors.New("sheet unavailable")}, nil)
	res, err := p.Run(context.Background(), RunOptions{Prune: true, SourceFile: sourcePath, DataFile: dataPath})
	require.NoError(t, err)

	r := res.Report
	assert.Equal(t, 3, r.Errored)
	require.Len(t, r.Errors, 3)
	assert.Contains(t, r.Errors[0], "sheet unavailable")
	assert.Contains(t, r.Errors[1], "write source file")
	assert.Contains(t, r.Errors[2], "rate limited")
	assert.Zero(t, r.Matched)
	assert.Zero(t, r.Deleted)

	// The source file is untouched; the data file is still written.
	src, err := os.ReadFile(sourcePath)
	require.NoError(t, err)
	assert.Equal(t, "const other = {\n};\n", string(src))
	assert.FileExists(t, dataPath)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	media := cloudinarymocks.NewMockClient(t)
	media.On("ListResources", mock.Anything, mock.Anything).Return(inventoryFixture(), nil)

	sourcePath := writeSourceTemplate(t, sourceTemplate)

	p := newTestPipeline(t, media, sheetFixture(), nil)
	res, err := p.Run(context.Background(), RunOptions{Prune: true, DryRun: true, SourceFile: sourcePath})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Report.Dishes)
	assert.Equal(t, 1, res.Report.Matched)
	assert.Nil(t, res.Deletion)
	assert.Equal(t, []string{"dishes/India/Biryani/logo_1"}, res.Build.Rejected)

	src, err := os.ReadFile(sourcePath)
	require.NoError(t, err)
	assert.Equal(t, sourceTemplate, string(src))
	media.AssertNotCalled(t, "DeleteResources", mock.Anything, mock.Anything)
}

func TestRun_PrefixOverride(t *testing.T) {
	media := cloudinarymocks.NewMockClient(t)
	media.On("ListResources", mock.Anything, cloudinary.ListRequest{Prefix: "archive/", MaxResults: 500}).
		Return(&cloudinary.ListResponse{}, nil)

	p := newTestPipeline(t, media, nil, nil)
	res, err := p.Run(context.Background(), RunOptions{Prefix: "archive/"})
	require.NoError(t, err)
	assert.Zero(t, res.Report.Processed)
	assert.Zero(t, res.Catalog.Len())
}

func TestRun_FolderDiscoveryFailureIsReported(t *testing.T) {
	media := cloudinarymocks.NewMockClient(t)
	sheets := gsheetsmocks.NewMockClient(t)

	media.On("ListResources", mock.Anything, mock.Anything).Return(inventoryFixture(), nil)
	sheets.On("ListSpreadsheets", mock.Anything, "folder-1").Return(nil, errors.New("drive unavailable"))

	p, err := New(testConfig(), media, &sheet.FolderSource{Client: sheets, FolderID: "folder-1", Range: "A:Z"}, nil)
	require.NoError(t, err)
	res, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Report.Dishes)
	require.Len(t, res.Report.Errors, 1)
	assert.Contains(t, res.Report.Errors[0], "drive unavailable")
}

func persistedFixture() []*model.DishRecord {
	return []*model.DishRecord{
		{Key: "biryani-india", Name: "Biryani", Country: "India"},
		{Key: "gone-nowhere", Name: "Gone", Country: "Nowhere"},
	}
}

func TestRun_NarrowPrefixKeepsOtherDishes(t *testing.T) {
	media := cloudinarymocks.NewMockClient(t)
	st := storemocks.NewMockStore(t)

	media.On("ListResources", mock.Anything, cloudinary.ListRequest{Prefix: "archive/", MaxResults: 500}).
		Return(&cloudinary.ListResponse{Resources: []cloudinary.Resource{photo("archive/India/Biryani/biryani_1")}}, nil)
	st.On("CreateRun", mock.Anything, "archive/").Return(&model.SyncRun{ID: "run-3"}, nil)
	st.On("ListDishes", mock.Anything, store.DishFilter{}).Return(persistedFixture(), nil)
	st.On("UpsertDishes", mock.Anything, "run-3", mock.Anything).Return(int64(1), nil)
	st.On("CompleteRun", mock.Anything, "run-3", mock.Anything, nil).Return(nil)

	p := newTestPipeline(t, media, nil, st)
	res, err := p.Run(context.Background(), RunOptions{Prefix: "archive/"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Report.Dishes)
	assert.Zero(t, res.Report.RemovedDishes)
	st.AssertNotCalled(t, "DeleteDishes", mock.Anything, mock.Anything)
}

func TestRun_TruncatedListingKeepsDishes(t *testing.T) {
	media := cloudinarymocks.NewMockClient(t)
	st := storemocks.NewMockStore(t)

	inv := inventoryFixture()
	inv.NextCursor = "next-page"
	media.On("ListResources", mock.Anything, mock.Anything).Return(inv, nil)
	st.On("CreateRun", mock.Anything, "dishes/").Return(&model.SyncRun{ID: "run-4"}, nil)
	st.On("ListDishes", mock.Anything, store.DishFilter{}).Return(persistedFixture(), nil)
	st.On("UpsertDishes", mock.Anything, "run-4", mock.Anything).Return(int64(2), nil)
	st.On("CompleteRun", mock.Anything, "run-4", mock.Anything, nil).Return(nil)

	p := newTestPipeline(t, media, nil, st)
	res, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Zero(t, res.Report.RemovedDishes)
	st.AssertNotCalled(t, "DeleteDishes", mock.Anything, mock.Anything)
}

func TestRun_StaleRemovalFailureIsReported(t *testing.T) {
	media := cloudinarymocks.NewMockClient(t)
	st := storemocks.NewMockStore(t)

	media.On("ListResources", mock.Anything, mock.Anything).Return(inventoryFixture(), nil)
	st.On("CreateRun", mock.Anything, "dishes/").Return(&model.SyncRun{ID: "run-5"}, nil)
	st.On("ListDishes", mock.Anything, store.DishFilter{}).Return(persistedFixture(), nil)
	st.On("UpsertDishes", mock.Anything, "run-5", mock.Anything).Return(int64(2), nil)
	st.On("DeleteDishes", mock.Anything, []model.DishKey{"gone-nowhere"}).Return(int64(0), errors.New("disk full"))
	st.On("CompleteRun", mock.Anything, "run-5", mock.Anything, nil).Return(nil)

	p := newTestPipeline(t, media, nil, st)
	res, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Zero(t, res.Report.RemovedDishes)
	require.Len(t, res.Report.Errors, 1)
	assert.Contains(t, res.Report.Errors[0], "remove stale dishes")
}

func TestRun_CreateRunFailureSkipsPersistence(t *testing.T) {
	media := cloudinarymocks.NewMockClient(t)
	st := storemocks.NewMockStore(t)

	media.On("ListResources", mock.Anything, mock.Anything).Return(inventoryFixture(), nil)
	st.On("CreateRun", mock.Anything, "dishes/").Return(nil, errors.New("database is locked"))
	st.On("ListDishes", mock.Anything, store.DishFilter{}).Return(persistedFixture(), nil)

	p := newTestPipeline(t, media, nil, st)
	res, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Empty(t, res.RunID)
	assert.Equal(t, 2, res.Report.Dishes)
	require.Len(t, res.Report.Errors, 1)
	assert.Contains(t, res.Report.Errors[0], "create run record")
	st.AssertNotCalled(t, "UpsertDishes", mock.Anything, mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "DeleteDishes", mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "CompleteRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNew_InvalidPreset(t *testing.T) {
	cfg := testConfig()
	cfg.Classifier.Preset = "aggressive"
	_, err := New(cfg, nil, nil, nil)
	require.Error(t, err)
	var cerr *config.ConfigError
	assert.ErrorAs(t, err, &cerr)
}
