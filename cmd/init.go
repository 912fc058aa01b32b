package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dish-catalog/internal/pipeline"
	"github.com/sells-group/dish-catalog/internal/sheet"
	"github.com/sells-group/dish-catalog/internal/store"
	"github.com/sells-group/dish-catalog/pkg/cloudinary"
	"github.com/sells-group/dish-catalog/pkg/gsheets"
)

// pipelineEnv holds the initialized clients and the pipeline needed by the
// sync, classify and prune commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// envOptions selects the optional parts of the environment.
type envOptions struct {
	withStore  bool
	withSheets bool
	sheetFile  string
}

// initPipeline validates configuration, then sets up the media client, the
// optional store and spreadsheet source, and builds the Pipeline. Callers
// should defer env.Close().
func initPipeline(ctx context.Context, opts envOptions) (*pipelineEnv, error) {
	if err := cfg.ValidateMedia(); err != nil {
		return nil, err
	}

	env := &pipelineEnv{}

	var src sheet.Source
	if opts.withSheets {
		var err error
		if src, err = initSheetSource(ctx, opts.sheetFile); err != nil {
			return nil, err
		}
	}

	if opts.withStore {
		st, err := initStore(ctx)
		if err != nil {
			return nil, err
		}
		env.Store = st
	}

	p, err := pipeline.New(cfg, initMedia(), src, env.Store)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Pipeline = p
	return env, nil
}

func initMedia() cloudinary.Client {
	return cloudinary.NewClient(cfg.Media.CloudName, cfg.Media.APIKey, cfg.Media.APISecret,
		cloudinary.WithBaseURL(cfg.Media.BaseURL),
		cloudinary.WithRetry(cfg.Media.Retry.Policy()),
		cloudinary.WithRateLimit(cfg.Media.RequestsPerSecond),
	)
}

// initStore opens and migrates the configured store.
func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.ValidateStore(); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// sheetsConfigured reports whether any spreadsheet location is set.
func sheetsConfigured(file string) bool {
	return file != "" || cfg.Sheets.File != "" || cfg.Sheets.SpreadsheetID != "" || cfg.Sheets.FolderID != ""
}

// initSheetSource resolves the spreadsheet to enrich from: a local export
// (flag, then config), a spreadsheet id, or the newest spreadsheet in the
// Drive folder. No remote call is made here. Returns nil when nothing is
// configured.
func initSheetSource(ctx context.Context, file string) (sheet.Source, error) {
	if !sheetsConfigured(file) {
		zap.L().Info("no spreadsheet configured, skipping enrichment")
		return nil, nil
	}
	if file == "" {
		file = cfg.Sheets.File
	}
	if file != "" {
		return sheet.FileSource(file, cfg.Sheets.SheetName)
	}

	if err := cfg.ValidateSheets(); err != nil {
		return nil, err
	}
	client, err := initSheetsClient(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Sheets.SpreadsheetID == "" {
		return &sheet.FolderSource{Client: client, FolderID: cfg.Sheets.FolderID, Range: cfg.Sheets.Range}, nil
	}
	return &sheet.APISource{Client: client, SpreadsheetID: cfg.Sheets.SpreadsheetID, Range: cfg.Sheets.Range}, nil
}

func initSheetsClient(ctx context.Context) (gsheets.Client, error) {
	opts := []gsheets.Option{gsheets.WithRetry(cfg.Sheets.Retry.Policy())}
	switch {
	case cfg.Sheets.CredentialsFile != "":
		opts = append(opts, gsheets.WithCredentialsFile(cfg.Sheets.CredentialsFile))
	case cfg.Sheets.APIKey != "":
		opts = append(opts, gsheets.WithAPIKey(cfg.Sheets.APIKey))
	default:
		opts = append(opts, gsheets.WithoutAuthentication())
	}
	if cfg.Sheets.Endpoint != "" {
		opts = append(opts, gsheets.WithEndpoint(cfg.Sheets.Endpoint))
	}
	return gsheets.NewClient(ctx, opts...)
}
