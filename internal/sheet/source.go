package sheet

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dish-catalog/internal/fetcher"
	"github.com/sells-group/dish-catalog/pkg/gsheets"
)

// Source yields raw spreadsheet rows, header first.
type Source interface {
	Rows(ctx context.Context) ([][]string, error)
	// Describe names the source for logs and reports.
	Describe() string
}

// APISource reads a range of a Google spreadsheet.
type APISource struct {
	Client        gsheets.Client
	SpreadsheetID string
	Range         string
}

func (s *APISource) Rows(ctx context.Context) ([][]string, error) {
	return s.Client.ReadRows(ctx, s.SpreadsheetID, s.Range)
}

func (s *APISource) Describe() string {
	return "sheets:" + s.SpreadsheetID + "/" + s.Range
}

// FolderSource reads the most recently modified spreadsheet in a Drive
// folder. The folder is listed on every read, so a listing failure surfaces
// from Rows like any other read error.
type FolderSource struct {
	Client   gsheets.Client
	FolderID string
	Range    string
}

func (s *FolderSource) Rows(ctx context.Context) ([][]string, error) {
	files, err := s.Client.ListSpreadsheets(ctx, s.FolderID)
	if err != nil {
		return nil, eris.Wrap(err, "list spreadsheets")
	}
	if len(files) == 0 {
		return nil, eris.Errorf("no spreadsheets in folder %s", s.FolderID)
	}
	SortByModified(files)
	zap.L().Info("sheet: using latest spreadsheet in folder",
		zap.String("id", files[0].ID),
		zap.String("name", files[0].Name),
	)
	return s.Client.ReadRows(ctx, files[0].ID, s.Range)
}

func (s *FolderSource) Describe() string {
	return "folder:" + s.FolderID + "/" + s.Range
}

// SortByModified orders files newest first, ties broken by name.
func SortByModified(files []gsheets.File) {
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModifiedTime.Equal(files[j].ModifiedTime) {
			return files[i].ModifiedTime.After(files[j].ModifiedTime)
		}
		return files[i].Name < files[j].Name
	})
}

// CSVSource reads a local CSV export.
type CSVSource struct {
	Path    string
	Options fetcher.CSVOptions
}

func (s *CSVSource) Rows(ctx context.Context) ([][]string, error) {
	return fetcher.ReadCSVFile(ctx, s.Path, s.Options)
}

func (s *CSVSource) Describe() string {
	return "csv:" + s.Path
}

// XLSXSource reads a worksheet of a local workbook export.
type XLSXSource struct {
	Path      string
	SheetName string
}

func (s *XLSXSource) Rows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fetcher.ReadXLSX(s.Path, fetcher.XLSXOptions{SheetName: s.SheetName})
}

func (s *XLSXSource) Describe() string {
	return "xlsx:" + s.Path
}

// FileSource picks a local source by file extension.
func FileSource(path, sheetName string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return &CSVSource{Path: path, Options: fetcher.CSVOptions{TrimSpace: true}}, nil
	case ".tsv":
		return &CSVSource{Path: path, Options: fetcher.CSVOptions{Delimiter: '\t', TrimSpace: true}}, nil
	case ".xlsx":
		return &XLSXSource{Path: path, SheetName: sheetName}, nil
	default:
		return nil, eris.Errorf("sheet: unsupported file type %q", filepath.Ext(path))
	}
}

// Load reads and parses every row of src.
func Load(ctx context.Context, src Source) (*ParseResult, error) {
	rows, err := src.Rows(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "sheet: read %s", src.Describe())
	}
	res, err := ParseRows(rows)
	if err != nil {
		return nil, eris.Wrapf(err, "sheet: parse %s", src.Describe())
	}
	return res, nil
}
