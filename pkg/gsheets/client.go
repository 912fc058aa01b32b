// Package gsheets reads dish metadata rows from Google Sheets and lists the
// spreadsheets kept in a Drive folder.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/sells-group/dish-catalog/internal/resilience"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// Client performs spreadsheet and drive reads.
type Client interface {
	ReadRows(ctx context.Context, spreadsheetID, rangeSpec string) ([][]string, error)
	ListSpreadsheets(ctx context.Context, folderID string) ([]File, error)
}

// File is a spreadsheet stored in Drive.
type File struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ModifiedTime time.Time `json:"modified_time"`
}

// Option configures the client.
type Option func(*settings)

type settings struct {
	opts  []option.ClientOption
	retry resilience.RetryConfig
}

// WithCredentialsFile authenticates with a service account key file.
func WithCredentialsFile(path string) Option {
	return func(s *settings) {
		s.opts = append(s.opts, option.WithCredentialsFile(path))
	}
}

// WithAPIKey authenticates with an API key. Only public sheets are readable.
func WithAPIKey(key string) Option {
	return func(s *settings) {
		s.opts = append(s.opts, option.WithAPIKey(key))
	}
}

// WithEndpoint overrides the API endpoint of both services.
func WithEndpoint(endpoint string) Option {
	return func(s *settings) {
		s.opts = append(s.opts, option.WithEndpoint(endpoint))
	}
}

// WithoutAuthentication sends unauthenticated requests.
func WithoutAuthentication() Option {
	return func(s *settings) {
		s.opts = append(s.opts, option.WithoutAuthentication())
	}
}

// WithHTTPClient overrides the transport. Authentication options are
// ignored when set.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) {
		s.opts = append(s.opts, option.WithHTTPClient(hc))
	}
}

// WithRetry overrides the retry policy for reads.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(s *settings) {
		s.retry = cfg
	}
}

type apiClient struct {
	sheets *sheets.Service
	drive  *drive.Service
	retry  resilience.RetryConfig
}

// NewClient creates a read-only Sheets and Drive client.
func NewClient(ctx context.Context, opts ...Option) (Client, error) {
	s := &settings{retry: resilience.DefaultRetryConfig()}
	for _, o := range opts {
		o(s)
	}
	s.retry.ShouldRetry = isRetryable

	sheetOpts := append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}, s.opts...)
	ss, err := sheets.NewService(ctx, sheetOpts...)
	if err != nil {
		return nil, eris.Wrap(err, "gsheets: create sheets service")
	}

	driveOpts := append([]option.ClientOption{option.WithScopes(drive.DriveReadonlyScope)}, s.opts...)
	ds, err := drive.NewService(ctx, driveOpts...)
	if err != nil {
		return nil, eris.Wrap(err, "gsheets: create drive service")
	}

	return &apiClient{sheets: ss, drive: ds, retry: s.retry}, nil
}

func (c *apiClient) ReadRows(ctx context.Context, spreadsheetID, rangeSpec string) ([][]string, error) {
	cfg := c.retry
	cfg.OnRetry = resilience.RetryLogger("gsheets", "read_rows")

	vr, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*sheets.ValueRange, error) {
		return c.sheets.Spreadsheets.Values.Get(spreadsheetID, rangeSpec).
			ValueRenderOption("FORMATTED_VALUE").
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, eris.Wrapf(err, "gsheets: read %s!%s", spreadsheetID, rangeSpec)
	}

	rows := make([][]string, len(vr.Values))
	for i, row := range vr.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		rows[i] = cells
	}
	return rows, nil
}

func (c *apiClient) ListSpreadsheets(ctx context.Context, folderID string) ([]File, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false", folderID, spreadsheetMimeType)
	cfg := c.retry
	cfg.OnRetry = resilience.RetryLogger("gsheets", "list_spreadsheets")

	var files []File
	pageToken := ""
	for {
		call := c.drive.Files.List().
			Q(q).
			Fields("nextPageToken, files(id, name, modifiedTime)").
			OrderBy("name").
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*drive.FileList, error) {
			return call.Context(ctx).Do()
		})
		if err != nil {
			return nil, eris.Wrapf(err, "gsheets: list folder %s", folderID)
		}

		for _, f := range list.Files {
			file := File{ID: f.Id, Name: f.Name}
			if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
				file.ModifiedTime = t
			}
			files = append(files, file)
		}

		if list.NextPageToken == "" {
			return files, nil
		}
		pageToken = list.NextPageToken
	}
}

func isRetryable(err error) bool {
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		return resilience.IsTransientHTTPStatus(ge.Code)
	}
	return resilience.IsTransient(err)
}
