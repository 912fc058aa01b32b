package catalog

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/dish-catalog/internal/model"
)

// DataFormat selects the encoding of the catalog data file.
type DataFormat string

const (
	FormatJSON DataFormat = "json"
	FormatYAML DataFormat = "yaml"
)

// ParseDataFormat accepts "json", "yaml" or "yml".
func ParseDataFormat(s string) (DataFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", eris.Errorf("catalog: unsupported data format %q", s)
	}
}

// FormatForPath infers the format from a file extension, defaulting to JSON.
func FormatForPath(path string) DataFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DataEntry is one dish in the data file.
type DataEntry struct {
	Key         string   `json:"key" yaml:"key"`
	Name        string   `json:"name" yaml:"name"`
	Country     string   `json:"country" yaml:"country"`
	City        string   `json:"city,omitempty" yaml:"city,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Images      []string `json:"images" yaml:"images"`
}

// DataDocument is the data file the front end loads at start. Dishes keep
// catalog order.
type DataDocument struct {
	Version int         `json:"version" yaml:"version"`
	Dishes  []DataEntry `json:"dishes" yaml:"dishes"`
}

// dataVersion is bumped when the document shape changes.
const dataVersion = 1

// NewDataDocument converts a catalog into its data-file form.
func NewDataDocument(cat *model.Catalog) DataDocument {
	doc := DataDocument{Version: dataVersion, Dishes: make([]DataEntry, 0, cat.Len())}
	for _, rec := range cat.Records() {
		images := rec.Images
		if images == nil {
			images = []string{}
		}
		doc.Dishes = append(doc.Dishes, DataEntry{
			Key:         string(rec.Key),
			Name:        rec.Name,
			Country:     rec.Country,
			City:        rec.City,
			Latitude:    rec.Latitude,
			Longitude:   rec.Longitude,
			Description: rec.Description,
			Images:      images,
		})
	}
	return doc
}

// WriteData encodes the catalog as a data file.
func WriteData(w io.Writer, cat *model.Catalog, format DataFormat) error {
	doc := NewDataDocument(cat)
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return eris.Wrap(err, "catalog: encode yaml")
		}
		return eris.Wrap(enc.Close(), "catalog: close yaml encoder")
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(doc), "catalog: encode json")
	default:
		return eris.Errorf("catalog: unsupported data format %q", format)
	}
}

// WriteDataFile writes the data file atomically, choosing the format from
// the extension.
func WriteDataFile(path string, cat *model.Catalog) error {
	var buf bytes.Buffer
	if err := WriteData(&buf, cat, FormatForPath(path)); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}

// ReadData decodes a data file produced by WriteData.
func ReadData(r io.Reader, format DataFormat) (*DataDocument, error) {
	var doc DataDocument
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, eris.Wrap(err, "catalog: decode yaml")
		}
	default:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, eris.Wrap(err, "catalog: decode json")
		}
	}
	return &doc, nil
}
