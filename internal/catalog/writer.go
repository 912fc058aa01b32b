package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dish-catalog/internal/model"
)

// DefaultIdentifier is the variable name of the generated catalog block.
const DefaultIdentifier = "dishImages"

const endMarker = "};"

// ErrMarkerNotFound is wrapped by every MarkerError.
var ErrMarkerNotFound = eris.New("catalog marker not found")

// MarkerError reports which marker is missing from the source text.
type MarkerError struct {
	Marker string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMarkerNotFound, e.Marker)
}

func (e *MarkerError) Unwrap() error {
	return ErrMarkerNotFound
}

// StartMarker returns the literal that opens the generated block.
func StartMarker(identifier string) string {
	return "const " + identifier + " = {"
}

// WriteSource replaces the block between the start marker and the first
// following "};" with the serialized catalog, leaving everything outside the
// block untouched. Missing markers fail before any output is built. Writing
// the same catalog twice yields identical text.
func WriteSource(existing, identifier string, cat *model.Catalog) (string, error) {
	start := StartMarker(identifier)
	i := strings.Index(existing, start)
	if i < 0 {
		return "", &MarkerError{Marker: start}
	}
	j := strings.Index(existing[i+len(start):], endMarker)
	if j < 0 {
		return "", &MarkerError{Marker: endMarker}
	}
	end := i + len(start) + j + len(endMarker)

	var b strings.Builder
	b.Grow(len(existing) + cat.Len()*128)
	b.WriteString(existing[:i])
	writeBlock(&b, start, cat)
	b.WriteString(existing[end:])
	return b.String(), nil
}

func writeBlock(b *strings.Builder, start string, cat *model.Catalog) {
	b.WriteString(start)
	b.WriteString("\n")
	for _, e := range displayEntries(cat) {
		b.WriteString("  ")
		b.WriteString(quoteJS(e.name))
		b.WriteString(": [")
		if len(e.rec.Images) == 0 {
			b.WriteString("],\n")
			continue
		}
		b.WriteString("\n")
		for _, img := range e.rec.Images {
			b.WriteString("    ")
			b.WriteString(quoteJS(img))
			b.WriteString(",\n")
		}
		b.WriteString("  ],\n")
	}
	b.WriteString(endMarker)
}

type displayEntry struct {
	name string
	rec  *model.DishRecord
}

// displayEntries pairs each record with its outward key. A display name
// already used by an earlier dish is qualified with the country.
func displayEntries(cat *model.Catalog) []displayEntry {
	used := make(map[string]struct{}, cat.Len())
	out := make([]displayEntry, 0, cat.Len())
	for _, rec := range cat.Records() {
		name := rec.Name
		if _, dup := used[name]; dup && rec.Country != "" {
			name = fmt.Sprintf("%s (%s)", rec.Name, rec.Country)
		}
		used[name] = struct{}{}
		out = append(out, displayEntry{name: name, rec: rec})
	}
	return out
}

// quoteJS renders s as a string literal. Semicolons are escaped so no value
// can contain the end marker.
func quoteJS(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.ReplaceAll(strings.TrimSuffix(buf.String(), "\n"), ";", `\u003b`)
}

// WriteSourceFile splices the catalog into the file at path. The file is
// replaced atomically and left alone when the content is unchanged.
func WriteSourceFile(path, identifier string, cat *model.Catalog) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, eris.Wrapf(err, "catalog: read %s", path)
	}
	updated, err := WriteSource(string(data), identifier, cat)
	if err != nil {
		return false, eris.Wrapf(err, "catalog: splice %s", path)
	}
	if updated == string(data) {
		return false, nil
	}
	if err := writeFileAtomic(path, []byte(updated)); err != nil {
		return false, err
	}
	return true, nil
}

func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrapf(err, "catalog: create temp for %s", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrapf(err, "catalog: write temp for %s", path)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "catalog: close temp for %s", path)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return eris.Wrapf(err, "catalog: chmod temp for %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return eris.Wrapf(err, "catalog: rename into %s", path)
	}
	return nil
}
