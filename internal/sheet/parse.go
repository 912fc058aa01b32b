// Package sheet turns spreadsheet exports of dish metadata into
// SheetRecords.
package sheet

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dish-catalog/internal/model"
)

// ErrNoHeader is returned when the first row lacks a name or country column.
var ErrNoHeader = eris.New("sheet: header has no name or country column")

type field int

const (
	fieldName field = iota
	fieldCountry
	fieldCity
	fieldLatitude
	fieldLongitude
	fieldDescription
)

// headerAliases maps a normalized header cell to the field it fills.
var headerAliases = map[string]field{
	"dish name":   fieldName,
	"dish":        fieldName,
	"name":        fieldName,
	"country":     fieldCountry,
	"city":        fieldCity,
	"latitude":    fieldLatitude,
	"lat":         fieldLatitude,
	"longitude":   fieldLongitude,
	"lng":         fieldLongitude,
	"lon":         fieldLongitude,
	"long":        fieldLongitude,
	"description": fieldDescription,
	"desc":        fieldDescription,
}

// RowIssue describes a data row that was skipped or only partly read.
type RowIssue struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ParseResult holds the records read from a sheet.
type ParseResult struct {
	Records []model.SheetRecord
	// Skipped counts non-blank rows without a name or country.
	Skipped int
	Issues  []RowIssue
}

func normalizeHeader(cell string) string {
	h := strings.ToLower(strings.TrimSpace(cell))
	h = strings.NewReplacer("_", " ", "-", " ").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}

// columns maps each known field to its column index. Image and URL columns
// are never mapped. The first matching column wins.
func columns(header []string) map[field]int {
	cols := make(map[field]int)
	for i, cell := range header {
		h := normalizeHeader(cell)
		if strings.Contains(h, "image") || strings.Contains(h, "url") {
			continue
		}
		f, ok := headerAliases[h]
		if !ok {
			continue
		}
		if _, taken := cols[f]; !taken {
			cols[f] = i
		}
	}
	return cols
}

// ParseRows reads rows whose first entry is the header. Blank rows are
// ignored; rows missing a name or country are skipped and counted. A bad
// coordinate leaves that coordinate unset and is reported as an issue.
func ParseRows(rows [][]string) (*ParseResult, error) {
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}
	cols := columns(rows[0])
	_, hasName := cols[fieldName]
	_, hasCountry := cols[fieldCountry]
	if !hasName || !hasCountry {
		return nil, ErrNoHeader
	}

	res := &ParseResult{}
	for i, row := range rows[1:] {
		rowNum := i + 2
		if blankRow(row) {
			continue
		}

		cell := func(f field) string {
			idx, ok := cols[f]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		rec := model.SheetRecord{
			Row:         rowNum,
			Name:        cell(fieldName),
			Country:     cell(fieldCountry),
			City:        cell(fieldCity),
			Description: cell(fieldDescription),
		}
		if rec.Name == "" || rec.Country == "" {
			res.Skipped++
			res.Issues = append(res.Issues, RowIssue{Row: rowNum, Reason: "missing name or country"})
			continue
		}

		var err error
		if rec.Latitude, err = coordinate(cell(fieldLatitude), 90); err != nil {
			res.Issues = append(res.Issues, RowIssue{Row: rowNum, Reason: "latitude: " + err.Error()})
		}
		if rec.Longitude, err = coordinate(cell(fieldLongitude), 180); err != nil {
			res.Issues = append(res.Issues, RowIssue{Row: rowNum, Reason: "longitude: " + err.Error()})
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// coordinate parses a decimal degree value. Empty input yields nil.
func coordinate(s string, limit float64) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil, eris.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, eris.Errorf("invalid number %q", s)
	}
	if v < -limit || v > limit {
		return nil, eris.Errorf("%v out of range", v)
	}
	return &v, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
