package resolve

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/dish-catalog/internal/model"
)

// Strategy names the lookup that produced a match.
type Strategy string

const (
	StrategyNormalized Strategy = "normalized"
	StrategyLiteral    Strategy = "literal"
)

// Aliases maps a normalized spreadsheet dish name to the normalized name the
// local catalog uses for the same dish.
type Aliases map[model.DishKey]model.DishKey

// NewAliases normalizes both sides of a raw alias table. Entries that
// normalize to an empty key are dropped.
func NewAliases(raw map[string]string) Aliases {
	out := make(Aliases, len(raw))
	for from, to := range raw {
		f, t := Normalize(from), Normalize(to)
		if f == "" || t == "" {
			continue
		}
		out[f] = t
	}
	return out
}

// Match is a successful lookup.
type Match struct {
	Record   *model.SheetRecord
	Key      string
	Strategy Strategy
}

// Index resolves candidate keys to spreadsheet rows. It is built once per
// run; a key claimed by an earlier row is never reassigned.
type Index struct {
	entries    map[string]*model.SheetRecord
	collisions int
	log        *zap.Logger
}

// NewIndex inserts every row under its raw, literal, normalized and (when
// the alias table resolves the name) aliased concatenation keys.
func NewIndex(rows []model.SheetRecord, aliases Aliases) *Index {
	ix := &Index{
		entries: make(map[string]*model.SheetRecord, len(rows)*3),
		log:     zap.L().With(zap.String("component", "record_matcher")),
	}
	for i := range rows {
		row := &rows[i]
		for _, key := range candidateKeys(row, aliases) {
			ix.insert(key, row)
		}
	}
	return ix
}

func candidateKeys(row *model.SheetRecord, aliases Aliases) []string {
	var keys []string
	if raw := rawKey(row.Name, row.Country); raw != "" {
		keys = append(keys, raw)
	}
	if lit := joinKeys(Literal(row.Name), Literal(row.Country)); lit != "" {
		keys = append(keys, string(lit))
	}
	name, country := Normalize(row.Name), Normalize(row.Country)
	if k := joinKeys(name, country); k != "" {
		keys = append(keys, string(k))
	}
	if canonical, ok := aliases[name]; ok {
		if k := joinKeys(canonical, country); k != "" {
			keys = append(keys, string(k))
		}
	}
	return keys
}

func rawKey(name, country string) string {
	name, country = strings.TrimSpace(name), strings.TrimSpace(country)
	if name == "" || country == "" {
		return ""
	}
	return name + "-" + country
}

func (ix *Index) insert(key string, row *model.SheetRecord) {
	existing, ok := ix.entries[key]
	if !ok {
		ix.entries[key] = row
		return
	}
	if existing == row {
		return
	}
	ix.collisions++
	ix.log.Warn("index key claimed by earlier row, keeping first",
		zap.String("key", key),
		zap.Int("kept_row", existing.Row),
		zap.Int("dropped_row", row.Row),
	)
}

// Len returns the number of distinct keys in the index.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Collisions returns how many key insertions lost to an earlier row.
func (ix *Index) Collisions() int {
	return ix.collisions
}

// Match looks up a local dish: normalized name and country first, then the
// raw name and country as written. The first hit wins. When both lookups hit
// different rows the disagreement is logged and the first hit is kept.
func (ix *Index) Match(name, country string) (Match, bool) {
	normKey := string(JoinKey(name, country))
	litKey := rawKey(name, country)

	var m Match
	found := false
	if normKey != "" {
		if row, ok := ix.entries[normKey]; ok {
			m, found = Match{Record: row, Key: normKey, Strategy: StrategyNormalized}, true
		}
	}
	if litKey != "" {
		if row, ok := ix.entries[litKey]; ok {
			if !found {
				return Match{Record: row, Key: litKey, Strategy: StrategyLiteral}, true
			}
			if row != m.Record {
				ix.log.Warn("ambiguous match, keeping first strategy",
					zap.String("name", name),
					zap.String("country", country),
					zap.Int("kept_row", m.Record.Row),
					zap.Int("other_row", row.Row),
				)
			}
		}
	}
	return m, found
}

// Merge enriches rec from a matched row. Latitude, longitude and description
// are authoritative in the spreadsheet and overwrite local values whenever
// the row has them; city only fills an empty local value. Images are never
// touched.
func Merge(rec *model.DishRecord, row *model.SheetRecord) {
	if row.Latitude != nil {
		lat := *row.Latitude
		rec.Latitude = &lat
	}
	if row.Longitude != nil {
		lng := *row.Longitude
		rec.Longitude = &lng
	}
	if d := strings.TrimSpace(row.Description); d != "" {
		rec.Description = d
	}
	if rec.City == "" {
		rec.City = strings.TrimSpace(row.City)
	}
}
