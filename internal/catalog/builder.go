// Package catalog folds media-store assets into a dish-keyed catalog and
// renders that catalog into the artifacts the front end loads.
package catalog

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/dish-catalog/internal/classify"
	"github.com/sells-group/dish-catalog/internal/model"
	"github.com/sells-group/dish-catalog/internal/resolve"
)

// perDishFileRe matches a per-dish file name: a name, a separator, then a
// trailing sequence number or extension token ("biryani_1.jpg", "pho-2",
// "arepa.webp").
var perDishFileRe = regexp.MustCompile(`^.*[^_\-.\s][_\-.][A-Za-z0-9]+$`)

var separatorRe = regexp.MustCompile(`[_\-\s]+`)

// ParsePath derives country, dish and file name from the first three path
// segments. ok is false when there are fewer than three segments or the
// file name does not look like a per-dish file.
func ParsePath(segments []string) (country, dish, filename string, ok bool) {
	if len(segments) < 3 {
		return "", "", "", false
	}
	country = strings.TrimSpace(segments[0])
	dish = strings.TrimSpace(segments[1])
	filename = strings.TrimSpace(segments[2])
	if country == "" || dish == "" || !perDishFileRe.MatchString(filename) {
		return "", "", "", false
	}
	return country, dish, filename, true
}

var titleCaser = cases.Title(language.Und)

// DisplayName turns a path segment into a display name: separators become
// spaces and each word is title-cased ("pad_thai" -> "Pad Thai").
func DisplayName(segment string) string {
	s := strings.TrimSpace(separatorRe.ReplaceAllString(segment, " "))
	return titleCaser.String(s)
}

// URLFunc resolves the delivery URL of an asset.
type URLFunc func(model.AssetDescriptor) string

// AssetURL returns the asset's own URL.
func AssetURL(a model.AssetDescriptor) string {
	return a.URL
}

// BuildResult reports what happened to every input asset.
type BuildResult struct {
	Processed  int
	Unparsed   int
	NonFood    int
	Duplicates int
	Verdicts   []model.ClassificationVerdict
	// Rejected lists the ids of non-food assets in input order, without
	// repeats.
	Rejected []string
}

// Builder groups assets into a catalog.
type Builder struct {
	classifier *classify.Classifier
	urlFor     URLFunc
	log        *zap.Logger
}

// NewBuilder creates a Builder. A nil urlFor uses AssetURL.
func NewBuilder(c *classify.Classifier, urlFor URLFunc) *Builder {
	if urlFor == nil {
		urlFor = AssetURL
	}
	return &Builder{
		classifier: c,
		urlFor:     urlFor,
		log:        zap.L().With(zap.String("component", "catalog_builder")),
	}
}

// Build processes assets in listing order. Unparsable paths are counted and
// skipped; non-food assets are excluded; the rest are grouped by (country,
// dish) with images in first-seen order and duplicate asset ids dropped.
func (b *Builder) Build(assets []model.AssetDescriptor) (*model.Catalog, *BuildResult) {
	cat := model.NewCatalog()
	res := &BuildResult{}
	rejected := make(map[string]struct{})

	for _, a := range assets {
		res.Processed++

		country, dish, _, ok := ParsePath(a.PathSegments)
		name, countryName := DisplayName(dish), DisplayName(country)
		key := resolve.JoinKey(name, countryName)
		if !ok || key == "" {
			res.Unparsed++
			b.log.Debug("skipping unparsed asset", zap.String("id", a.ID), zap.String("path", a.Path()))
			continue
		}

		v := b.classifier.Classify(a)
		res.Verdicts = append(res.Verdicts, v)
		if v.IsNonFood {
			res.NonFood++
			if _, seen := rejected[a.ID]; !seen {
				rejected[a.ID] = struct{}{}
				res.Rejected = append(res.Rejected, a.ID)
			}
			continue
		}

		rec, exists := cat.Get(key)
		if !exists {
			rec = &model.DishRecord{Key: key, Name: name, Country: countryName}
			cat.Put(rec)
		}
		if !rec.AddImage(a.ID, b.urlFor(a)) {
			res.Duplicates++
		}
	}

	return cat, res
}
