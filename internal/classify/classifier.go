// Package classify separates dish photographs from decorative or
// iconographic assets using metadata heuristics only.
package classify

import (
	"sort"
	"strings"

	"github.com/sells-group/dish-catalog/internal/model"
)

// Reason tags recorded on a verdict.
const (
	ReasonVerySmall       = "very_small"
	ReasonSquareSmallFile = "square_small_file"
	ReasonExtremeAspect   = "extreme_aspect"
	reasonKeywordPrefix   = "keyword:"
	reasonFormatPrefix    = "format:"
)

// KeywordReason returns the reason tag for a keyword hit.
func KeywordReason(term string) string {
	return reasonKeywordPrefix + term
}

// FormatReason returns the reason tag for a non-food format.
func FormatReason(format string) string {
	return reasonFormatPrefix + format
}

// Classifier applies a fixed rule table. It is safe for concurrent use
// because it never mutates state after construction.
type Classifier struct {
	rules Rules
}

// New creates a Classifier for the given rules.
func New(rules Rules) *Classifier {
	return &Classifier{rules: rules.normalized()}
}

// Rules returns the active rule table.
func (c *Classifier) Rules() Rules {
	return c.rules
}

// Classify returns the verdict for one asset. Every rule is evaluated and
// contributes its reason, so the verdict lists all reasons that apply.
// Extra hints (for example the containing folder's description) are added
// to the searched text.
func (c *Classifier) Classify(a model.AssetDescriptor, hints ...string) model.ClassificationVerdict {
	reasons := make(map[string]struct{})

	hay := haystack(a, hints)
	for _, kw := range c.rules.Keywords {
		if strings.Contains(hay, kw) {
			reasons[KeywordReason(kw)] = struct{}{}
		}
	}

	if f := strings.ToLower(strings.TrimPrefix(a.Format, ".")); f != "" {
		for _, nf := range c.rules.NonFoodFormats {
			if f == nf {
				reasons[FormatReason(f)] = struct{}{}
			}
		}
	}

	if a.Width < c.rules.MinDimension || a.Height < c.rules.MinDimension {
		reasons[ReasonVerySmall] = struct{}{}
	}

	if ratio := a.AspectRatio(); ratio > 0 {
		if ratio >= c.rules.SquareMinRatio && ratio <= c.rules.SquareMaxRatio && a.SizeBytes < c.rules.SquareMaxBytes {
			reasons[ReasonSquareSmallFile] = struct{}{}
		}
		if (c.rules.MinAspect > 0 && ratio < c.rules.MinAspect) || (c.rules.MaxAspect > 0 && ratio > c.rules.MaxAspect) {
			reasons[ReasonExtremeAspect] = struct{}{}
		}
	}

	v := model.ClassificationVerdict{AssetID: a.ID, IsNonFood: len(reasons) > 0}
	if len(reasons) > 0 {
		v.Reasons = make([]string, 0, len(reasons))
		for r := range reasons {
			v.Reasons = append(v.Reasons, r)
		}
		sort.Strings(v.Reasons)
	}
	return v
}

// ClassifyAll classifies each asset independently, preserving input order.
func (c *Classifier) ClassifyAll(assets []model.AssetDescriptor) []model.ClassificationVerdict {
	out := make([]model.ClassificationVerdict, len(assets))
	for i, a := range assets {
		out[i] = c.Classify(a)
	}
	return out
}

func haystack(a model.AssetDescriptor, hints []string) string {
	parts := make([]string, 0, 3+len(a.Tags)+len(hints))
	parts = append(parts, a.Path(), a.AltText, a.CaptionText)
	parts = append(parts, a.Tags...)
	parts = append(parts, hints...)
	return strings.ToLower(strings.Join(parts, " "))
}
