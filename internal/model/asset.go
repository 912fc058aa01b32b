package model

import "strings"

// AssetDescriptor describes one image resource listed from the media store.
// It is immutable once fetched and owned by the run that fetched it.
type AssetDescriptor struct {
	ID           string   `json:"id"`
	PathSegments []string `json:"path_segments"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	SizeBytes    int64    `json:"size_bytes"`
	Format       string   `json:"format"`
	AltText      string   `json:"alt_text,omitempty"`
	CaptionText  string   `json:"caption_text,omitempty"`
	URL          string   `json:"url,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// Path returns the path segments joined with "/".
func (a AssetDescriptor) Path() string {
	return strings.Join(a.PathSegments, "/")
}

// AspectRatio returns width/height, or 0 when either dimension is unknown.
func (a AssetDescriptor) AspectRatio() float64 {
	if a.Width <= 0 || a.Height <= 0 {
		return 0
	}
	return float64(a.Width) / float64(a.Height)
}

// ClassificationVerdict is the classifier's decision for one asset. Reasons
// is a sorted set of rule tags. Verdicts are recomputed every run.
type ClassificationVerdict struct {
	AssetID   string   `json:"asset_id"`
	IsNonFood bool     `json:"is_non_food"`
	Reasons   []string `json:"reasons,omitempty"`
}
